package models

import "time"

// AlarmEvent is one recorded transition of a register into a nonzero alarm state.
// Rows are append-only; ID is assigned by the store.
type AlarmEvent struct {
	ID               int64     `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	AlarmCode        string    `json:"alarm_code"`        // e.g. "M801"
	AlarmDescription string    `json:"alarm_description"` // human-readable
	PLCID            string    `json:"plc_id"`
	PLCName          string    `json:"plc_name"`
	CountValue       int       `json:"count_value"` // raw register value at detection time
}
