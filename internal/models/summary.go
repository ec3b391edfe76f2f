package models

import "time"

// AlarmCount is one alarm-code group in a summary, already sorted for display.
type AlarmCount struct {
	AlarmCode   string `json:"alarm_code"`
	Description string `json:"description"`
	PLCID       string `json:"plc_id,omitempty"` // set when grouping is per controller
	Count       int    `json:"count"`
}

// PLCSummary is the per-controller event total inside a window.
type PLCSummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// WindowSummary aggregates one operational-day window.
type WindowSummary struct {
	Start     time.Time             `json:"start"`
	End       time.Time             `json:"end"`
	TopAlarms []AlarmCount          `json:"top_alarms"`
	Total     int                   `json:"total"`
	PerPLC    map[string]PLCSummary `json:"per_plc,omitempty"`
}

// SummaryReport covers the current and previous operational day.
type SummaryReport struct {
	Today     WindowSummary `json:"today"`
	Yesterday WindowSummary `json:"yesterday"`
}

// ShiftReport aggregates a 12-hour (or custom) shift sub-window.
type ShiftReport struct {
	ShiftStart time.Time    `json:"shift_start"`
	ShiftEnd   time.Time    `json:"shift_end"`
	TopAlarms  []AlarmCount `json:"top_alarms"`
	TotalCount int          `json:"total_count"`
}

// TrendBucket is one hour of the alarm trend, right-open [HourStart, HourStart+1h).
type TrendBucket struct {
	Hour      int       `json:"hour"` // hour-of-day of the bucket start
	HourLabel string    `json:"hour_label"`
	HourStart time.Time `json:"hour_start"`
	Count     int       `json:"count"`
}
