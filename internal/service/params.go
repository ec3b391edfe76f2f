package service

// Period selects which operational-day window a query covers.
type Period string

const (
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
)

// ShiftType selects a 12-hour half of an operational day.
type ShiftType string

const (
	ShiftDay   ShiftType = "day"   // first 12 hours of the window
	ShiftNight ShiftType = "night" // second 12 hours
)

// CountMode is the count semantics used for summary groups. The two legacy
// service variants disagreed; this makes the choice explicit.
type CountMode string

const (
	// CountModeLatest reports the raw register value of the group's most
	// recent event.
	CountModeLatest CountMode = "latest"
	// CountModeFrequency reports the number of recorded events in the group.
	CountModeFrequency CountMode = "frequency"
)

// HourUnset marks an absent optional hour parameter.
const HourUnset = -1

// ShiftParams describes a shift summary query. StartHour/EndHour (hour-of-day,
// 0..23) override the 12-hour split when both are set.
type ShiftParams struct {
	Period    Period
	Type      ShiftType
	StartHour int // HourUnset when absent
	EndHour   int // HourUnset when absent
	PLCID     string
}
