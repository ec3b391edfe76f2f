package service

import "time"

// DefaultBoundaryHour anchors the operational day at 07:00 local plant time.
const DefaultBoundaryHour = 7

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// currentWindow returns the operational day containing now: the most recent
// boundary-hour instant at or before now, plus 24 hours. An instant exactly on
// the boundary belongs to the window that starts there.
func currentWindow(now time.Time, boundaryHour int) Window {
	start := time.Date(now.Year(), now.Month(), now.Day(), boundaryHour, 0, 0, 0, now.Location())
	if now.Before(start) {
		start = start.AddDate(0, 0, -1)
	}
	return Window{Start: start, End: start.Add(24 * time.Hour)}
}

// previousWindow is currentWindow shifted back exactly 24 hours. The fixed
// shift keeps the bounds drift-free regardless of when it is evaluated.
func previousWindow(now time.Time, boundaryHour int) Window {
	cur := currentWindow(now, boundaryHour)
	return Window{Start: cur.Start.Add(-24 * time.Hour), End: cur.Start}
}

// shiftWindow splits the operational day in half: day shift is the first 12
// hours, night shift the second.
func shiftWindow(w Window, st ShiftType) Window {
	mid := w.Start.Add(12 * time.Hour)
	if st == ShiftNight {
		return Window{Start: mid, End: w.End}
	}
	return Window{Start: w.Start, End: mid}
}

// customShiftWindow anchors startHour/endHour (hours of day, 0..23) inside the
// operational day w. Hours before the day's anchor hour belong to the next
// calendar date; an end at or before the start wraps past midnight. The result
// is clamped to w.
func customShiftWindow(w Window, boundaryHour, startHour, endHour int) Window {
	offset := func(h int) time.Duration {
		return time.Duration((h-boundaryHour+24)%24) * time.Hour
	}
	start := w.Start.Add(offset(startHour))
	end := w.Start.Add(offset(endHour))
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	if end.After(w.End) {
		end = w.End
	}
	return Window{Start: start, End: end}
}
