// Package calendar maps instants onto game days.
package calendar

import "time"

// DayLayout is the YYYY-MM-DD form used in store keys
const DayLayout = "2006-01-02"

// DayKey formats t as the calendar day it falls on in loc
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// NextMidnight returns the start of the day after t in loc
func NextMidnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

// UntilMidnight returns the whole seconds left before the next midnight in loc.
// Never less than one second so an expiry is never armed as "delete now".
func UntilMidnight(t time.Time, loc *time.Location) time.Duration {
	remaining := NextMidnight(t, loc).Sub(t).Truncate(time.Second)
	if remaining < time.Second {
		return time.Second
	}
	return remaining
}
