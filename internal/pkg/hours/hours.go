// Package hours evaluates daily [start, end] hour windows that may span midnight.
package hours

import "time"

// Window is a daily opening window in whole hours, e.g. [20, 6] is 20:00 to 06:00.
type Window [2]int

// Between reports whether hour:minute falls inside [start, end]. Minutes are folded in as a
// hundredth of an hour, so 6:30 is 6.30 and falls outside a window ending at 6.
// A window with start > end wraps past midnight.
func Between(start, end, hour, minute int) bool {
	now := float64(hour)
	if minute > 0 {
		now += float64(minute) / 100
	}
	s, e := float64(start), float64(end)
	if start <= end {
		return s <= now && now <= e
	}
	return now >= s || now <= e
}

// Contains evaluates the window at t's wall-clock time.
func (w Window) Contains(t time.Time) bool {
	return Between(w[0], w[1], t.Hour(), t.Minute())
}
