package domain

import "time"

// DateWindow is the half-open reporting interval [Start, End).
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// NewDateWindow computes the reporting window for a run happening at now.
//
// The window is anchored on the Monday of the current week: it starts seven
// days before that Monday at midnight and ends seven days after it at the
// last millisecond of the day. Weeks are counted from Sunday, so a run on a
// Sunday anchors on the following day.
func NewDateWindow(now time.Time) DateWindow {
	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	thisMonday := today
	if now.Weekday() != time.Monday {
		weekStart := today.AddDate(0, 0, -int(now.Weekday()))
		thisMonday = weekStart.AddDate(0, 0, 1)
	}

	return DateWindow{
		Start: thisMonday.AddDate(0, 0, -7),
		End:   thisMonday.AddDate(0, 0, 8).Add(-time.Millisecond),
	}
}

// Contains reports whether t lies within the window, start inclusive and end exclusive.
func (w DateWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
