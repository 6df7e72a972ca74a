package hours

import (
	"fmt"
	"time"
)

// Reason explains why the business is closed.
type Reason string

const (
	ReasonNoHoursDefined     Reason = "no_hours_defined"
	ReasonClosedToday        Reason = "closed_today"
	ReasonHoursNotConfigured Reason = "hours_not_configured"
	ReasonBeforeOpening      Reason = "before_opening"
	ReasonAfterClosing       Reason = "after_closing"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: out of range", s)
	}
	return t, nil
}

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

func (t TimeOfDay) minutes() int { return t.Hour*60 + t.Minute }

// DayHours is the configured hours for a single weekday.
type DayHours struct {
	Open   *TimeOfDay
	Close  *TimeOfDay
	Closed bool
}

// Schedule maps weekday (0=Monday .. 6=Sunday) to its hours. Days without an
// entry are treated as having no hours defined.
type Schedule map[int]DayHours

// Status is the outcome of a gate check.
type Status struct {
	Open     bool
	Reason   Reason
	NextOpen *time.Time
}

// Gate decides whether orders may be accepted at a given instant. The business
// timezone is a fixed offset; the schedule is supplied by the caller on every
// check so admin updates take effect immediately.
type Gate struct {
	loc *time.Location
}

// NewGate builds a gate for a fixed UTC offset in hours.
func NewGate(utcOffsetHours int) *Gate {
	name := fmt.Sprintf("UTC%+d", utcOffsetHours)
	return &Gate{loc: time.FixedZone(name, utcOffsetHours*3600)}
}

// Location exposes the business timezone for rendering timestamps.
func (g *Gate) Location() *time.Location { return g.loc }

// weekday converts time.Weekday (Sunday=0) to the schedule key (Monday=0).
func weekday(t time.Time) int { return (int(t.Weekday()) + 6) % 7 }

// Check reports whether the business is open at now under sched. A
// misconfigured schedule yields a closed status, never an error.
func (g *Gate) Check(sched Schedule, now time.Time) Status {
	local := now.In(g.loc)
	day, ok := sched[weekday(local)]
	if !ok {
		return Status{Open: false, Reason: ReasonNoHoursDefined}
	}
	if day.Closed {
		return Status{Open: false, Reason: ReasonClosedToday, NextOpen: g.nextOpen(sched, local)}
	}
	if day.Open == nil || day.Close == nil {
		return Status{Open: false, Reason: ReasonHoursNotConfigured}
	}

	nowMin := local.Hour()*60 + local.Minute()
	if day.Open.minutes() <= nowMin && nowMin <= day.Close.minutes() {
		return Status{Open: true}
	}

	reason := ReasonAfterClosing
	if nowMin < day.Open.minutes() {
		reason = ReasonBeforeOpening
	}
	return Status{Open: false, Reason: reason, NextOpen: g.nextOpen(sched, local)}
}

// nextOpen finds the next opening instant: today's opening if we are still
// before it, otherwise the first of the next 7 days that is not closed and has
// an open time. Returns nil when no such day exists.
func (g *Gate) nextOpen(sched Schedule, local time.Time) *time.Time {
	nowMin := local.Hour()*60 + local.Minute()
	if day, ok := sched[weekday(local)]; ok && !day.Closed && day.Open != nil && nowMin < day.Open.minutes() {
		t := g.openingInstant(local, *day.Open)
		return &t
	}
	for i := 1; i <= 7; i++ {
		next := local.AddDate(0, 0, i)
		day, ok := sched[weekday(next)]
		if ok && !day.Closed && day.Open != nil {
			t := g.openingInstant(next, *day.Open)
			return &t
		}
	}
	return nil
}

func (g *Gate) openingInstant(date time.Time, open TimeOfDay) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), open.Hour, open.Minute, 0, 0, g.loc)
}
