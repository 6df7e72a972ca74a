package hours

import (
	"testing"
	"time"
)

func tod(h, m int) *TimeOfDay { return &TimeOfDay{Hour: h, Minute: m} }

// mondaySchedule opens Monday only, 09:00-22:00.
func mondaySchedule() Schedule {
	return Schedule{0: {Open: tod(9, 0), Close: tod(22, 0)}}
}

// at builds an instant in the given zone. 2026-01-05 is a Monday.
func at(loc *time.Location, day, hour, min int) time.Time {
	return time.Date(2026, 1, day, hour, min, 0, 0, loc)
}

func TestCheck_BeforeOpening(t *testing.T) {
	g := NewGate(0)
	got := g.Check(mondaySchedule(), at(g.Location(), 5, 8, 59))
	if got.Open {
		t.Fatal("expected closed before opening")
	}
	if got.Reason != ReasonBeforeOpening {
		t.Errorf("reason = %s, want %s", got.Reason, ReasonBeforeOpening)
	}
	want := at(g.Location(), 5, 9, 0)
	if got.NextOpen == nil || !got.NextOpen.Equal(want) {
		t.Errorf("next open = %v, want %v", got.NextOpen, want)
	}
}

func TestCheck_AfterClosing_ScansForward(t *testing.T) {
	g := NewGate(0)
	got := g.Check(mondaySchedule(), at(g.Location(), 5, 23, 0))
	if got.Open {
		t.Fatal("expected closed after closing")
	}
	if got.Reason != ReasonAfterClosing {
		t.Errorf("reason = %s, want %s", got.Reason, ReasonAfterClosing)
	}
	// only Monday is configured, so next opening is next Monday 09:00
	want := at(g.Location(), 12, 9, 0)
	if got.NextOpen == nil || !got.NextOpen.Equal(want) {
		t.Errorf("next open = %v, want %v", got.NextOpen, want)
	}
}

func TestCheck_OpenBoundariesInclusive(t *testing.T) {
	g := NewGate(0)
	sched := mondaySchedule()
	for _, c := range []struct {
		hour, min int
		open      bool
	}{
		{9, 0, true},   // exactly opening
		{22, 0, true},  // exactly closing
		{22, 1, false}, // one minute past
		{8, 59, false}, // one minute early
		{15, 30, true},
	} {
		got := g.Check(sched, at(g.Location(), 5, c.hour, c.min))
		if got.Open != c.open {
			t.Errorf("at %02d:%02d open = %v, want %v", c.hour, c.min, got.Open, c.open)
		}
	}
}

func TestCheck_ClosedToday(t *testing.T) {
	g := NewGate(0)
	sched := Schedule{
		0: {Closed: true},
		1: {Open: tod(10, 0), Close: tod(20, 0)},
	}
	got := g.Check(sched, at(g.Location(), 5, 12, 0))
	if got.Open || got.Reason != ReasonClosedToday {
		t.Fatalf("got %+v, want closed_today", got)
	}
	want := at(g.Location(), 6, 10, 0) // Tuesday opening
	if got.NextOpen == nil || !got.NextOpen.Equal(want) {
		t.Errorf("next open = %v, want %v", got.NextOpen, want)
	}
}

func TestCheck_NoHoursDefined(t *testing.T) {
	g := NewGate(0)
	got := g.Check(Schedule{}, at(g.Location(), 5, 12, 0))
	if got.Open || got.Reason != ReasonNoHoursDefined {
		t.Fatalf("got %+v, want no_hours_defined", got)
	}
}

func TestCheck_HoursNotConfigured(t *testing.T) {
	g := NewGate(0)
	sched := Schedule{0: {}} // entry exists, no times, not closed
	got := g.Check(sched, at(g.Location(), 5, 12, 0))
	if got.Open || got.Reason != ReasonHoursNotConfigured {
		t.Fatalf("got %+v, want hours_not_configured", got)
	}
}

func TestCheck_AllDaysClosed_NoNextOpen(t *testing.T) {
	g := NewGate(0)
	sched := Schedule{}
	for d := 0; d < 7; d++ {
		sched[d] = DayHours{Closed: true}
	}
	got := g.Check(sched, at(g.Location(), 5, 12, 0))
	if got.Open || got.NextOpen != nil {
		t.Fatalf("got %+v, want closed with no next open time", got)
	}
}

func TestCheck_ConvertsToBusinessTimezone(t *testing.T) {
	g := NewGate(5)
	// 04:30 UTC Monday is 09:30 UTC+5, inside 09:00-22:00
	utc := time.Date(2026, 1, 5, 4, 30, 0, 0, time.UTC)
	got := g.Check(mondaySchedule(), utc)
	if !got.Open {
		t.Errorf("expected open at 09:30 business time, got %+v", got)
	}
	// 03:30 UTC is 08:30 business time, before opening
	got = g.Check(mondaySchedule(), utc.Add(-time.Hour))
	if got.Open || got.Reason != ReasonBeforeOpening {
		t.Errorf("expected before_opening at 08:30 business time, got %+v", got)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	good := map[string]TimeOfDay{
		"09:00": {9, 0},
		"23:59": {23, 59},
		"0:05":  {0, 5},
	}
	for in, want := range good {
		got, err := ParseTimeOfDay(in)
		if err != nil || got != want {
			t.Errorf("ParseTimeOfDay(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, in := range []string{"24:00", "12:60", "noon", ""} {
		if _, err := ParseTimeOfDay(in); err == nil {
			t.Errorf("ParseTimeOfDay(%q): expected error", in)
		}
	}
}
