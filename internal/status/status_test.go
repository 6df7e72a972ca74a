package status

import (
	"errors"
	"testing"
)

func TestTransition_AllowedEdges(t *testing.T) {
	cases := []struct {
		from, to Status
	}{
		{New, Cooking},
		{New, Cancelled},
		{Cooking, OnWay},
		{Cooking, Cancelled},
		{OnWay, Delivered},
		{OnWay, Cancelled},
	}
	for _, c := range cases {
		got, err := Transition(c.from, c.to)
		if err != nil {
			t.Errorf("Transition(%s, %s): unexpected error %v", c.from, c.to, err)
			continue
		}
		if got != c.to {
			t.Errorf("Transition(%s, %s) = %s, want %s", c.from, c.to, got, c.to)
		}
	}
}

func TestTransition_Rejected(t *testing.T) {
	cases := []struct {
		name     string
		from, to Status
	}{
		{"skip cooking", New, OnWay},
		{"skip on_way", New, Delivered},
		{"skip to delivered", Cooking, Delivered},
		{"backwards", Cooking, New},
		{"self transition", New, New},
		{"self transition cooking", Cooking, Cooking},
		{"from delivered", Delivered, Cancelled},
		{"from delivered to cooking", Delivered, Cooking},
		{"from cancelled", Cancelled, New},
		{"repeat terminal", Delivered, Delivered},
		{"unknown target", New, Status("REFUNDED")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Transition(c.from, c.to); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Transition(%s, %s): want ErrInvalidTransition, got %v", c.from, c.to, err)
			}
		})
	}
}

func TestTransition_TerminalStatesHaveNoEdges(t *testing.T) {
	all := []Status{New, Cooking, OnWay, Delivered, Cancelled}
	for _, from := range []Status{Delivered, Cancelled} {
		for _, to := range all {
			if _, err := Transition(from, to); err == nil {
				t.Errorf("Transition(%s, %s): expected failure from terminal state", from, to)
			}
		}
	}
}

func TestKnown(t *testing.T) {
	for _, s := range []Status{New, Cooking, OnWay, Delivered, Cancelled} {
		if !Known(s) {
			t.Errorf("Known(%s) = false", s)
		}
	}
	if Known(Status("PENDING")) {
		t.Error("Known(PENDING) = true, want false")
	}
}

func TestTerminal(t *testing.T) {
	if !Terminal(Delivered) || !Terminal(Cancelled) {
		t.Error("DELIVERED and CANCELLED must be terminal")
	}
	for _, s := range []Status{New, Cooking, OnWay} {
		if Terminal(s) {
			t.Errorf("Terminal(%s) = true, want false", s)
		}
	}
}
