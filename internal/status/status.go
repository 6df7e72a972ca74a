package status

import "fmt"

// Status is the lifecycle state of an order.
type Status string

const (
	New       Status = "NEW"
	Cooking   Status = "COOKING"
	OnWay     Status = "ON_WAY"
	Delivered Status = "DELIVERED"
	Cancelled Status = "CANCELLED"
)

// ErrInvalidTransition is returned when a requested status change is not
// allowed from the current state. The caller must not persist anything.
var ErrInvalidTransition = fmt.Errorf("invalid status transition")

// transitions holds the allowed edges. DELIVERED and CANCELLED are terminal.
var transitions = map[Status][]Status{
	New:     {Cooking, Cancelled},
	Cooking: {OnWay, Cancelled},
	OnWay:   {Delivered, Cancelled},
}

// Known reports whether s is one of the five order statuses.
func Known(s Status) bool {
	switch s {
	case New, Cooking, OnWay, Delivered, Cancelled:
		return true
	}
	return false
}

// Terminal reports whether s has no outgoing edges.
func Terminal(s Status) bool {
	return s == Delivered || s == Cancelled
}

// Transition validates the edge current -> requested and returns the new
// status. Self-transitions and any request from a terminal state fail.
func Transition(current, requested Status) (Status, error) {
	for _, next := range transitions[current] {
		if next == requested {
			return requested, nil
		}
	}
	return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, requested)
}
