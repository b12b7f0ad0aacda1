package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidPriority is returned for priority values outside the known levels.
var ErrInvalidPriority = errors.New("unknown priority value")

// Priority is an ordered event priority level.
// Ordering is defined by Rank, not by the raw constant values, so new levels
// can be inserted without silently breaking comparisons.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

// Rank returns the ordering weight of the priority. Higher rank wins.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

// HigherThan reports whether p outranks other.
func (p Priority) HigherThan(other Priority) bool {
	return p.Rank() > other.Rank()
}

// IsValid returns true if the priority is a known level.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ParsePriority converts the wire representation (integer 1-3) to a Priority.
func ParsePriority(value int) (Priority, error) {
	p := Priority(value)
	if !p.IsValid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPriority, value)
	}
	return p, nil
}
