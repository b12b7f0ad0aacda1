package domain

import "fmt"

// ConflictPair is an unordered pair of scheduled events with overlapping
// intervals. First appears before Second in the calendar's insertion order.
type ConflictPair struct {
	First  *Event
	Second *Event
}

func (p ConflictPair) String() string {
	return fmt.Sprintf("%s <-> %s", p.First.Title(), p.Second.Title())
}

// Resolution records one successful conflict resolution: Moved was
// rescheduled away from Kept.
type Resolution struct {
	Moved       *Event
	Kept        *Event
	Description string
}
