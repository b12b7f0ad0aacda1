package services

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
)

// LargeGapThreshold is the minimum idle stretch between consecutive scheduled
// events that the improvement suggestions call out.
const LargeGapThreshold = 60 * time.Minute

// Optimizer assigns start times to the events of a single calendar and
// resolves residual conflicts. It holds no state beyond the calendar
// reference; every pass starts from a cleared schedule.
//
// The placement order is a greedy heuristic, not an optimal assignment:
// higher priority first, fixed before flexible at equal priority, earlier
// start windows first, longer events first as the final tiebreak.
type Optimizer struct {
	calendar *domain.Calendar
	logger   *slog.Logger
}

// NewOptimizer creates an optimizer bound to a calendar.
func NewOptimizer(calendar *domain.Calendar, logger *slog.Logger) *Optimizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Optimizer{
		calendar: calendar,
		logger:   logger,
	}
}

// Calendar returns the calendar this optimizer operates on.
func (o *Optimizer) Calendar() *domain.Calendar {
	return o.calendar
}

// OptimizeSchedule clears all assignments, then greedily places every event
// into the earliest feasible slot. Returns true only when every event ended
// up scheduled; false means partial success, which is the common case and not
// an error.
func (o *Optimizer) OptimizeSchedule() bool {
	o.calendar.ClearSchedule()

	ordered := o.placementOrder()

	failed := 0
	for _, event := range ordered {
		if o.placeEvent(event) {
			continue
		}
		failed++
		o.logger.Debug("event left unscheduled",
			"event_id", event.ID(),
			"title", event.Title(),
			"priority", event.Priority().String(),
		)
	}

	return failed == 0
}

// placementOrder sorts events by the composite greedy key.
func (o *Optimizer) placementOrder() []*domain.Event {
	events := o.calendar.Events()
	ordered := make([]*domain.Event, len(events))
	copy(ordered, events)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]

		if a.Priority().Rank() != b.Priority().Rank() {
			return a.Priority().Rank() > b.Priority().Rank()
		}
		if a.IsFixed() != b.IsFixed() {
			return a.IsFixed()
		}
		aStart := earliestOrZero(a)
		bStart := earliestOrZero(b)
		if !aStart.Equal(bStart) {
			return aStart.Before(bStart)
		}
		return a.Duration() > b.Duration()
	})

	return ordered
}

// placeEvent schedules a single event against the current partially-filled
// calendar. Fixed events are tried only at their pinned instant.
func (o *Optimizer) placeEvent(event *domain.Event) bool {
	if event.IsFixed() {
		return o.tryScheduleAt(event, *event.FixedTime())
	}

	for slot := range o.calendar.AvailableSlots(event.Duration(), event.EarliestStart(), event.LatestStart()) {
		// Earliest feasible slot wins.
		return o.tryScheduleAt(event, slot)
	}
	return false
}

// tryScheduleAt assigns the instant only if it satisfies both the event's own
// constraints and the calendar's availability.
func (o *Optimizer) tryScheduleAt(event *domain.Event, start time.Time) bool {
	if !event.CanBeScheduledAt(start) {
		return false
	}
	if !o.calendar.IsTimeAvailable(start, event.Duration(), nil) {
		return false
	}
	return event.ScheduleAt(start)
}

// ResolveConflicts scans the current schedule for overlapping pairs and
// attempts to move the losing side of each pair to a new slot. Conflicts that
// cannot be resolved are skipped: the moved candidate is rolled back to its
// original time without re-validating availability.
func (o *Optimizer) ResolveConflicts() []domain.Resolution {
	resolutions := make([]domain.Resolution, 0)

	for _, pair := range o.calendar.Conflicts() {
		if res, ok := o.resolvePair(pair.First, pair.Second); ok {
			resolutions = append(resolutions, res)
		}
	}

	return resolutions
}

// resolvePair decides which side of a conflicting pair moves. Higher priority
// stays; at equal priority a fixed event stays; otherwise the later-scheduled
// event moves.
func (o *Optimizer) resolvePair(first, second *domain.Event) (domain.Resolution, bool) {
	switch {
	case first.Priority().HigherThan(second.Priority()):
		return o.tryReschedule(second, first)
	case second.Priority().HigherThan(first.Priority()):
		return o.tryReschedule(first, second)
	case first.IsFixed() && !second.IsFixed():
		return o.tryReschedule(second, first)
	case second.IsFixed() && !first.IsFixed():
		return o.tryReschedule(first, second)
	default:
		firstStart := first.ScheduledTime()
		secondStart := second.ScheduledTime()
		if firstStart != nil && secondStart != nil && firstStart.After(*secondStart) {
			return o.tryReschedule(first, second)
		}
		return o.tryReschedule(second, first)
	}
}

// tryReschedule moves event away from kept. On failure the original start is
// restored best-effort.
func (o *Optimizer) tryReschedule(event, kept *domain.Event) (domain.Resolution, bool) {
	original := event.ScheduledTime()
	event.Unschedule()

	for slot := range o.calendar.AvailableSlots(event.Duration(), event.EarliestStart(), event.LatestStart()) {
		if event.ScheduleAt(slot) {
			o.logger.Debug("conflict resolved",
				"moved", event.Title(),
				"kept", kept.Title(),
				"new_start", slot,
			)
			return domain.Resolution{
				Moved:       event,
				Kept:        kept,
				Description: fmt.Sprintf("Moved %s to %s", event.Title(), slot.Format("15:04")),
			}, true
		}
	}

	if original != nil {
		event.ScheduleAt(*original)
	}
	return domain.Resolution{}, false
}

// SuggestImprovements returns read-only schedule diagnostics: large gaps
// between consecutive scheduled events and unscheduled high-priority work.
func (o *Optimizer) SuggestImprovements() []string {
	suggestions := make([]string, 0)

	scheduled := o.calendar.ScheduledEvents()
	sort.SliceStable(scheduled, func(i, j int) bool {
		return scheduled[i].ScheduledTime().Before(*scheduled[j].ScheduledTime())
	})

	for i := 0; i < len(scheduled)-1; i++ {
		currentEnd, _ := scheduled[i].EndTime()
		nextStart := scheduled[i+1].ScheduledTime()
		gap := nextStart.Sub(currentEnd)
		if gap > LargeGapThreshold {
			suggestions = append(suggestions, fmt.Sprintf(
				"Large gap (%d min) between %s and %s",
				int(gap.Minutes()), scheduled[i].Title(), scheduled[i+1].Title(),
			))
		}
	}

	unscheduledHigh := 0
	for _, e := range o.calendar.UnscheduledEvents() {
		if e.Priority() == domain.PriorityHigh {
			unscheduledHigh++
		}
	}
	if unscheduledHigh > 0 {
		suggestions = append(suggestions, fmt.Sprintf(
			"%d high-priority events remain unscheduled", unscheduledHigh,
		))
	}

	return suggestions
}

// OptimizationReport renders scheduling statistics and suggestions as text.
func (o *Optimizer) OptimizationReport() string {
	scheduledCount := len(o.calendar.ScheduledEvents())
	totalCount := len(o.calendar.Events())
	conflictCount := len(o.calendar.Conflicts())

	successRate := 0.0
	if totalCount > 0 {
		successRate = float64(scheduledCount) / float64(totalCount) * 100
	}

	var b strings.Builder
	b.WriteString("Optimization Report:\n")
	fmt.Fprintf(&b, "  Scheduled: %d/%d events\n", scheduledCount, totalCount)
	fmt.Fprintf(&b, "  Conflicts: %d\n", conflictCount)
	fmt.Fprintf(&b, "  Success Rate: %.1f%%\n", successRate)

	if suggestions := o.SuggestImprovements(); len(suggestions) > 0 {
		b.WriteString("\nSuggestions:\n")
		for _, s := range suggestions {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}

	return b.String()
}

func earliestOrZero(e *domain.Event) time.Time {
	if start := e.EarliestStart(); start != nil {
		return *start
	}
	return time.Time{}
}
