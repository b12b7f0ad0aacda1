// Package ics renders a calendar's scheduled events as an iCalendar document.
package ics

import (
	"io"
	"sort"
	"time"

	"github.com/emersion/go-ical"

	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
)

const productID = "-//kairos//calendar export//EN"

// Export writes the scheduled events of the calendar as a VCALENDAR stream.
// Unscheduled events are omitted; an empty schedule still yields a valid
// document.
func Export(w io.Writer, calendar *domain.Calendar) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	now := time.Now().UTC()

	scheduled := calendar.ScheduledEvents()
	sort.SliceStable(scheduled, func(i, j int) bool {
		return scheduled[i].ScheduledTime().Before(*scheduled[j].ScheduledTime())
	})

	for _, event := range scheduled {
		start := *event.ScheduledTime()
		end, _ := event.EndTime()

		vevent := ical.NewEvent()
		vevent.Props.SetText(ical.PropUID, event.ID().String())
		vevent.Props.SetDateTime(ical.PropDateTimeStamp, now)
		vevent.Props.SetDateTime(ical.PropDateTimeStart, start)
		vevent.Props.SetDateTime(ical.PropDateTimeEnd, end)
		vevent.Props.SetText(ical.PropSummary, event.Title())
		if event.Description() != "" {
			vevent.Props.SetText(ical.PropDescription, event.Description())
		}
		if event.Location() != "" {
			vevent.Props.SetText(ical.PropLocation, event.Location())
		}

		cal.Children = append(cal.Children, vevent.Component)
	}

	return ical.NewEncoder(w).Encode(cal)
}
