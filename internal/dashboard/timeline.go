// Package dashboard builds the read models the guild dashboard shows next to
// the planner: the event timeline and the member search.
package dashboard

import (
	"slices"
	"time"

	"github.com/Sizimon/grippendor/internal/models"
)

// RecentLimit is how many past events the timeline keeps in Recent.
const RecentLimit = 3

// Timeline splits a guild's events around a point in time.
type Timeline struct {
	// Upcoming holds events strictly after now, soonest first.
	Upcoming []models.Event `json:"upcoming"`
	// Past holds events at or before now, latest first.
	Past []models.Event `json:"past"`
	// Recent is the head of Past.
	Recent []models.Event `json:"recent"`
	// ThisWeek holds upcoming events within seven days of now.
	ThisWeek []models.Event `json:"this_week"`
	Next     *models.Event  `json:"next,omitempty"`
}

// BuildTimeline sorts events into a Timeline. Events with equal dates keep
// their input order.
func BuildTimeline(events []models.Event, now time.Time) Timeline {
	t := Timeline{
		Upcoming: []models.Event{},
		Past:     []models.Event{},
		ThisWeek: []models.Event{},
	}

	for _, e := range events {
		if e.EventDate.After(now) {
			t.Upcoming = append(t.Upcoming, e)
		} else {
			t.Past = append(t.Past, e)
		}
	}
	slices.SortStableFunc(t.Upcoming, func(a, b models.Event) int {
		return a.EventDate.Compare(b.EventDate)
	})
	slices.SortStableFunc(t.Past, func(a, b models.Event) int {
		return b.EventDate.Compare(a.EventDate)
	})

	t.Recent = t.Past[:min(RecentLimit, len(t.Past))]

	weekAhead := now.AddDate(0, 0, 7)
	for _, e := range t.Upcoming {
		if !e.EventDate.After(weekAhead) {
			t.ThisWeek = append(t.ThisWeek, e)
		}
	}

	if len(t.Upcoming) > 0 {
		next := t.Upcoming[0]
		t.Next = &next
	}
	return t
}
