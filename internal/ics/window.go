package ics

import (
	"sort"
	"time"

	"github.com/vumc-media/atrium-calendar-feed/internal/model"
)

// SelectWindow filters events to those starting inside the inclusive window
// [now, now+horizonDays], sorts them ascending by start and truncates to
// maxItems, keeping the earliest. Events without a start instant are always
// excluded. The sort is stable, so ties keep feed order.
func SelectWindow(events []model.Event, now time.Time, horizonDays, maxItems int) []model.Event {
	horizon := now.AddDate(0, 0, horizonDays)

	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.StartsIn(now, horizon) {
			out = append(out, ev)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(*out[j].Start)
	})

	if maxItems > 0 && len(out) > maxItems {
		out = out[:maxItems]
	}
	return out
}
