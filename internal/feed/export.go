package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/vumc-media/atrium-calendar-feed/internal/model"
)

// Export serializes the selected agenda window as a trimmed ICS feed, so
// operators can subscribe to exactly what the board displays. This is a
// one-way export; the source calendar is never written to.
func Export(events []model.Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//Atrium//Calendar Board//EN")
	cal.SetXWRCalName("Atrium agenda")

	for _, ev := range events {
		e := cal.AddEvent(eventUID(ev))
		e.SetDtStampTime(now.UTC())
		e.SetSummary(ev.Title)
		if ev.Location != "" {
			e.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			e.SetDescription(ev.Description)
		}
		if ev.Start != nil {
			if ev.AllDay {
				e.SetAllDayStartAt(*ev.Start)
			} else {
				e.SetStartAt(*ev.Start)
			}
		}
		if ev.End != nil {
			if ev.AllDay {
				e.SetAllDayEndAt(*ev.End)
			} else {
				e.SetEndAt(*ev.End)
			}
		}
	}

	return cal.Serialize()
}

// eventUID derives a stable UID from the event's own fields. The source
// feed's UIDs are not modeled, so content addressing is the next best
// stable identity.
func eventUID(ev model.Event) string {
	h := sha256.New()
	h.Write([]byte(ev.Title))
	if ev.Start != nil {
		h.Write([]byte(ev.Start.UTC().Format(time.RFC3339)))
	}
	return hex.EncodeToString(h.Sum(nil)[:12]) + "@atrium-board"
}
