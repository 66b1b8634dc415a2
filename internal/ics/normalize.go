package ics

import (
	"regexp"
	"strings"
	"time"

	appLog "github.com/vumc-media/atrium-calendar-feed/internal/log"
	"github.com/vumc-media/atrium-calendar-feed/internal/model"
)

// PlaceholderTitle is substituted when a VEVENT has no usable SUMMARY.
const PlaceholderTitle = "Untitled event"

var (
	dateOnlyPattern = regexp.MustCompile(`^\d{8}$`)
	utcPattern      = regexp.MustCompile(`^\d{8}T\d{6}Z$`)
	floatingPattern = regexp.MustCompile(`^\d{8}T\d{6}$`)

	// Layouts tried, in order, for date values that match none of the
	// standard ICS shapes. Best effort only.
	fallbackLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"20060102T1504",
	}
)

// Normalizer turns VEVENT blocks into model.Event records. It never fails:
// unparseable fields degrade to placeholders or nil instants and the rest
// of the feed keeps processing.
type Normalizer struct {
	// DisplayZone is the IANA zone applied to civil times that carry no
	// TZID of their own.
	DisplayZone string
}

// Normalize produces exactly one Event from one block. Calling it twice on
// the same block yields structurally identical records.
func (n Normalizer) Normalize(block string) model.Event {
	ev := model.Event{
		Title:       UnescapeText(Get(block, "SUMMARY")),
		Location:    UnescapeText(Get(block, "LOCATION")),
		Description: UnescapeText(Get(block, "DESCRIPTION")),
	}
	if ev.Title == "" {
		ev.Title = PlaceholderTitle
	}

	start, hasStart := GetField(block, "DTSTART")
	ev.AllDay = isAllDay(block, start, hasStart)
	if hasStart {
		ev.Start = n.resolveInstant(start)
	}
	if end, ok := GetField(block, "DTEND"); ok {
		ev.End = n.resolveInstant(end)
	}
	return ev
}

// isAllDay applies the three detection rules in order: the VALUE=DATE
// parameter, a bare 8-digit start value, and the legacy literal prefix
// check against the raw block text.
func isAllDay(block string, start Field, hasStart bool) bool {
	if hasStart {
		if strings.EqualFold(start.Params["VALUE"], "DATE") {
			return true
		}
		if dateOnlyPattern.MatchString(strings.TrimSpace(start.Value)) {
			return true
		}
	}
	return strings.Contains(block, "DTSTART;VALUE=DATE:")
}

// resolveInstant derives the absolute instant for one date field.
//
//   - bare date: midnight civil time in the field's TZID (or the display
//     zone), resolved through the offset computation
//   - date-time with trailing Z: already UTC, parsed directly
//   - date-time without Z: floating civil time, resolved like the bare date
//   - anything else: generic layout sweep, nil with a warning on failure
func (n Normalizer) resolveInstant(f Field) *time.Time {
	v := strings.TrimSpace(f.Value)
	zone := f.Params["TZID"]
	if zone == "" {
		zone = n.DisplayZone
	}

	switch {
	case dateOnlyPattern.MatchString(v):
		naive, err := time.Parse("20060102", v)
		if err != nil {
			break
		}
		t := resolveCivil(naive, zone)
		return &t

	case utcPattern.MatchString(v):
		t, err := time.Parse("20060102T150405Z", v)
		if err != nil {
			break
		}
		t = t.UTC()
		return &t

	case floatingPattern.MatchString(v):
		naive, err := time.Parse("20060102T150405", v)
		if err != nil {
			break
		}
		t := resolveCivil(naive, zone)
		return &t
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t
		}
	}

	appLog.Warn("unparseable date value, dropping instant", "field", f.Name, "value", v)
	return nil
}
