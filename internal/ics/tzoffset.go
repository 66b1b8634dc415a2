package ics

import (
	"time"

	appLog "github.com/vumc-media/atrium-calendar-feed/internal/log"
)

// OffsetMillis computes the UTC offset, in milliseconds, in effect in the
// named zone for the civil moment described by naiveUTC. naiveUTC is the
// event's wall-clock fields read as if they were UTC; subtracting the
// returned offset from it yields the true instant.
//
// The computation renders the provisional instant back into civil fields in
// the target zone and diffs the two readings. A single application is exact
// for every real-world zone, and because the offset is read at the resolved
// instant (not the query instant) it follows daylight-saving transitions.
// For wall-clock times inside a spring-forward gap or fall-back overlap the
// result is whatever interpretation the zone database picks when rendering;
// it is deterministic for a given input.
func OffsetMillis(naiveUTC int64, zone string) int64 {
	loc := loadLocation(zone)
	t := time.UnixMilli(naiveUTC).In(loc)
	rendered := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	return rendered.UnixMilli() - naiveUTC
}

// resolveCivil converts a civil time, parsed as if it were UTC, into the
// true instant in the named zone.
func resolveCivil(naive time.Time, zone string) time.Time {
	ms := naive.UnixMilli()
	return time.UnixMilli(ms - OffsetMillis(ms, zone)).UTC()
}

// loadLocation resolves an IANA zone name. An empty or unknown name falls
// back to UTC; the fallback is logged but never fatal.
func loadLocation(zone string) *time.Location {
	if zone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		appLog.Warn("unknown timezone, using UTC", "zone", zone)
		return time.UTC
	}
	return loc
}
