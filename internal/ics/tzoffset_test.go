package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func naiveMillis(value string) int64 {
	t, err := time.Parse("20060102T150405", value)
	if err != nil {
		panic(err)
	}
	return t.UnixMilli()
}

func Test_OffsetMillisStandardTime(t *testing.T) {
	// New York in January observes EST, UTC-5.
	off := OffsetMillis(naiveMillis("20250115T120000"), "America/New_York")
	assert.Equal(t, int64(-5*3600*1000), off)
}

func Test_OffsetMillisDaylightTime(t *testing.T) {
	// New York in July observes EDT, UTC-4.
	off := OffsetMillis(naiveMillis("20250715T120000"), "America/New_York")
	assert.Equal(t, int64(-4*3600*1000), off)
}

func Test_OffsetMillisEastOfUTC(t *testing.T) {
	off := OffsetMillis(naiveMillis("20250115T120000"), "Asia/Seoul")
	assert.Equal(t, int64(9*3600*1000), off)
}

func Test_OffsetMillisUTC(t *testing.T) {
	assert.Equal(t, int64(0), OffsetMillis(naiveMillis("20250115T120000"), "UTC"))
}

func Test_OffsetMillisUnknownZoneFallsBackToUTC(t *testing.T) {
	assert.Equal(t, int64(0), OffsetMillis(naiveMillis("20250115T120000"), "Not/AZone"))
}

func Test_ResolveCivil(t *testing.T) {
	naive, _ := time.Parse("20060102T150405", "20250615T090000")
	got := resolveCivil(naive, "America/Chicago")
	assert.Equal(t, "2025-06-15T14:00:00Z", got.Format(time.RFC3339))
}

func Test_ResolveCivilSpringForwardGapIsDeterministic(t *testing.T) {
	// 02:30 on 2025-03-09 never occurs in New York. Whatever reading the
	// zone database picks, repeated resolution must agree.
	naive, _ := time.Parse("20060102T150405", "20250309T023000")

	first := resolveCivil(naive, "America/New_York")
	second := resolveCivil(naive, "America/New_York")
	assert.True(t, first.Equal(second))
}

func Test_ResolveCivilFallBackOverlapIsDeterministic(t *testing.T) {
	// 01:30 on 2025-11-02 occurs twice in New York.
	naive, _ := time.Parse("20060102T150405", "20251102T013000")

	first := resolveCivil(naive, "America/New_York")
	second := resolveCivil(naive, "America/New_York")
	assert.True(t, first.Equal(second))
}
