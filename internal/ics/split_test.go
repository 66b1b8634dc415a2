package ics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_UnfoldJoinsContinuationLines(t *testing.T) {
	assert.Equal(t, "LINE1LINE2", Unfold("LINE1\n LINE2"))
	assert.Equal(t, "LINE1LINE2", Unfold("LINE1\r\n\tLINE2"))
	assert.Equal(t, "LINE1\nLINE2", Unfold("LINE1\r\nLINE2"))
}

func Test_UnfoldBeforeSplitSpansComponentBoundary(t *testing.T) {
	// The BEGIN marker itself is folded across two physical lines; fold
	// removal has to happen before the split, or this event is lost.
	feed := "BEGIN:VCALENDAR\r\nBEGIN:VEV\r\n ENT\r\nSUMMARY:Picnic\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n"

	blocks := SplitEventBlocks(feed)
	assert.Len(t, blocks, 1)
	assert.Equal(t, "Picnic", Get(blocks[0], "SUMMARY"))
}

func Test_SplitEventBlocks(t *testing.T) {
	feed := "BEGIN:VCALENDAR\nVERSION:2.0\n" +
		"BEGIN:VEVENT\nSUMMARY:One\nEND:VEVENT\n" +
		"BEGIN:VEVENT\nSUMMARY:Two\nEND:VEVENT\n" +
		"END:VCALENDAR\n"

	blocks := SplitEventBlocks(feed)
	assert.Len(t, blocks, 2)
	assert.Equal(t, "One", Get(blocks[0], "SUMMARY"))
	assert.Equal(t, "Two", Get(blocks[1], "SUMMARY"))
}

func Test_SplitEventBlocksNoEvents(t *testing.T) {
	assert.Empty(t, SplitEventBlocks("BEGIN:VCALENDAR\nEND:VCALENDAR\n"))
	assert.Empty(t, SplitEventBlocks(""))
	assert.Empty(t, SplitEventBlocks("not a calendar at all"))
}

func Test_GetFieldParameters(t *testing.T) {
	block := "\nDTSTART;TZID=America/New_York;VALUE=DATE-TIME:20250315T090000\nEND:VEVENT\n"

	f, ok := GetField(block, "DTSTART")
	assert.True(t, ok)
	assert.Equal(t, "20250315T090000", f.Value)
	assert.Equal(t, "America/New_York", f.Params["TZID"])
	assert.Equal(t, "DATE-TIME", f.Params["VALUE"])
}

func Test_GetFieldUppercasesParameterKeys(t *testing.T) {
	block := "\nDTSTART;tzid=Europe/Paris:20250315T090000\n"

	f, ok := GetField(block, "DTSTART")
	assert.True(t, ok)
	assert.Equal(t, "Europe/Paris", f.Params["TZID"])
}

func Test_GetFieldFirstMatchWins(t *testing.T) {
	block := "\nSUMMARY:first\nSUMMARY:second\n"

	f, ok := GetField(block, "SUMMARY")
	assert.True(t, ok)
	assert.Equal(t, "first", f.Value)
}

func Test_GetFieldNoParameters(t *testing.T) {
	f, ok := GetField("\nSUMMARY:Coffee hour\n", "SUMMARY")
	assert.True(t, ok)
	assert.Equal(t, "Coffee hour", f.Value)
	assert.Empty(t, f.Params)
}

func Test_GetFieldMissing(t *testing.T) {
	_, ok := GetField("\nSUMMARY:Coffee hour\n", "DTSTART")
	assert.False(t, ok)
	assert.Equal(t, "", Get("\nSUMMARY:Coffee hour\n", "DTSTART"))
}

func Test_GetFieldQuotedParameterValue(t *testing.T) {
	// RFC 5545 3.1.1: a quoted parameter value may contain a colon.
	block := "\nORGANIZER;CN=\"Smith: Events\":mailto:events@example.com\n"

	f, ok := GetField(block, "ORGANIZER")
	assert.True(t, ok)
	assert.Equal(t, "mailto:events@example.com", f.Value)
	assert.Equal(t, `"Smith: Events"`, f.Params["CN"])
}

func Test_UnescapeText(t *testing.T) {
	assert.Equal(t, "Choir practice, Room 2\nBring music",
		UnescapeText(`Choir practice\, Room 2\nBring music`))
	assert.Equal(t, `C:\temp`, UnescapeText(`C:\\temp`))
	assert.Equal(t, "trimmed", UnescapeText("  trimmed \n"))
	assert.Equal(t, "", UnescapeText(""))
}
