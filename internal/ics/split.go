package ics

import (
	"strings"
)

// beginEvent marks the start of a VEVENT component. Splitting happens on
// this token only; calendar headers, VTIMEZONE and VALARM components are
// never inspected on their own.
const beginEvent = "BEGIN:VEVENT"

// Field is one extracted content line of a VEVENT block: the property name,
// its raw value (everything after the colon, already unfolded) and the
// parameter map with keys upper-cased for lookup consistency.
type Field struct {
	Name   string
	Value  string
	Params map[string]string
}

// Unfold normalizes line endings to "\n" and removes every line fold. A
// fold is a line break immediately followed by a single space or tab; the
// break and the whitespace character are both dropped so the two physical
// lines join into one logical line.
//
// Folds must be removed before any splitting, since a folded line can span
// a component boundary token.
func Unfold(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\n ", "")
	text = strings.ReplaceAll(text, "\n\t", "")
	return text
}

// SplitEventBlocks unfolds the feed and cuts it into one block per VEVENT.
// Each block is the text from one BEGIN:VEVENT marker up to the next (or
// the end of the feed); the trailing END line and anything after it stay in
// the block and are simply never matched by field extraction. A feed with
// no event marker yields no blocks.
func SplitEventBlocks(feed string) []string {
	parts := strings.Split(Unfold(feed), beginEvent)
	if len(parts) <= 1 {
		return nil
	}
	return parts[1:]
}

// GetField returns the first content line in block whose property name
// equals name (case-sensitive). Later occurrences of the same name are
// ignored, matching first-wins behavior for malformed duplicate fields.
func GetField(block, name string) (Field, bool) {
	for _, line := range strings.Split(block, "\n") {
		f, ok := parseContentLine(line)
		if !ok {
			continue
		}
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Get is the value-only variant of GetField. A missing field yields "".
func Get(block, name string) string {
	f, ok := GetField(block, name)
	if !ok {
		return ""
	}
	return f.Value
}

// parseContentLine splits one logical line into name, parameters and value.
// Lines without a name/value separator are not fields and are skipped.
func parseContentLine(line string) (Field, bool) {
	head, value, ok := splitNameValue(line)
	if !ok {
		return Field{}, false
	}

	tokens := strings.Split(head, ";")
	f := Field{
		Name:   tokens[0],
		Value:  value,
		Params: make(map[string]string),
	}
	for _, p := range tokens[1:] {
		k, v, found := strings.Cut(p, "=")
		if !found {
			continue
		}
		f.Params[strings.ToUpper(k)] = v
	}
	return f, true
}

// splitNameValue cuts a content line at the first colon that is not inside
// a quoted parameter value (RFC 5545 3.1.1 allows quoted COLON in params).
func splitNameValue(line string) (head, value string, ok bool) {
	if !strings.Contains(line, `"`) {
		return strings.Cut(line, ":")
	}

	quoted := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			quoted = !quoted
		case ':':
			if !quoted {
				return line[:i], line[i+1:], true
			}
		}
	}
	return "", "", false
}

// UnescapeText resolves the backslash escapes used by free-text fields, in
// a fixed order, then trims surrounding whitespace.
func UnescapeText(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\,`, ",")
	s = strings.ReplaceAll(s, `\\`, `\`)
	return strings.TrimSpace(s)
}
