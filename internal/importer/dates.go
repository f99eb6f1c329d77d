package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// primaryLayout matches the export's native timestamp format,
// e.g. "July 27, 2025 9:03 AM".
const primaryLayout = "January 2, 2006 3:04 PM"

// genericLayouts are tried after the primary format. Results are only
// accepted when the year lands inside the sanity window, guarding against
// layouts that technically match but misread the input.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"January 2, 2006",
}

const (
	saneYearMin = 2020
	saneYearMax = 2030
)

var (
	slashDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})$`)
	bareTimePattern  = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?:\s*([AaPp][Mm]))?$`)
)

// resolveTime derives the entry timestamp from canonical fields via a layered
// fallback chain. Each step is isolated; the final fallback is the clock, so
// every record gets a valid timestamp.
func (n *Normalizer) resolveTime(fields map[string]string) time.Time {
	if raw := fields[fieldDateTime]; raw != "" {
		if t, ok := parsePrimary(raw); ok {
			return t
		}
		if t, ok := parseGeneric(raw); ok {
			return t
		}
		if t, ok := parseSlashDate(raw); ok {
			return t
		}
	}
	if raw := fields[fieldWhen]; raw != "" {
		if t, ok := n.parseBareTime(raw); ok {
			return t
		}
	}
	return n.now()
}

// parsePrimary parses the native "<Month> <day>, <year> <h>:<mm> <AM|PM>"
// format in local time. The stdlib layout handles the 12-hour conversion,
// including 12 AM -> 0 and 12 PM -> 12.
func parsePrimary(raw string) (time.Time, bool) {
	raw = strings.Join(strings.Fields(raw), " ")
	t, err := time.ParseInLocation(primaryLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseGeneric(raw string) (time.Time, bool) {
	for _, layout := range genericLayouts {
		t, err := time.ParseInLocation(layout, raw, time.Local)
		if err != nil {
			continue
		}
		if t.Year() < saneYearMin || t.Year() > saneYearMax {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

// parseSlashDate handles MM/DD/YY and MM/DD/YYYY. Two-digit years use the
// pivot heuristic 00-30 -> 20xx, 31-99 -> 19xx.
func parseSlashDate(raw string) (time.Time, bool) {
	m := slashDatePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return time.Time{}, false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		if year <= 30 {
			year += 2000
		} else {
			year += 1900
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
}

// parseBareTime combines a bare "H:MM" or "H:MM AM/PM" with today's date.
func (n *Normalizer) parseBareTime(raw string) (time.Time, bool) {
	m := bareTimePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return time.Time{}, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 {
		return time.Time{}, false
	}

	switch strings.ToUpper(m[3]) {
	case "PM":
		if hour < 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 {
		return time.Time{}, false
	}

	today := n.now()
	return time.Date(today.Year(), today.Month(), today.Day(), hour, minute, 0, 0, time.Local), true
}
