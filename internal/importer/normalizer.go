package importer

import (
	"strings"
	"time"

	"github.com/allhaile/puppyTrackr-sub000/internal/domain"
)

// Canonical internal field names produced by the header dictionary.
const (
	fieldDateTime = "dateTime"
	fieldWhen     = "when"
	fieldType     = "type"
	fieldPeePoop  = "peePoop"
	fieldNotes    = "notes"
	fieldVibe     = "vibe"
	fieldEnergy   = "energy"
	fieldTreat    = "treat"
	fieldUser     = "user"
)

// fieldDictionary maps source column names to canonical fields. Lookup is
// case-sensitive after trimming surrounding whitespace; the BOM-prefixed
// variant covers exports whose first header carries a UTF-8 byte-order mark.
var fieldDictionary = map[string]string{
	"Date/Time":       fieldDateTime,
	"\uFEFFDate/Time": fieldDateTime,
	"Date":            fieldDateTime,
	"Timestamp":       fieldDateTime,
	"When?":           fieldWhen,
	"When":            fieldWhen,
	"Time":            fieldWhen,
	"Entry type?":     fieldType,
	"Entry type":      fieldType,
	"Type":            fieldType,
	"Activity":        fieldType,
	"Pee or poo?":     fieldPeePoop,
	"Pee or Poo?":     fieldPeePoop,
	"Potty type":      fieldPeePoop,
	"Notes":           fieldNotes,
	"Note":            fieldNotes,
	"Vibe?":           fieldVibe,
	"Vibe":            fieldVibe,
	"Mood":            fieldVibe,
	"Energy level?":   fieldEnergy,
	"Energy level":    fieldEnergy,
	"Energy":          fieldEnergy,
	"Treat?":          fieldTreat,
	"Treat":           fieldTreat,
	"Treat given?":    fieldTreat,
	"Logged By?":      fieldUser,
	"Logged By":       fieldUser,
	"Logged by":       fieldUser,
	"Caregiver":       fieldUser,
	"User":            fieldUser,
}

// labelDictionary maps lower-cased activity labels to canonical types. Known
// multi-label combinations collapse to the single operationally dominant type;
// downstream consumers rely on one primary type per record, so this table must
// not be "fixed" into a multi-type union.
var labelDictionary = map[string][]domain.ActivityType{
	"potty":      {domain.TypePotty},
	"pee":        {domain.TypePotty},
	"poo":        {domain.TypePotty},
	"poop":       {domain.TypePotty},
	"pee or poo": {domain.TypePotty},
	"meal":       {domain.TypeMeal},
	"food":       {domain.TypeMeal},
	"feeding":    {domain.TypeMeal},
	"snack":      {domain.TypeMeal},
	"sleep":      {domain.TypeSleep},
	"nap":        {domain.TypeSleep},
	"med":        {domain.TypeMed},
	"meds":       {domain.TypeMed},
	"medication": {domain.TypeMed},
	"medicine":   {domain.TypeMed},
	"training":   {domain.TypeTraining},
	"grooming":   {domain.TypeGrooming},
	"bath":       {domain.TypeGrooming},
	"note":       {domain.TypeNote},
	"other":      {domain.TypeNote},

	"meal, training":  {domain.TypeMeal},
	"meal, potty":     {domain.TypeMeal},
	"potty, training": {domain.TypePotty},
	"sleep, potty":    {domain.TypePotty},
}

// defaultMood fills the mood field when the export carries none.
const defaultMood = "\U0001F60A"

// Normalizer maps raw records to canonical activity entries. It is a pure
// function of (record, dictionaries) apart from the injected clock.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer constructs a Normalizer using the wall clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewNormalizerWithClock constructs a Normalizer with a fixed clock for tests.
func NewNormalizerWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// NormalizeRecord converts one raw record into canonical entries. The current
// mapping always yields exactly one entry per record; the slice return leaves
// room for producers that split a row into several entries. Malformed values
// never fail a row: every field has a documented fallback.
func (n *Normalizer) NormalizeRecord(raw *domain.RawRecord, defaultUser string) []domain.ActivityEntry {
	fields := canonicalFields(raw)

	rawLabel := fields[fieldType]
	types := resolveTypes(rawLabel)

	user := fields[fieldUser]
	if user == "" {
		user = defaultUser
	}

	mood := fields[fieldVibe]
	if mood == "" {
		mood = defaultMood
	}

	entry := domain.ActivityEntry{
		ID:       domain.NewImportID(n.now()),
		Time:     n.resolveTime(fields),
		User:     user,
		Type:     types[0],
		Types:    types,
		Notes:    fields[fieldNotes],
		Details:  synthesizeDetails(fields, rawLabel),
		Mood:     mood,
		Energy:   fields[fieldEnergy],
		HasTreat: fields[fieldTreat] == "Yes",
	}
	return []domain.ActivityEntry{entry}
}

// canonicalFields resolves raw column names through the header dictionary,
// keeping only recognized keys with non-empty, non-"None" values.
func canonicalFields(raw *domain.RawRecord) map[string]string {
	out := make(map[string]string)
	for _, key := range raw.Keys() {
		canonical, ok := fieldDictionary[strings.TrimSpace(key)]
		if !ok {
			continue
		}
		value, _ := raw.Get(key)
		value = strings.TrimSpace(value)
		if value == "" || value == "None" {
			continue
		}
		out[canonical] = value
	}
	return out
}

// resolveTypes maps a raw activity label to canonical types. The whole label
// is looked up first so known multi-label combinations hit their collapsed
// mapping; otherwise each comma-separated token is mapped independently.
// Nothing mappable falls back to note.
func resolveTypes(rawLabel string) []domain.ActivityType {
	label := strings.ToLower(strings.TrimSpace(rawLabel))
	if label == "" {
		return []domain.ActivityType{domain.TypeNote}
	}
	if mapped, ok := labelDictionary[label]; ok {
		return dedupeTypes(mapped)
	}

	var resolved []domain.ActivityType
	for _, token := range strings.Split(label, ",") {
		token = strings.TrimSpace(token)
		if mapped, ok := labelDictionary[token]; ok {
			resolved = append(resolved, mapped...)
		}
	}
	resolved = dedupeTypes(resolved)
	if len(resolved) == 0 {
		resolved = []domain.ActivityType{domain.TypeNote}
	}
	return resolved
}

func dedupeTypes(types []domain.ActivityType) []domain.ActivityType {
	seen := make(map[domain.ActivityType]struct{}, len(types))
	out := make([]domain.ActivityType, 0, len(types))
	for _, t := range types {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// synthesizeDetails joins secondary structured fields into one display string.
// The raw multi-activity label is recorded so consumers can still show every
// activity the source row covered after the collapse to a single primary type.
func synthesizeDetails(fields map[string]string, rawLabel string) string {
	parts := make([]string, 0, 3)
	if strings.Contains(rawLabel, ",") {
		parts = append(parts, "Activities: "+strings.TrimSpace(rawLabel))
	}
	if v := fields[fieldPeePoop]; v != "" {
		parts = append(parts, "Potty: "+v)
	}
	if v := fields[fieldEnergy]; v != "" {
		parts = append(parts, "Energy: "+v)
	}
	return strings.Join(parts, "; ")
}
