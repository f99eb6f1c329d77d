// Package domain defines the canonical entry model shared by the import
// pipeline, persistence, and the API layer.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActivityType is a canonical activity code from the controlled vocabulary.
type ActivityType string

const (
	TypePotty    ActivityType = "potty"
	TypeMeal     ActivityType = "meal"
	TypeSleep    ActivityType = "sleep"
	TypeMed      ActivityType = "med"
	TypeTraining ActivityType = "training"
	TypeGrooming ActivityType = "grooming"
	TypeNote     ActivityType = "note"
)

// ActivityTypes lists the full vocabulary in display order.
var ActivityTypes = []ActivityType{
	TypePotty, TypeMeal, TypeSleep, TypeMed, TypeTraining, TypeGrooming, TypeNote,
}

// Known reports whether t belongs to the controlled vocabulary.
func (t ActivityType) Known() bool {
	switch t {
	case TypePotty, TypeMeal, TypeSleep, TypeMed, TypeTraining, TypeGrooming, TypeNote:
		return true
	}
	return false
}

// ImportIDPrefix tags entry IDs minted by the import pipeline so they stay
// distinguishable from entries logged through the app.
const ImportIDPrefix = "imported_"

// NewImportID mints a unique import-provenance ID for the given mint time.
func NewImportID(now time.Time) string {
	return fmt.Sprintf("%s%d_%s", ImportIDPrefix, now.UnixMilli(), uuid.NewString()[:8])
}

// ActivityEntry is the canonical activity record produced by normalization and
// persisted to the household's entry collection.
type ActivityEntry struct {
	ID       string         `json:"id"`
	Time     time.Time      `json:"time"`
	User     string         `json:"user"`
	Type     ActivityType   `json:"type"`
	Types    []ActivityType `json:"types"`
	Notes    string         `json:"notes,omitempty"`
	Details  string         `json:"details,omitempty"`
	Mood     string         `json:"mood,omitempty"`
	Energy   string         `json:"energy,omitempty"`
	HasTreat bool           `json:"hasTreat"`
}

// Imported reports whether the entry was created by the import pipeline.
func (e ActivityEntry) Imported() bool {
	return strings.HasPrefix(e.ID, ImportIDPrefix)
}

// MergeResult reports the outcome of merging a normalized batch into an
// existing collection.
type MergeResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

// PreviewSummary aggregates a normalized batch for human review before commit.
type PreviewSummary struct {
	TotalEntries      int                  `json:"total_entries"`
	EarliestDate      string               `json:"earliest_date"`
	LatestDate        string               `json:"latest_date"`
	ActivityBreakdown map[ActivityType]int `json:"activity_breakdown"`
	SampleEntries     []ActivityEntry      `json:"sample_entries"`
}

// ImportResult is returned by the top-level import pipeline entry point.
type ImportResult struct {
	Entries    []ActivityEntry
	Preview    PreviewSummary
	RawRecords []RawRecord
}
