package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
)

// Document field names.
const (
	FieldScores            = "scores"
	FieldTotalScore        = "totalScore"
	FieldBadges            = "badges"
	FieldVisitedGames      = "visitedGames"
	FieldStreak            = "streak"
	FieldStreakLastUpdated = "streakLastUpdated"

	knownFieldCount = 6
)

// ErrInvalidDocument is returned when the input is not a JSON object.
var ErrInvalidDocument = errors.New("progress document must be a JSON object")

// Document is the per-user progress document.
// A nil map, slice or pointer means the field is absent.
type Document struct {
	// Scores maps a game identifier to the best score reached in it.
	Scores map[string]float64
	// TotalScore is the sum of Scores.
	TotalScore *float64
	// Badges is the set of earned badge identifiers.
	Badges []string
	// VisitedGames is the set of opened game identifiers.
	VisitedGames []string
	// Streak is the consecutive-days counter.
	Streak *float64
	// StreakLastUpdated is the ISO timestamp of the last streak change.
	StreakLastUpdated *string
	// Extra holds every other top-level field, and known fields whose value has an unexpected type.
	Extra map[string]json.RawMessage
}

// ParseDocument decodes a document. Empty input and JSON null mean there is no document.
func ParseDocument(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil //nolint:nilnil // Absent document is not an error.
	}

	var document Document
	if err := document.UnmarshalJSON(trimmed); err != nil {
		return nil, err
	}

	return &document, nil
}

// UnmarshalJSON implements json.Unmarshaler.
//
//nolint:cyclop // One case per known field.
func (d *Document) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	*d = Document{}

	for name, raw := range fields {
		var decoded bool

		switch name {
		case FieldScores:
			d.Scores, decoded = decodeScores(raw)
		case FieldTotalScore:
			decoded = decodeNonNull(raw, &d.TotalScore) && d.TotalScore != nil
		case FieldBadges:
			d.Badges, decoded = decodeSet(raw)
		case FieldVisitedGames:
			d.VisitedGames, decoded = decodeSet(raw)
		case FieldStreak:
			decoded = decodeNonNull(raw, &d.Streak) && d.Streak != nil
		case FieldStreakLastUpdated:
			decoded = decodeNonNull(raw, &d.StreakLastUpdated) && d.StreakLastUpdated != nil
		}

		if decoded {
			continue
		}

		if d.Extra == nil {
			d.Extra = make(map[string]json.RawMessage)
		}

		d.Extra[name] = slices.Clone(raw)
	}

	return nil
}

// decodeNonNull decodes raw into target. On failure the target is reset to its zero value.
func decodeNonNull[T any](raw json.RawMessage, target *T) bool {
	if err := json.Unmarshal(raw, target); err != nil {
		var zero T

		*target = zero

		return false
	}

	return true
}

// decodeScores decodes a scores map. A null score makes the whole map unexpected.
func decodeScores(raw json.RawMessage) (map[string]float64, bool) {
	var values map[string]*float64
	if !decodeNonNull(raw, &values) || values == nil {
		return nil, false
	}

	scores := make(map[string]float64, len(values))

	for game, value := range values {
		if value == nil {
			return nil, false
		}

		scores[game] = *value
	}

	return scores, true
}

// decodeSet decodes a string set. A null member makes the whole set unexpected.
func decodeSet(raw json.RawMessage) ([]string, bool) {
	var values []*string
	if !decodeNonNull(raw, &values) || values == nil {
		return nil, false
	}

	set := make([]string, 0, len(values))

	for _, value := range values {
		if value == nil {
			return nil, false
		}

		set = append(set, *value)
	}

	return set, true
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(d.Extra)+knownFieldCount)

	for name, raw := range d.Extra {
		fields[name] = raw
	}

	setIfPresent(fields, FieldScores, d.Scores, d.Scores != nil)
	setIfPresent(fields, FieldTotalScore, d.TotalScore, d.TotalScore != nil)
	setIfPresent(fields, FieldBadges, d.Badges, d.Badges != nil)
	setIfPresent(fields, FieldVisitedGames, d.VisitedGames, d.VisitedGames != nil)
	setIfPresent(fields, FieldStreak, d.Streak, d.Streak != nil)
	setIfPresent(fields, FieldStreakLastUpdated, d.StreakLastUpdated, d.StreakLastUpdated != nil)

	return json.Marshal(fields)
}

func setIfPresent(fields map[string]any, name string, value any, present bool) {
	if present {
		fields[name] = value
	}
}

// Clone returns a deep copy of the document. Cloning nil returns nil.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}

	clone := &Document{
		Scores:       maps.Clone(d.Scores),
		TotalScore:   clonePointer(d.TotalScore),
		Badges:       slices.Clone(d.Badges),
		VisitedGames: slices.Clone(d.VisitedGames),
		Streak:       clonePointer(d.Streak),

		StreakLastUpdated: clonePointer(d.StreakLastUpdated),
	}

	if d.Extra != nil {
		clone.Extra = make(map[string]json.RawMessage, len(d.Extra))

		for name, raw := range d.Extra {
			clone.Extra[name] = slices.Clone(raw)
		}
	}

	return clone
}

func clonePointer[T any](value *T) *T {
	if value == nil {
		return nil
	}

	copied := *value

	return &copied
}

// SumScores returns the sum of all scores, added in key order so the result is deterministic.
func (d *Document) SumScores() float64 {
	keys := make([]string, 0, len(d.Scores))
	for key := range d.Scores {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var total float64
	for _, key := range keys {
		total += d.Scores[key]
	}

	return total
}

// Defines reports whether the document carries the field in any form, including null.
func (d *Document) Defines(name string) bool {
	if d == nil {
		return false
	}

	if _, ok := d.Extra[name]; ok {
		return true
	}

	return d.hasTyped(name)
}

func (d *Document) hasTyped(name string) bool {
	switch name {
	case FieldScores:
		return d.Scores != nil
	case FieldTotalScore:
		return d.TotalScore != nil
	case FieldBadges:
		return d.Badges != nil
	case FieldVisitedGames:
		return d.VisitedGames != nil
	case FieldStreak:
		return d.Streak != nil
	case FieldStreakLastUpdated:
		return d.StreakLastUpdated != nil
	default:
		return false
	}
}

// IsEmpty reports whether the document has no fields at all.
func (d *Document) IsEmpty() bool {
	if d == nil {
		return true
	}

	return len(d.Extra) == 0 &&
		d.Scores == nil && d.TotalScore == nil &&
		d.Badges == nil && d.VisitedGames == nil &&
		d.Streak == nil && d.StreakLastUpdated == nil
}
