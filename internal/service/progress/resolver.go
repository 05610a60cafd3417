package progress

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/oshokin/progress-sync/internal/utils"
)

// Resolve reconciles a local and a remote document. Neither input is modified.
//
// The remote document is the base of the result. On top of it:
//   - a local score replaces the remote one when it is strictly greater;
//   - totalScore is recomputed whenever scores are present;
//   - badges and visited games become the union of both sets, remote members first;
//   - the local streak pair wins when its streak is non-zero and its timestamp is later;
//   - a field only the local document defines is taken from it.
//
// When one input is nil a copy of the other is returned.
func Resolve(local, remote *Document) *Document {
	switch {
	case remote == nil:
		return local.Clone()
	case local == nil:
		return remote.Clone()
	}

	merged := remote.Clone()

	resolveScores(merged, local)
	merged.Badges = resolveSet(merged, FieldBadges, merged.Badges, local.Badges)
	merged.VisitedGames = resolveSet(merged, FieldVisitedGames, merged.VisitedGames, local.VisitedGames)
	resolveStreak(merged, local)
	resolveExtras(merged, local)

	if merged.Scores != nil {
		total := merged.SumScores()
		merged.TotalScore = &total
	}

	merged.dropShadowedExtras()

	return merged
}

// Merge decodes two documents, resolves them and returns the result.
// The result is nil when both inputs are absent.
func Merge(localJSON, remoteJSON []byte) (*Document, error) {
	local, err := ParseDocument(localJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to parse local document: %w", err)
	}

	remote, err := ParseDocument(remoteJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remote document: %w", err)
	}

	return Resolve(local, remote), nil
}

func resolveScores(merged, local *Document) {
	if local.Scores == nil {
		return
	}

	if !merged.Defines(FieldScores) {
		merged.Scores = maps.Clone(local.Scores)

		return
	}

	if merged.Scores == nil {
		// The remote value is present but not a score map.
		return
	}

	for game, score := range local.Scores {
		if score > merged.Scores[game] {
			merged.Scores[game] = score
		}
	}
}

func resolveSet(merged *Document, name string, remoteSet, localSet []string) []string {
	switch {
	case localSet == nil:
		return remoteSet
	case remoteSet == nil && merged.Defines(name):
		// The remote value is present but not a list of strings.
		return nil
	default:
		return utils.UnionUnique(remoteSet, localSet)
	}
}

func resolveStreak(merged, local *Document) {
	if !merged.Defines(FieldStreak) && !merged.Defines(FieldStreakLastUpdated) {
		merged.Streak = clonePointer(local.Streak)
		merged.StreakLastUpdated = clonePointer(local.StreakLastUpdated)
		copyExtra(merged, local, FieldStreak)
		copyExtra(merged, local, FieldStreakLastUpdated)

		return
	}

	if local.Streak == nil || *local.Streak == 0 ||
		local.StreakLastUpdated == nil || merged.StreakLastUpdated == nil {
		return
	}

	localTime, err := ParseTimestamp(*local.StreakLastUpdated)
	if err != nil {
		return
	}

	remoteTime, err := ParseTimestamp(*merged.StreakLastUpdated)
	if err != nil {
		return
	}

	if localTime.After(remoteTime) {
		merged.Streak = clonePointer(local.Streak)
		merged.StreakLastUpdated = clonePointer(local.StreakLastUpdated)
	}
}

// resolveExtras adopts unknown fields that only the local document defines.
func resolveExtras(merged, local *Document) {
	for name := range local.Extra {
		if merged.Defines(name) {
			continue
		}

		copyExtra(merged, local, name)
	}
}

func copyExtra(merged, local *Document, name string) {
	raw, ok := local.Extra[name]
	if !ok {
		return
	}

	if merged.Extra == nil {
		merged.Extra = make(map[string]json.RawMessage)
	}

	merged.Extra[name] = slices.Clone(raw)
}

// dropShadowedExtras removes raw copies of known fields that now hold a typed value.
func (d *Document) dropShadowedExtras() {
	for name := range d.Extra {
		if d.hasTyped(name) {
			delete(d.Extra, name)
		}
	}

	if len(d.Extra) == 0 {
		d.Extra = nil
	}
}
