package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/progress-sync/internal/config"
	"github.com/oshokin/progress-sync/internal/service/progress"
	"github.com/oshokin/progress-sync/internal/service/remote"
	"github.com/oshokin/progress-sync/internal/utils"
)

// ExecuteProgressShowCommand prints the cached progress, or the stored one when fromRemote is set.
func ExecuteProgressShowCommand(ctx context.Context, cfg *config.Config, fromRemote bool) {
	withApp(ctx, cfg, false, func(a *App) error {
		return a.ShowProgress(ctx, fromRemote)
	})
}

// ExecuteProgressMergeCommand merges two progress files and prints the result as JSON.
func ExecuteProgressMergeCommand(ctx context.Context, cfg *config.Config, localPath, remotePath string) {
	withApp(ctx, cfg, false, func(a *App) error {
		return a.MergeFiles(localPath, remotePath)
	})
}

// ShowProgress prints a progress document in a readable form.
func (a *App) ShowProgress(ctx context.Context, fromRemote bool) error {
	if !fromRemote {
		document, err := a.local.Load(ctx)
		if err != nil {
			return err
		}

		a.printDocument("local cache", document)

		return nil
	}

	current, err := a.sessions.Restore(ctx)
	if err != nil {
		return err
	}

	if current == nil {
		return ErrLoginRequired
	}

	document, err := a.remote.Load(ctx, current)
	if err != nil && !errors.Is(err, remote.ErrDocumentNotFound) {
		return err
	}

	a.printDocument("cloud ("+current.DisplayName()+")", document)

	return nil
}

// MergeFiles merges a local and a remote progress file.
// A missing or empty file stands for an absent document.
func (a *App) MergeFiles(localPath, remotePath string) error {
	localJSON, err := readOptionalFile(localPath)
	if err != nil {
		return err
	}

	remoteJSON, err := readOptionalFile(remotePath)
	if err != nil {
		return err
	}

	merged, err := progress.Merge(localJSON, remoteJSON)
	if err != nil {
		return err
	}

	output, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode merged progress: %w", err)
	}

	_, err = fmt.Fprintln(a.out, string(output))

	return err
}

func readOptionalFile(path string) ([]byte, error) {
	exists, err := utils.IsFileExist(path)
	if err != nil {
		return nil, fmt.Errorf("failed to check file %s: %w", path, err)
	}

	if !exists {
		return nil, nil
	}

	//nolint:gosec // The path comes from the command line on purpose.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return data, nil
}

func (a *App) printDocument(source string, document *progress.Document) {
	if document == nil || document.IsEmpty() {
		fmt.Fprintf(a.out, "No progress in %s\n", source)

		return
	}

	lines := []string{fmt.Sprintf("Progress in %s", source)}

	total := document.SumScores()
	if document.TotalScore != nil {
		total = *document.TotalScore
	}

	lines = append(lines, "Total score: "+humanize.Commaf(total))

	if len(document.Scores) > 0 {
		games := make([]string, 0, len(document.Scores))
		for game := range document.Scores {
			games = append(games, game)
		}

		sort.Strings(games)

		lines = append(lines, "Scores:")
		lines = append(lines, utils.Map(games, func(game string) string {
			return fmt.Sprintf("  %s: %s", game, humanize.Commaf(document.Scores[game]))
		})...)
	}

	if len(document.Badges) > 0 {
		lines = append(lines, "Badges: "+strings.Join(document.Badges, ", "))
	}

	if len(document.VisitedGames) > 0 {
		lines = append(lines, "Visited games: "+strings.Join(document.VisitedGames, ", "))
	}

	if document.Streak != nil {
		lines = append(lines, "Streak: "+humanize.Commaf(*document.Streak)+streakUpdated(document.StreakLastUpdated))
	}

	if len(document.Extra) > 0 {
		keys := make([]string, 0, len(document.Extra))
		for key := range document.Extra {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		lines = append(lines, "Other fields: "+strings.Join(keys, ", "))
	}

	fmt.Fprintln(a.out, strings.Join(lines, "\n"))
}

func streakUpdated(value *string) string {
	if value == nil {
		return ""
	}

	updatedAt, err := progress.ParseTimestamp(*value)
	if err != nil {
		return fmt.Sprintf(" (updated %s)", *value)
	}

	return fmt.Sprintf(" (updated %s)", humanize.Time(updatedAt))
}
