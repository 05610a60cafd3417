package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/progress-sync/internal/app"
)

var (
	//nolint:gochecknoglobals // Cobra command requires a global definition.
	progressCmd = &cobra.Command{
		Use:   "progress",
		Short: "Inspect and merge progress documents",
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	progressShowCmd = &cobra.Command{
		Use:              "show",
		Short:            "Show the cached progress, or the cloud copy with --remote",
		Args:             cobra.NoArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			fromRemote, _ := cmd.Flags().GetBool("remote")
			app.ExecuteProgressShowCommand(cmd.Context(), appConfig, fromRemote)
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	progressMergeCmd = &cobra.Command{
		Use:   "merge LOCAL REMOTE",
		Short: "Merge two progress JSON files and print the result",
		Long: `Merges a local and a remote progress document the same way a sync run does
and prints the merged document. A missing file stands for an absent document.`,
		Args:             cobra.ExactArgs(2), //nolint:mnd // LOCAL and REMOTE.
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, args []string) {
			app.ExecuteProgressMergeCommand(cmd.Context(), appConfig, args[0], args[1])
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	progressShowCmd.Flags().BoolP("remote", "r", false, "show the cloud copy of the signed-in player.")

	progressCmd.AddCommand(progressShowCmd, progressMergeCmd)

	rootCmd.AddCommand(progressCmd)
}
