package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/progress-sync/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize progress for the remembered session",
	Long: `Restores the remembered session and reconciles the local progress cache
with the cloud document. Fails when nobody is signed in.`,
	Args:             cobra.NoArgs,
	PersistentPreRun: initConfig,
	Run: func(cmd *cobra.Command, _ []string) {
		app.ExecuteSyncCommand(cmd.Context(), appConfig)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	rootCmd.AddCommand(syncCmd)
}
