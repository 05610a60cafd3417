package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/progress-sync/internal/config"
	"github.com/oshokin/progress-sync/internal/logger"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "progress-sync",
		Short: "Keep educational game progress in sync between this device and the cloud.",
		Long: `Progress Sync keeps a player's game progress in a local cache and in a cloud
document store, and reconciles the two whenever a session starts.

It supports:
- Guest sessions and email/password accounts
- Restoring the last session on startup
- Merging local and cloud progress without losing scores, badges, or streaks`,
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmdFlags := rootCmd.PersistentFlags()

	rootCmdFlags.StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	rootCmdFlags.StringP(
		"storage",
		"s",
		"",
		"path to the local progress storage file.")

	rootCmdFlags.StringP(
		"log-level",
		"l",
		"",
		"log level: debug, info, warn, error.")

	rootCmdFlags.String(
		"sync-timeout",
		"",
		"maximum duration of one synchronization run, for example: 30s, 2m.")
}

// initConfig loads the configuration, applies flag overrides, and validates the result.
func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	if err = bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
		logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
	}

	logger.SetLevel(appConfig.ParsedLogLevel)
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("storage"); flag != nil && flag.Changed {
		cfg.LocalStoragePath, _ = flags.GetString("storage")
	}

	if flag := flags.Lookup("log-level"); flag != nil && flag.Changed {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if flag := flags.Lookup("sync-timeout"); flag != nil && flag.Changed {
		cfg.SyncTimeout, _ = flags.GetString("sync-timeout")
	}

	return config.ValidateConfig(cfg)
}
