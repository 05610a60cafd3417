package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/progress-sync/internal/app"
)

var (
	//nolint:gochecknoglobals // Cobra command requires a global definition.
	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Session management commands",
		Long: `Manage the player's session.

Every successful sign-in synchronizes the local progress with the cloud.
The session is remembered in the configuration file and restored by later commands.`,
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	authGuestCmd = &cobra.Command{
		Use:              "guest",
		Short:            "Sign in as a new guest",
		Long:             `Creates an anonymous account, signs in with it, and synchronizes progress.`,
		Args:             cobra.NoArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			app.ExecuteAuthGuestCommand(cmd.Context(), appConfig)
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	authLoginCmd = &cobra.Command{
		Use:              "login --email EMAIL --password PASSWORD",
		Short:            "Sign in with an email account",
		Args:             cobra.NoArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			email, password := credentialsFromFlags(cmd)
			app.ExecuteAuthLoginCommand(cmd.Context(), appConfig, email, password)
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	authRegisterCmd = &cobra.Command{
		Use:              "register --email EMAIL --password PASSWORD",
		Short:            "Create an email account and sign in with it",
		Args:             cobra.NoArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			email, password := credentialsFromFlags(cmd)
			app.ExecuteAuthRegisterCommand(cmd.Context(), appConfig, email, password)
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	authLogoutCmd = &cobra.Command{
		Use:              "logout",
		Short:            "Sign out and forget the remembered session",
		Long:             `Signs out. The local progress cache is kept.`,
		Args:             cobra.NoArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			app.ExecuteAuthLogoutCommand(cmd.Context(), appConfig)
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	authStatusCmd = &cobra.Command{
		Use:              "status",
		Short:            "Restore the remembered session and show who is signed in",
		Args:             cobra.NoArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			app.ExecuteAuthStatusCommand(cmd.Context(), appConfig)
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	for _, credentialsCmd := range []*cobra.Command{authLoginCmd, authRegisterCmd} {
		credentialsCmd.Flags().StringP("email", "e", "", "account email.")
		credentialsCmd.Flags().StringP("password", "p", "", "account password.")
		_ = credentialsCmd.MarkFlagRequired("email")
		_ = credentialsCmd.MarkFlagRequired("password")
	}

	authCmd.AddCommand(authGuestCmd, authLoginCmd, authRegisterCmd, authLogoutCmd, authStatusCmd)

	rootCmd.AddCommand(authCmd)
}

func credentialsFromFlags(cmd *cobra.Command) (string, string) {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	return email, password
}
