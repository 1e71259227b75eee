package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/systmms/akops/internal/config"
	"github.com/systmms/akops/internal/logging"
)

// NewRootCommand wires the global flags and every subcommand around app.
func NewRootCommand(app *App, version string) *cobra.Command {
	var (
		configFile     string
		noColor        bool
		debug          bool
		nonInteractive bool
		timeoutMs      int
	)

	if app.Config == nil {
		app.Config = &config.Config{}
	}

	rootCmd := &cobra.Command{
		Use:   "akops",
		Short: "Akeyless operations from the command line",
		Long: `akops authenticates against Akeyless and reads, creates and deletes
secrets and folders, one operation at a time or as a batch.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if app.Config.Logger == nil || cmd.Flags().Changed("debug") || cmd.Flags().Changed("no-color") {
				app.Config.Logger = logging.New(debug, noColor)
			}
			if cmd.Flags().Changed("config") || app.Config.Path == "" {
				app.Config.Path = configFile
				// only the default path may be absent
				app.Config.AllowMissing = !cmd.Flags().Changed("config")
			}
			app.Config.NonInteractive = nonInteractive
			if timeoutMs > 0 {
				app.Timeout = time.Duration(timeoutMs) * time.Millisecond
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "akops.yaml", "Config file path")
	rootCmd.PersistentFlags().StringVarP(&app.Profile, "profile", "p", "", "Profile name (default: default_profile or \"default\")")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Non-interactive mode")
	rootCmd.PersistentFlags().IntVar(&timeoutMs, "timeout", 0, fmt.Sprintf("Per-call timeout in milliseconds (default %d, or the profile's timeout_ms)", config.DefaultTimeoutMs))

	rootCmd.AddCommand(
		NewRunCommand(app),
		NewSecretCommand(app),
		NewItemsCommand(app),
		NewFolderCommand(app),
		NewDescribeCommand(app),
		NewDoctorCommand(app),
		NewLoginCommand(app),
		NewCompletionCommand(),
	)

	return rootCmd
}
