package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/akops/internal/akeyless"
	"github.com/systmms/akops/internal/config"
	akerrors "github.com/systmms/akops/internal/errors"
)

func NewLoginCommand(app *App) *cobra.Command {
	var (
		method   string
		noVerify bool
		logout   bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access key or token in the OS keyring",
		Long: `Store the secret half of a profile's credential in the OS keyring.

The secret is read from stdin, so it never appears in shell history. The
access ID stays in akops.yaml (or AKEYLESS_ACCESS_ID). Unless --no-verify is
set, the stored credential is checked by authenticating once.

Examples:
  akops login --profile prod                 # prompts for the access key
  printf %s "$KEY" | akops login --non-interactive
  akops login --method token --profile ci
  akops login --logout --profile prod`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.load(); err != nil {
				return err
			}
			profile := app.Config.ProfileName(app.Profile)

			kr := app.Config.Keyring
			if kr == nil {
				kr = config.SystemKeyring()
			}

			if logout {
				for _, field := range []string{config.FieldAccessKey, config.FieldToken} {
					if err := config.DeleteSecret(kr, profile, field); err != nil {
						return err
					}
				}
				app.logger().Info("Removed stored credentials for profile %s", profile)
				return nil
			}

			authMethod, err := akeyless.ParseAuthMethod(method)
			if err != nil {
				return akerrors.VendorError("login", err)
			}
			field := config.FieldAccessKey
			if authMethod == akeyless.AuthMethodToken {
				field = config.FieldToken
			}

			if !app.Config.NonInteractive {
				fmt.Fprintf(cmd.ErrOrStderr(), "Enter %s for profile %s: ", strings.ReplaceAll(field, "_", " "), profile)
			}
			secret, err := readSecretLine(cmd.InOrStdin())
			if err != nil {
				return err
			}
			secret = strings.TrimSpace(secret)
			if secret == "" {
				return akerrors.UserError{
					Message:    "No secret provided",
					Suggestion: "Pipe the access key or token on stdin",
				}
			}

			if err := config.StoreSecret(kr, profile, field, secret); err != nil {
				return akerrors.UserError{
					Message:    "Failed to store the credential",
					Details:    err.Error(),
					Suggestion: "Check that a keyring service is available (Keychain, Secret Service or Credential Manager)",
					Err:        err,
				}
			}
			app.logger().Info("Stored %s for profile %s", field, profile)

			if noVerify {
				return nil
			}
			return app.withToken(cmd.Context(), func(context.Context, Broker, string) error {
				app.logger().Info("Authenticated successfully")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&method, "method", "access_key", "access_key or token")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Store without authenticating")
	cmd.Flags().BoolVar(&logout, "logout", false, "Remove stored credentials for the profile")

	return cmd
}
