package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/akops/internal/akeyless"
)

func NewSecretCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Read and create secrets",
		Long: `Read static, rotated and dynamic secrets, or create a new static secret.

The Akeyless response is printed as JSON, unmodified.`,
	}

	cmd.AddCommand(
		newGetStaticCommand(app),
		newGetRotatedCommand(app),
		newGetDynamicCommand(app),
		newCreateSecretCommand(app),
	)
	return cmd
}

func newGetStaticCommand(app *App) *cobra.Command {
	var params akeyless.Parameters

	cmd := &cobra.Command{
		Use:   "get-static <name>",
		Short: "Get the value of a static secret",
		Example: `  akops secret get-static /prod/db/password
  akops secret get-static /me/notes --accessibility personal --ignore-cache`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params.SecretName = args[0]
			return dispatchAndPrint(cmd, app, akeyless.KindGetStaticSecret, params)
		},
	}

	cmd.Flags().StringVar(&params.Accessibility, "accessibility", "", "regular or personal (default regular)")
	cmd.Flags().BoolVar(&params.IgnoreCache, "ignore-cache", false, "Bypass the gateway cache")
	return cmd
}

func newGetRotatedCommand(app *App) *cobra.Command {
	var params akeyless.Parameters

	cmd := &cobra.Command{
		Use:   "get-rotated <name>",
		Short: "Get the current value of a rotated secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params.SecretName = args[0]
			return dispatchAndPrint(cmd, app, akeyless.KindGetRotatedSecret, params)
		},
	}

	cmd.Flags().BoolVar(&params.IgnoreCache, "ignore-cache", false, "Bypass the gateway cache")
	return cmd
}

func newGetDynamicCommand(app *App) *cobra.Command {
	var params akeyless.Parameters

	cmd := &cobra.Command{
		Use:   "get-dynamic <name>",
		Short: "Generate credentials from a dynamic secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params.SecretName = args[0]
			return dispatchAndPrint(cmd, app, akeyless.KindGetDynamicSecret, params)
		},
	}

	cmd.Flags().IntVar(&params.Timeout, "producer-timeout", akeyless.DefaultDynamicSecretTimeout, "Seconds the producer may take to issue credentials")
	return cmd
}

func newCreateSecretCommand(app *App) *cobra.Command {
	var (
		params     akeyless.Parameters
		valueStdin bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a static secret",
		Example: `  akops secret create /prod/api-key --value abc123
  echo -n "$KEY" | akops secret create /prod/api-key --value-stdin
  akops secret create /prod/login --type password --username admin --password hunter2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params.SecretName = args[0]
			if valueStdin {
				v, err := readSecretLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				if params.SecretType == akeyless.SecretTypePassword {
					params.Password = v
				} else {
					params.SecretValue = v
				}
			}
			return dispatchAndPrint(cmd, app, akeyless.KindCreateSecret, params)
		},
	}

	cmd.Flags().StringVar(&params.SecretValue, "value", "", "Secret value (generic secrets)")
	cmd.Flags().BoolVar(&valueStdin, "value-stdin", false, "Read the value (or password) from stdin")
	cmd.Flags().StringVar(&params.SecretType, "type", akeyless.SecretTypeGeneric, "generic or password")
	cmd.Flags().StringVar(&params.Format, "format", "", "text or json")
	cmd.Flags().StringVar(&params.Accessibility, "accessibility", "", "regular or personal (default regular)")
	cmd.Flags().StringVar(&params.Username, "username", "", "Username (password secrets)")
	cmd.Flags().StringVar(&params.Password, "password", "", "Password (password secrets)")
	cmd.Flags().BoolVar(&params.SecureAccessWebBrowsing, "secure-access-web-browsing", false, "Enable secure remote web browsing")
	cmd.Flags().BoolVar(&params.SecureAccessWebProxy, "secure-access-web-proxy", false, "Enable the secure web proxy")
	return cmd
}

func dispatchAndPrint(cmd *cobra.Command, app *App, kind akeyless.Kind, params akeyless.Parameters) error {
	payload, err := app.dispatchOne(cmd.Context(), kind, params)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), payload)
}

// readSecretLine reads one line, dropping the trailing newline.
func readSecretLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
