package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	akerrors "github.com/systmms/akops/internal/errors"
)

// CheckResult is one row of the doctor report.
type CheckResult struct {
	Name       string
	Status     string // healthy, error, skipped
	Message    string
	Suggestion string
}

func NewDoctorCommand(app *App) *cobra.Command {
	var (
		verbose bool
		path    string
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, credentials and gateway connectivity",
		Long: `Verify that the selected profile can reach Akeyless.

This command checks:
- Configuration file validity
- Credential completeness
- Authentication against the gateway
- Read access by listing items under --path`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.logger().Info("Checking akops profile %s...", app.Config.ProfileName(app.Profile))

			results := runChecks(cmd.Context(), app, path)
			displayCheckResults(cmd.OutOrStdout(), results, verbose)

			healthy := 0
			for _, r := range results {
				if r.Status == "healthy" {
					healthy++
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nSummary: %d/%d checks passed\n", healthy, len(results))
			if healthy < len(results) {
				return fmt.Errorf("some checks failed")
			}

			app.logger().Info("All systems operational!")
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show suggestions for failed checks")
	cmd.Flags().StringVar(&path, "path", "/", "Path to list items under")

	return cmd
}

// runChecks runs each check in order; a failure skips the checks that depend on it.
func runChecks(ctx context.Context, app *App, path string) []CheckResult {
	results := []CheckResult{
		{Name: "config"},
		{Name: "credential"},
		{Name: "authentication"},
		{Name: "list-items"},
	}

	fail := func(i int, err error) []CheckResult {
		results[i].Status = "error"
		results[i].Message = err.Error()
		var userErr akerrors.UserError
		if errors.As(err, &userErr) {
			results[i].Message = fmt.Sprint(userErr.Err)
			results[i].Suggestion = userErr.Suggestion
		}
		var cfgErr akerrors.ConfigError
		if errors.As(err, &cfgErr) {
			results[i].Suggestion = cfgErr.Suggestion
		}
		for j := i + 1; j < len(results); j++ {
			results[j].Status = "skipped"
		}
		return results
	}

	if err := app.load(); err != nil {
		return fail(0, err)
	}
	results[0].Status, results[0].Message = "healthy", "loaded "+app.Config.Path

	cred, err := app.Config.Credential(app.Profile)
	if err == nil {
		err = cred.Validate()
	}
	if err != nil {
		return fail(1, akerrors.VendorError("authentication", err))
	}
	results[1].Status, results[1].Message = "healthy", fmt.Sprintf("%s via %s", cred.AuthMethod, cred.URL())

	broker, err := app.broker(cred)
	if err != nil {
		return fail(2, err)
	}

	ctx, cancel := context.WithTimeout(ctx, app.callTimeout())
	defer cancel()

	token, err := broker.Authenticate(ctx, cred)
	if err != nil {
		return fail(2, akerrors.VendorError("authentication", err))
	}
	results[2].Status, results[2].Message = "healthy", "token issued"

	names, err := broker.ListItems(ctx, token, path)
	if err != nil {
		return fail(3, akerrors.VendorError("list-items", err))
	}
	results[3].Status, results[3].Message = "healthy", fmt.Sprintf("%d items under %s", len(names), path)

	return results
}

// displayCheckResults shows check results in a formatted table
func displayCheckResults(out io.Writer, results []CheckResult, verbose bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "CHECK\tSTATUS\tMESSAGE\n")
	_, _ = fmt.Fprintf(w, "-----\t------\t-------\n")

	for _, r := range results {
		status := r.Status
		switch r.Status {
		case "healthy":
			status = "✓ " + status
		case "error":
			status = "✗ " + status
		default:
			status = "- " + status
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, status, r.Message)
	}
	_ = w.Flush()

	if verbose {
		for _, r := range results {
			if r.Status == "error" && r.Suggestion != "" {
				_, _ = fmt.Fprintf(out, "\n%s suggestion:\n  • %s\n", r.Name, r.Suggestion)
			}
		}
	}
}
