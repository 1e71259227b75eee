package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	akerrors "github.com/systmms/akops/internal/errors"
	"github.com/systmms/akops/internal/pipeline"
)

func NewRunCommand(app *App) *cobra.Command {
	var (
		continueOnFail bool
		metricsFile    string
	)

	cmd := &cobra.Command{
		Use:   "run <batch-file|->",
		Short: "Run a batch of Akeyless operations",
		Long: `Run every record of a YAML or JSON batch document, in order.

Each record is authenticated and dispatched on its own. Results are written
to stdout as one JSON object per line:

  {"item":0,"json":{...Akeyless response...}}
  {"item":1,"json":{"error":"..."}}

Without --continue-on-fail the first failing record stops the run.

Example document:
  - operation: getStaticSecret
    secretName: /prod/db/password
  - operation: createFolder
    folderName: /prod/new-team
    additionalFields:
      timeout: 5000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(cmd, args[0])
			if err != nil {
				return err
			}
			if len(records) == 0 {
				app.logger().Warn("Batch document has no records")
				return nil
			}

			var metrics *pipeline.Metrics
			if metricsFile != "" {
				metrics = pipeline.NewMetrics()
			}

			runner, done, err := app.runner(continueOnFail, metrics)
			if err != nil {
				return err
			}
			defer done()

			results, runErr := runner.Run(cmd.Context(), records)

			enc := json.NewEncoder(cmd.OutOrStdout())
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
				}
				if err := enc.Encode(r); err != nil {
					return fmt.Errorf("failed to write result: %w", err)
				}
			}

			if metrics != nil {
				if err := metrics.WriteTextfile(metricsFile); err != nil {
					app.logger().Warn("Failed to write metrics to %s: %v", metricsFile, err)
				}
			}

			if runErr != nil {
				var recErr *pipeline.RecordError
				if errors.As(runErr, &recErr) {
					return akerrors.VendorError(recErr.Operation, runErr)
				}
				return runErr
			}

			app.logger().Info("Processed %d records (%d failed)", len(results), failed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&continueOnFail, "continue-on-fail", false, "Record failures as results and keep going")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")

	return cmd
}

func readRecords(cmd *cobra.Command, path string) ([]pipeline.Record, error) {
	if path != "-" {
		return pipeline.LoadRecordsFile(path)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read batch document from stdin: %w", err)
	}
	return pipeline.LoadRecords(data)
}
