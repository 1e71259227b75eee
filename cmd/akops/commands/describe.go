package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	akerrors "github.com/systmms/akops/internal/errors"
)

func NewDescribeCommand(app *App) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "describe <name>",
		Short: "Show item metadata without reading its value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withToken(cmd.Context(), func(ctx context.Context, broker Broker, token string) error {
				info, err := broker.DescribeItem(ctx, token, args[0])
				if err != nil {
					return akerrors.VendorError("describe-item", err)
				}

				if jsonOutput {
					data, err := json.Marshal(info)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), data)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "NAME\t%s\n", info.Name)
				fmt.Fprintf(w, "TYPE\t%s\n", info.Type)
				fmt.Fprintf(w, "VERSION\t%d\n", info.Version)
				if !info.LastModified.IsZero() {
					fmt.Fprintf(w, "MODIFIED\t%s\n", info.LastModified.Format("2006-01-02 15:04:05"))
				}
				if len(info.Tags) > 0 {
					fmt.Fprintf(w, "TAGS\t%s\n", strings.Join(info.Tags, ", "))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
