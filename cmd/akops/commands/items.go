package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/akops/internal/akeyless"
	akerrors "github.com/systmms/akops/internal/errors"
)

func NewItemsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List or delete items",
	}

	cmd.AddCommand(newItemsListCommand(app), newItemsDeleteCommand(app))
	return cmd
}

func newItemsListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list [path]",
		Short: "List item names under a path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}

			return app.withToken(cmd.Context(), func(ctx context.Context, broker Broker, token string) error {
				names, err := broker.ListItems(ctx, token, path)
				if err != nil {
					return akerrors.VendorError("list-items", err)
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				if len(names) == 0 {
					app.logger().Info("No items under %s", path)
				}
				return nil
			})
		},
	}
}

func newItemsDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete all items under a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchAndPrint(cmd, app, akeyless.KindDeleteItems, akeyless.Parameters{Path: args[0]})
		},
	}
}
