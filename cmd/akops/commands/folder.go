package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/akops/internal/akeyless"
)

func NewFolderCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Create or delete folders",
	}

	cmd.AddCommand(
		newFolderCommand(app, "create", "Create a folder", akeyless.KindCreateFolder),
		newFolderCommand(app, "delete", "Delete a folder", akeyless.KindDeleteFolder),
	)
	return cmd
}

func newFolderCommand(app *App, use, short string, kind akeyless.Kind) *cobra.Command {
	var accessibility string

	cmd := &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchAndPrint(cmd, app, kind, akeyless.Parameters{
				FolderName:          args[0],
				FolderAccessibility: accessibility,
			})
		},
	}

	cmd.Flags().StringVar(&accessibility, "accessibility", "", "regular or personal (default regular)")
	return cmd
}
