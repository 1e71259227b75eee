package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"

	"github.com/systmms/akops/cmd/akops/commands"
	akerrors "github.com/systmms/akops/internal/errors"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// wipe enclaves on SIGINT/SIGTERM as well as on normal exit
	memguard.CatchInterrupt()

	err := run()
	memguard.Purge()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", akerrors.SimplifyError(err))
		os.Exit(1)
	}
}

func run() error {
	app := &commands.App{}
	rootCmd := commands.NewRootCommand(app, fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date))
	return rootCmd.Execute()
}
