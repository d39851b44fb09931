// Package main is the entry point for the retry CLI.
//
// retry runs a command until it succeeds, sleeping between attempts with a
// fixed delay or exponential backoff. The wrapped command sees its retry
// context through RETRY_* environment variables.
//
// For detailed usage information, run:
//
//	retry --help
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/marshall/retry/cmd/retry/commands"
	"github.com/marshall/retry/cmd/retry/handlers"
)

// Version information set at build time with -ldflags -X.
var (
	version   = "dev"
	commit    = "none"
	date      = "unknown"
	treeState = "clean"
)

func main() {
	commands.SetVersionInfo(version, commit, date, treeState)
	if err := commands.Root().Execute(); err != nil {
		var exitErr *handlers.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
