package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/castembed/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		// Subcommands report their own errors through the output formatter.
		if !errors.As(err, &exitErr) && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
