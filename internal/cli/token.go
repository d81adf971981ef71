package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/castembed/internal/ir"
	"github.com/roach88/castembed/internal/publish"
)

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <file>...",
		Short: "Print the recording token of files",
		Long: `Print the token a recording would be published under.

The token is the MD5 of the file's exact bytes, so a file whose content is
pasted verbatim into an asciinema block yields the same name.

Example:
  castembed token demo.cast
  castembed token --format json *.cast`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(rootOpts, args, cmd)
		},
	}
	return cmd
}

// tokenResult is one line of token output.
type tokenResult struct {
	File  string `json:"file"`
	Token string `json:"token"`
	Path  string `json:"path"`
}

func runToken(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	results := make([]tokenResult, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("cannot read %s", file), nil)
			return WrapExitError(ExitCommandError, "cannot read "+file, err)
		}
		token := ir.Token(data)
		results = append(results, tokenResult{File: file, Token: token, Path: publish.LogicalPath(token)})
	}

	if formatter.Format == "json" {
		return formatter.Success(results)
	}
	for _, r := range results {
		fmt.Fprintf(formatter.Writer, "%s  %s  %s\n", r.Token, r.Path, r.File)
	}
	return nil
}
