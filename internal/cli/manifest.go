package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/castembed/internal/store"
)

// ManifestOptions holds flags for the manifest command.
type ManifestOptions struct {
	*RootOptions
	Database   string
	Build      string
	Recordings bool
}

// NewManifestCommand creates the manifest command.
func NewManifestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ManifestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Show recorded builds",
		Long: `Show builds recorded with build --manifest.

Without flags, lists every build in order. With --build, lists the files the
build wrote. With --recordings, lists every recording token ever published and
the build that first published it.

Example:
  castembed manifest --db build.db
  castembed manifest --db build.db --build 0190f2c4-...
  castembed manifest --db build.db --recordings --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Build, "build", "", "list the outputs of this build")
	cmd.Flags().BoolVar(&opts.Recordings, "recordings", false, "list published recordings")
	_ = cmd.MarkFlagRequired("db")
	cmd.MarkFlagsMutuallyExclusive("build", "recordings")

	return cmd
}

func runManifest(opts *ManifestOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Open would create a missing database; a typo should not.
	if _, err := os.Stat(opts.Database); err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	w := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	switch {
	case opts.Build != "":
		if _, err := st.GetBuild(ctx, opts.Build); err != nil {
			code := ErrCodeStore
			if errors.Is(err, store.ErrBuildNotFound) {
				code = ErrCodeNotFound
			}
			_ = formatter.Error(code, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read build", err)
		}
		outputs, err := st.ListOutputs(ctx, opts.Build)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read outputs", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(outputs)
		}
		fmt.Fprintln(w, "PATH\tKIND\tSIZE\tTOKEN")
		for _, o := range outputs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", o.Path, o.Kind, o.Size, o.Token)
		}

	case opts.Recordings:
		recordings, err := st.Recordings(ctx)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read recordings", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(recordings)
		}
		fmt.Fprintln(w, "TOKEN\tSIZE\tFIRST BUILD")
		for _, r := range recordings {
			fmt.Fprintf(w, "%s\t%d\t%s\n", r.Token, r.Size, r.FirstBuildID)
		}

	default:
		builds, err := st.ListBuilds(ctx)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read builds", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(builds)
		}
		fmt.Fprintln(w, "SEQ\tBUILD\tPAGES\tOUTPUT")
		for _, b := range builds {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", b.Seq, b.ID, b.PageCount, b.OutputDir)
		}
	}
	return w.Flush()
}
