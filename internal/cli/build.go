package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/castembed/internal/config"
	"github.com/roach88/castembed/internal/extension"
	"github.com/roach88/castembed/internal/site"
	"github.com/roach88/castembed/internal/store"
)

// DefaultSiteConfig is the site configuration read when none is given.
const DefaultSiteConfig = "site.yaml"

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Manifest        string
	PlayerDir       string
	OverwriteVendor bool

	// NewBuildID allows overriding build ID generation (for testing).
	NewBuildID func() string
}

// extensionFunc installs a named extension on a pipeline.
type extensionFunc func(p *site.Pipeline, raw map[string]any, opts *BuildOptions, logger *slog.Logger) error

// extensions are the extensions a site configuration may enable.
var extensions = map[string]extensionFunc{
	extension.Name: func(p *site.Pipeline, raw map[string]any, opts *BuildOptions, logger *slog.Logger) error {
		eopts := []extension.Option{
			extension.WithLogger(logger),
			extension.WithOverwriteVendor(opts.OverwriteVendor),
		}
		if opts.PlayerDir != "" {
			eopts = append(eopts, extension.WithPlayerFS(os.DirFS(opts.PlayerDir)))
		}
		return extension.Register(p, raw, eopts...)
	},
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build [site.yaml]",
		Short: "Build the site",
		Long: `Build the site described by a YAML configuration file.

Markdown documents under content_dir are rendered into output_dir. Fenced
blocks named asciinema are published as recordings under _casts/ and embedded
with the player, whose runtime is copied to <ui_output_dir>/js/vendor and
<ui_output_dir>/css/vendor unless the UI directory already provides it.

Example:
  castembed build
  castembed build docs/site.yaml --manifest build.db
  castembed build --player-dir ./asciinema-player-3.8.0 --overwrite-vendor`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := DefaultSiteConfig
			if len(args) == 1 {
				path = args[0]
			}
			return runBuild(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "record the build in this SQLite database")
	cmd.Flags().StringVar(&opts.PlayerDir, "player-dir", "", "directory holding asciinema-player.min.js and asciinema-player.css")
	cmd.Flags().BoolVar(&opts.OverwriteVendor, "overwrite-vendor", false, "replace player runtime files provided by the UI directory")

	return cmd
}

// buildSummary is the build command's result.
type buildSummary struct {
	BuildID    string        `json:"build_id"`
	OutputDir  string        `json:"output_dir"`
	Pages      []site.Output `json:"pages"`
	Assets     []site.Output `json:"assets"`
	Recordings int           `json:"recordings"`
	Manifest   string        `json:"manifest,omitempty"`
}

func runBuild(opts *BuildOptions, configPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := config.LoadSite(configPath)
	if err != nil {
		return failBuild(formatter, ExitCommandError, ErrCodeConfig, "failed to load site config", err)
	}

	pipeline := site.New(cfg, logger)
	if opts.NewBuildID != nil {
		pipeline.NewBuildID = opts.NewBuildID
	}
	if err := registerExtensions(pipeline, cfg.Extensions, opts, logger); err != nil {
		return failBuild(formatter, ExitCommandError, ErrCodeConfig, "invalid extension configuration", err)
	}
	formatter.VerboseLog("Building %s into %s", cfg.ContentDir, cfg.OutputDir)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := pipeline.Build(ctx)
	if err != nil {
		return failBuild(formatter, ExitFailure, ErrCodeBuildFailed, "build failed", err)
	}

	summary := buildSummary{
		BuildID:   result.BuildID,
		OutputDir: result.OutputDir,
		Pages:     result.Pages,
		Assets:    result.Assets,
	}
	for _, a := range result.Assets {
		if a.Token != "" {
			summary.Recordings++
		}
	}

	if opts.Manifest != "" {
		if err := recordBuild(ctx, opts.Manifest, result); err != nil {
			return failBuild(formatter, ExitCommandError, ErrCodeStore, "failed to record build", err)
		}
		summary.Manifest = opts.Manifest
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	w := formatter.Writer
	fmt.Fprintf(w, "✓ Built %d page(s), %d asset(s), %d recording(s) into %s\n",
		len(summary.Pages), len(summary.Assets), summary.Recordings, summary.OutputDir)
	fmt.Fprintf(w, "  build: %s\n", summary.BuildID)
	if summary.Manifest != "" {
		fmt.Fprintf(w, "  manifest: %s\n", summary.Manifest)
	}
	return nil
}

// registerExtensions installs the configured extensions in name order.
func registerExtensions(p *site.Pipeline, configured map[string]map[string]any, opts *BuildOptions, logger *slog.Logger) error {
	names := make([]string, 0, len(configured))
	for name := range configured {
		names = append(names, name)
	}
	slices.Sort(names)

	var unknown []string
	for _, name := range names {
		if _, ok := extensions[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown extension(s): %s", strings.Join(unknown, ", "))
	}

	for _, name := range names {
		if err := extensions[name](p, configured[name], opts, logger); err != nil {
			return err
		}
	}
	return nil
}

func recordBuild(ctx context.Context, path string, result *site.Result) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	var outputs []store.Output
	for _, o := range append(slices.Clone(result.Pages), result.Assets...) {
		outputs = append(outputs, store.Output{Path: o.Path, Kind: o.Kind, Token: o.Token, Size: o.Size})
	}
	_, err = st.RecordBuild(ctx, store.Build{
		ID:        result.BuildID,
		OutputDir: result.OutputDir,
		Env:       result.Env,
		PageCount: len(result.Pages),
	}, outputs)
	return err
}

// failBuild reports err through the formatter and returns an ExitError.
func failBuild(formatter *OutputFormatter, exitCode int, code, message string, err error) error {
	var details any
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		details = map[string]any{"component": cfgErr.Component, "keys": cfgErr.Keys}
	}
	_ = formatter.Error(code, fmt.Sprintf("%s: %v", message, err), details)
	return WrapExitError(exitCode, message, err)
}
