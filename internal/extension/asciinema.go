// Package extension wires the asciinema embed into the site pipeline.
//
// Register validates the setup options and subscribes two handlers: one on
// assets-ready that publishes the player runtime and partials, and one on
// content-classified that installs the embed block into the Markdown
// converter.
package extension

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/roach88/castembed/internal/config"
	"github.com/roach88/castembed/internal/markup"
	"github.com/roach88/castembed/internal/player"
	"github.com/roach88/castembed/internal/publish"
	"github.com/roach88/castembed/internal/site"
)

// Name is the key of the extension in the site configuration.
const Name = "asciinema"

type settings struct {
	runtime   fs.FS
	overwrite bool
	logger    *slog.Logger
}

// Option configures Register.
type Option func(*settings)

// WithPlayerFS publishes runtime files from fsys instead of the packaged ones.
func WithPlayerFS(fsys fs.FS) Option {
	return func(s *settings) { s.runtime = fsys }
}

// WithOverwriteVendor replaces user files at the vendor runtime paths.
func WithOverwriteVendor(overwrite bool) Option {
	return func(s *settings) { s.overwrite = overwrite }
}

// WithLogger sets the logger handed to the registrar and publisher.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// Register installs the extension on p. raw is the extension's setup
// mapping; an unrecognized or invalid key fails before any handler is
// registered.
func Register(p *site.Pipeline, raw map[string]any, opts ...Option) error {
	defaults, err := config.ParseOptions(Name, raw)
	if err != nil {
		return err
	}

	s := &settings{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	logger := s.logger.With("extension", Name)

	p.OnAssetsReady(func(_ context.Context, ev *site.AssetsReady) error {
		ropts := []player.Option{player.WithOverwrite(s.overwrite), player.WithLogger(logger)}
		if s.runtime != nil {
			ropts = append(ropts, player.WithRuntimeFS(s.runtime))
		}
		return player.NewRegistrar(ev.Catalog, ropts...).EnsureRuntimeAssets(ev.UIOutputDir, ev.Env)
	})

	p.OnContentClassified(func(_ context.Context, ev *site.ContentClassified) error {
		builder := markup.NewBuilder(publish.New(ev.Catalog, logger), defaults)
		ev.Render.Extensions = append(ev.Render.Extensions, markup.NewExtension(builder))
		return nil
	})
	return nil
}
