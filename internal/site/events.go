package site

import (
	"context"

	"github.com/yuin/goldmark"

	"github.com/roach88/castembed/internal/catalog"
)

// AssetsReady is delivered once per build after user UI files are loaded.
type AssetsReady struct {
	// OutputDir is the site output root.
	OutputDir string

	// UIOutputDir is the UI asset folder relative to OutputDir.
	UIOutputDir string

	// Env is the build-wide environment; handlers may set variables.
	Env map[string]string

	Catalog *catalog.Catalog
}

// RenderConfig is the document-render configuration extensions append to.
type RenderConfig struct {
	Extensions []goldmark.Extender
}

// ContentClassified is delivered once per build after documents are loaded.
type ContentClassified struct {
	Render    *RenderConfig
	Catalog   *catalog.Catalog
	Documents []*Document
}

// AssetsReadyFunc handles the assets-ready event.
type AssetsReadyFunc func(ctx context.Context, ev *AssetsReady) error

// ContentClassifiedFunc handles the content-classified event.
type ContentClassifiedFunc func(ctx context.Context, ev *ContentClassified) error

// OnAssetsReady registers fn for the assets-ready event.
func (p *Pipeline) OnAssetsReady(fn AssetsReadyFunc) {
	p.assetsReady = append(p.assetsReady, fn)
}

// OnContentClassified registers fn for the content-classified event.
func (p *Pipeline) OnContentClassified(fn ContentClassifiedFunc) {
	p.contentClassified = append(p.contentClassified, fn)
}

// HandlerCount returns the number of registered event handlers.
func (p *Pipeline) HandlerCount() int {
	return len(p.assetsReady) + len(p.contentClassified)
}
