package site

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/roach88/castembed/internal/catalog"
	"github.com/roach88/castembed/internal/config"
	"github.com/roach88/castembed/internal/ir"
)

// Pipeline runs site builds for one configuration.
type Pipeline struct {
	site   *config.Site
	logger *slog.Logger

	assetsReady       []AssetsReadyFunc
	contentClassified []ContentClassifiedFunc

	// NewBuildID allows overriding build ID generation (for testing).
	// Defaults to UUIDv7.
	NewBuildID func() string
}

// New creates a pipeline. A nil logger means slog.Default().
func New(site *config.Site, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		site:   site,
		logger: logger,
		NewBuildID: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
	}
}

// Result summarizes a finished build.
type Result struct {
	BuildID   string            `json:"build_id"`
	OutputDir string            `json:"output_dir"`
	Env       map[string]string `json:"env"`
	Pages     []Output          `json:"pages"`
	Assets    []Output          `json:"assets"`

	// Catalog is the build's final catalog.
	Catalog *catalog.Catalog `json:"-"`
}

// Build runs one site build.
func (p *Pipeline) Build(ctx context.Context) (*Result, error) {
	buildID := p.NewBuildID()
	logger := p.logger.With("build", buildID)
	cat := catalog.New(logger)
	env := maps.Clone(p.site.Env)
	if env == nil {
		env = map[string]string{}
	}

	layoutSrc := defaultLayout
	if p.site.UIDir != "" {
		override, err := loadUI(p.site.UIDir, p.site.UIOutputDir, cat)
		if err != nil {
			return nil, err
		}
		if override != "" {
			layoutSrc = override
		}
	}

	assets := &AssetsReady{
		OutputDir:   p.site.OutputDir,
		UIOutputDir: p.site.UIOutputDir,
		Env:         env,
		Catalog:     cat,
	}
	for _, fn := range p.assetsReady {
		if err := fn(ctx, assets); err != nil {
			return nil, fmt.Errorf("assets-ready: %w", err)
		}
	}

	docs, err := loadDocuments(p.site.ContentDir)
	if err != nil {
		return nil, err
	}
	logger.Info("documents loaded", "count", len(docs), "dir", p.site.ContentDir)

	render := &RenderConfig{}
	classified := &ContentClassified{Render: render, Catalog: cat, Documents: docs}
	for _, fn := range p.contentClassified {
		if err := fn(ctx, classified); err != nil {
			return nil, fmt.Errorf("content-classified: %w", err)
		}
	}

	bodies, err := p.convertAll(ctx, newMarkdown(render), docs)
	if err != nil {
		return nil, err
	}

	lay, err := newLayout(layoutSrc, cat)
	if err != nil {
		return nil, err
	}

	result := &Result{
		BuildID:   buildID,
		OutputDir: p.site.OutputDir,
		Env:       env,
		Catalog:   cat,
	}
	for i, doc := range docs {
		rootPath := doc.RootPath()
		html, err := lay.render(Page{
			Title:      doc.Title,
			SiteTitle:  p.site.Title,
			Body:       templateHTML(bodies[i]),
			Env:        env,
			RootPath:   rootPath,
			UIRootPath: path.Join(rootPath, p.site.UIOutputDir),
		})
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", doc.Path, err)
		}
		if err := writeFile(p.site.OutputDir, doc.OutPath(), html); err != nil {
			return nil, fmt.Errorf("write %s: %w", doc.OutPath(), err)
		}
		result.Pages = append(result.Pages, Output{Path: doc.OutPath(), Kind: KindPage, Size: int64(len(html))})
	}

	for _, e := range cat.FindByKind(ir.KindAsset) {
		out, err := writeEntry(p.site.OutputDir, e)
		if err != nil {
			return nil, err
		}
		result.Assets = append(result.Assets, out)
	}

	logger.Info("site written",
		"pages", len(result.Pages),
		"assets", len(result.Assets),
		"output", p.site.OutputDir,
	)
	return result, nil
}

// convertAll converts documents with at most site.Workers goroutines.
// Results are indexed like docs; the first error wins.
func (p *Pipeline) convertAll(ctx context.Context, md goldmark.Markdown, docs []*Document) ([][]byte, error) {
	bodies := make([][]byte, len(docs))
	sem := make(chan struct{}, max(p.site.Workers, 1))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}
		i, doc := i, doc
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			body, err := convert(md, doc)
			mu.Lock()
			defer mu.Unlock()
			if err != nil && firstErr == nil {
				firstErr = err
			}
			bodies[i] = body
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return bodies, nil
}

// loadDocuments reads every .md file under dir, sorted by path.
func loadDocuments(dir string) ([]*Document, error) {
	var docs []*Document
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		doc, err := ParseDocument(filepath.ToSlash(rel), data)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}
