package player

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"text/template"

	"github.com/roach88/castembed/internal/catalog"
	"github.com/roach88/castembed/internal/ir"
)

//go:embed data
var packaged embed.FS

const (
	// ProviderEnv is the build-wide variable page layouts read to decide
	// whether to include the player partials.
	ProviderEnv = "SITE_ASCIINEMA_PROVIDER"

	// Provider is the value ProviderEnv is set to.
	Provider = "asciinema"

	// Owner marks catalog entries registered by this package.
	Owner = "asciinema"
)

// RuntimeFile is one packaged runtime file.
type RuntimeFile struct {
	Dir      string // asset kind directory: "js" or "css"
	Basename string
}

// LogicalPath returns <dir>/vendor/<basename>.
func (f RuntimeFile) LogicalPath() string {
	return path.Join(f.Dir, "vendor", f.Basename)
}

// Partial is one packaged partial template.
type Partial struct {
	Stem string
}

// LogicalPath returns partials/<stem>.tmpl.
func (p Partial) LogicalPath() string {
	return path.Join("partials", p.Stem+".tmpl")
}

var (
	// Script is the player runtime script.
	Script = RuntimeFile{Dir: "js", Basename: "asciinema-player.min.js"}

	// Style is the player stylesheet.
	Style = RuntimeFile{Dir: "css", Basename: "asciinema-player.css"}

	// ScriptsPartial includes the runtime script in a page.
	ScriptsPartial = Partial{Stem: "asciinema-scripts"}

	// StylesPartial includes the stylesheet in a page.
	StylesPartial = Partial{Stem: "asciinema-styles"}
)

// ResolveError reports a runtime file that could not be read. It is fatal:
// a site cannot be published with a missing player.
type ResolveError struct {
	Name string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve player runtime file %s: %v", e.Name, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Registrar registers the player runtime with a catalog. A Registrar serves
// one build and is not safe for concurrent use.
type Registrar struct {
	catalog   *catalog.Catalog
	runtime   fs.FS
	partials  fs.FS
	overwrite bool
	logger    *slog.Logger

	// skipped holds externally managed vendor paths already reported.
	skipped map[string]bool
}

// Option configures a Registrar.
type Option func(*Registrar)

// WithRuntimeFS replaces the packaged runtime files. fsys must contain
// asciinema-player.min.js and asciinema-player.css at its root.
func WithRuntimeFS(fsys fs.FS) Option {
	return func(r *Registrar) { r.runtime = flatRuntime{fsys} }
}

// WithOverwrite replaces externally managed files at the vendor paths
// instead of skipping them.
func WithOverwrite(overwrite bool) Option {
	return func(r *Registrar) { r.overwrite = overwrite }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registrar) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistrar creates a registrar writing to c.
func NewRegistrar(c *catalog.Catalog, opts ...Option) *Registrar {
	data, _ := fs.Sub(packaged, "data")
	r := &Registrar{
		catalog:  c,
		runtime:  data,
		partials: data,
		logger:   slog.Default(),
		skipped:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureRuntimeAssets registers the vendor runtime files under uiOutputDir,
// the two player partials, and sets the provider flag in env.
func (r *Registrar) EnsureRuntimeAssets(uiOutputDir string, env map[string]string) error {
	if env == nil {
		return fmt.Errorf("ensure runtime assets: nil environment")
	}
	env[ProviderEnv] = Provider

	for _, f := range []RuntimeFile{Style, Script} {
		if err := r.ensureRuntimeFile(uiOutputDir, f); err != nil {
			return err
		}
	}
	for _, p := range []Partial{ScriptsPartial, StylesPartial} {
		if err := r.ensurePartial(p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registrar) ensureRuntimeFile(uiOutputDir string, f RuntimeFile) error {
	logical := f.LogicalPath()
	existing, ok := r.catalog.Lookup(ir.KindAsset, logical)
	if ok && (existing.Owner == Owner || r.skipped[logical]) {
		return nil
	}

	name := path.Join(f.Dir, f.Basename)
	if !ok || r.overwrite {
		if _, err := fs.Stat(r.runtime, name); err != nil {
			return &ResolveError{Name: name, Err: err}
		}
	}
	outcome, err := r.catalog.Register(catalog.Entry{
		Path:     logical,
		Kind:     ir.KindAsset,
		Contents: catalog.FSFile(r.runtime, name),
		Out:      path.Join(uiOutputDir, logical),
		Owner:    Owner,
	}, r.overwrite)
	if err != nil {
		return fmt.Errorf("register %s: %w", logical, err)
	}
	if outcome == catalog.OutcomeSkipped {
		r.skipped[logical] = true
		return nil
	}
	r.logger.Debug("player runtime file registered", "path", logical, "outcome", outcome.String())
	return nil
}

func (r *Registrar) ensurePartial(p Partial) error {
	logical := p.LogicalPath()
	if r.catalog.Exists(ir.KindPartial, logical) {
		return nil
	}

	src, err := fs.ReadFile(r.partials, logical)
	if err != nil {
		return &ResolveError{Name: logical, Err: err}
	}
	// Page layouts use {{ }}; the registrar's own placeholders use [[ ]].
	tmpl, err := template.New(p.Stem).Delims("[[", "]]").Parse(string(src))
	if err != nil {
		return fmt.Errorf("parse partial %s: %w", logical, err)
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		ScriptPath string
		StylePath  string
	}{
		ScriptPath: Script.LogicalPath(),
		StylePath:  Style.LogicalPath(),
	})
	if err != nil {
		return fmt.Errorf("render partial %s: %w", logical, err)
	}

	_, err = r.catalog.Register(catalog.Entry{
		Path:     logical,
		Kind:     ir.KindPartial,
		Stem:     p.Stem,
		Contents: catalog.Bytes(buf.Bytes()),
		Owner:    Owner,
	}, false)
	if err != nil {
		return fmt.Errorf("register %s: %w", logical, err)
	}
	r.logger.Debug("player partial registered", "path", logical)
	return nil
}

// flatRuntime maps <dir>/<basename> onto a directory holding the runtime
// files side by side, the layout of an asciinema-player release.
type flatRuntime struct {
	fsys fs.FS
}

func (f flatRuntime) Open(name string) (fs.File, error) {
	return f.fsys.Open(path.Base(name))
}
