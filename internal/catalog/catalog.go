package catalog

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/castembed/internal/ir"
)

// Outcome is the result of a registration attempt.
type Outcome int

const (
	// OutcomeInserted means the path was absent and the entry was added.
	OutcomeInserted Outcome = iota
	// OutcomeSkipped means the path was occupied and left untouched.
	OutcomeSkipped
	// OutcomeReplaced means the path was occupied and its contents replaced.
	OutcomeReplaced
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeReplaced:
		return "replaced"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Stat is a file stat the host caches for an entry. A cached stat lets the
// writer skip unchanged outputs; it is dropped whenever contents are replaced.
type Stat struct {
	Size    int64
	ModTime time.Time
}

// Entry is one file in the catalog.
type Entry struct {
	// Path is the logical path, unique within Kind.
	Path string

	// Kind is asset or partial.
	Kind ir.Kind

	// Stem names a partial for page layouts (e.g. "asciinema-scripts").
	Stem string

	// Contents yields the bytes. May be lazy.
	Contents Source

	// Out is the output location relative to the site output root.
	// Partials have no output location.
	Out string

	// Token is the content identifier for content-addressed entries.
	Token string

	// Owner names the component that registered the entry ("ui" for user
	// files). Used to tell externally managed files apart from our own.
	Owner string

	// Stat is the host's cached file stat, nil when unknown.
	Stat *Stat
}

func (e Entry) validate() error {
	if e.Path == "" {
		return fmt.Errorf("catalog entry: empty path")
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("catalog entry %s: invalid kind %q", e.Path, e.Kind)
	}
	if e.Contents == nil {
		return fmt.Errorf("catalog entry %s: nil contents", e.Path)
	}
	return nil
}

type key struct {
	kind ir.Kind
	path string
}

// Catalog is the build-scoped file registry. Safe for concurrent use.
type Catalog struct {
	mu      sync.Mutex
	entries map[key]*Entry
	order   []key
	logger  *slog.Logger
}

// New creates an empty catalog. A nil logger means slog.Default().
func New(logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		entries: make(map[key]*Entry),
		logger:  logger,
	}
}

// Exists reports whether an entry with the given kind and path is registered.
func (c *Catalog) Exists(kind ir.Kind, path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key{kind, path}]
	return ok
}

// Lookup returns a copy of the entry registered under kind and path.
func (c *Catalog) Lookup(kind ir.Kind, path string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key{kind, path}]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// FindByKind returns copies of all entries of a kind in registration order.
func (c *Catalog) FindByKind(kind ir.Kind) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Entry
	for _, k := range c.order {
		if k.kind == kind {
			out = append(out, *c.entries[k])
		}
	}
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Claim inserts e if its path is free and reports whether it did. An occupied
// path is left untouched without a diagnostic; callers use this for
// content-addressed entries where an occupant is by definition identical.
func (c *Catalog) Claim(e Entry) (bool, error) {
	if err := e.validate(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key{e.Kind, e.Path}
	if _, ok := c.entries[k]; ok {
		return false, nil
	}
	c.insertLocked(k, e)
	return true, nil
}

// Register adds e to the catalog.
//
// If the path is free the entry is inserted. If it is occupied and overwrite
// is false, the catalog is not mutated and an informational diagnostic is
// logged. If it is occupied and overwrite is true, a warning naming the path
// is logged, the occupant's contents are replaced, and its cached stat is
// dropped so the writer cannot mistake it for unchanged.
func (c *Catalog) Register(e Entry, overwrite bool) (Outcome, error) {
	if err := e.validate(); err != nil {
		return OutcomeSkipped, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key{e.Kind, e.Path}
	existing, ok := c.entries[k]
	if !ok {
		c.insertLocked(k, e)
		return OutcomeInserted, nil
	}
	if !overwrite {
		c.logger.Info("file already exists in the site catalog, skipping",
			"path", e.Path,
			"kind", string(e.Kind),
			"owner", existing.Owner,
		)
		return OutcomeSkipped, nil
	}

	c.logger.Warn("replacing catalog file; remove it from your UI since it is managed by the build",
		"path", e.Path,
		"managed_by", e.Owner,
		"kind", string(e.Kind),
		"previous_owner", existing.Owner,
	)
	existing.Contents = e.Contents
	existing.Stat = nil
	existing.Owner = e.Owner
	existing.Token = e.Token
	if e.Out != "" {
		existing.Out = e.Out
	}
	return OutcomeReplaced, nil
}

// SetStat records the host's cached stat for an entry. Returns false if the
// entry does not exist.
func (c *Catalog) SetStat(kind ir.Kind, path string, st Stat) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key{kind, path}]
	if !ok {
		return false
	}
	e.Stat = &st
	return true
}

func (c *Catalog) insertLocked(k key, e Entry) {
	stored := e
	c.entries[k] = &stored
	c.order = append(c.order, k)
}
