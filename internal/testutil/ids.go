// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"sync"
)

// BuildIDs hands out deterministic build IDs: build-0001, build-0002, ...
//
// Pipelines take a func() string for build IDs; pass ids.Next to make
// manifests and logs stable across test runs. Safe for concurrent use.
type BuildIDs struct {
	mu  sync.Mutex
	seq int
}

// Next returns the next build ID.
func (g *BuildIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("build-%04d", g.seq)
}

// Reset restarts the sequence at build-0001.
func (g *BuildIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
