// Package publish registers recording content in the build catalog under a
// content-derived name, exactly once per build.
package publish

import (
	"fmt"
	"log/slog"
	"path"

	"github.com/roach88/castembed/internal/catalog"
	"github.com/roach88/castembed/internal/ir"
)

const (
	// Namespace is the site folder recordings are published under.
	Namespace = "_casts"

	// Extension is the recording file extension (asciicast).
	Extension = ".cast"

	// Owner marks catalog entries registered by the publisher.
	Owner = "asciinema"
)

// LogicalPath returns the catalog path for a token: _casts/<token>.cast.
func LogicalPath(token string) string {
	return path.Join(Namespace, token+Extension)
}

// Publisher publishes recordings into a catalog.
type Publisher struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// New creates a publisher writing to c. A nil logger means slog.Default().
func New(c *catalog.Catalog, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{catalog: c, logger: logger}
}

// Publish derives the token for content and registers the content as an asset
// unless an entry for that token already exists. Byte-identical content
// always yields the same token and a single catalog entry, no matter how many
// documents embed it or how often it is published.
//
// The content is copied; the caller may reuse its buffer.
func (p *Publisher) Publish(content []byte) (string, error) {
	token := ir.Token(content)
	logical := LogicalPath(token)

	if p.catalog.Exists(ir.KindAsset, logical) {
		p.logger.Debug("recording already published", "token", token)
		return token, nil
	}

	// Claim repeats the existence check under the catalog lock, so a
	// concurrent publisher of the same bytes cannot insert twice.
	inserted, err := p.catalog.Claim(catalog.Entry{
		Path:     logical,
		Kind:     ir.KindAsset,
		Contents: catalog.Bytes(content),
		Out:      logical,
		Token:    token,
		Owner:    Owner,
	})
	if err != nil {
		return "", fmt.Errorf("publish recording %s: %w", token, err)
	}
	if inserted {
		p.logger.Debug("recording published", "token", token, "path", logical, "size", len(content))
	} else {
		p.logger.Debug("recording already published", "token", token)
	}
	return token, nil
}
