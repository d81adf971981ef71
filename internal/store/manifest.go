package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/castembed/internal/ir"
)

// Build is one recorded site build.
type Build struct {
	ID        string            `json:"id"`
	Seq       int64             `json:"seq"`
	OutputDir string            `json:"output_dir"`
	Env       map[string]string `json:"env"`
	PageCount int               `json:"page_count"`
}

// Output is one file written by a build.
type Output struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Token string `json:"token,omitempty"`
	Size  int64  `json:"size"`
}

// Recording is a published recording, recorded once across builds.
type Recording struct {
	Token        string `json:"token"`
	Size         int64  `json:"size"`
	FirstBuildID string `json:"first_build_id"`
}

// ErrBuildNotFound is returned when a build ID is not in the manifest.
var ErrBuildNotFound = errors.New("build not found")

// RecordBuild stores a build and its outputs in one transaction and returns
// the build's assigned seq. Outputs carrying a token also record the
// recording; a token seen in an earlier build keeps its first build.
//
// Recording a build ID twice is an error.
func (s *Store) RecordBuild(ctx context.Context, b Build, outputs []Output) (int64, error) {
	env := map[string]string{}
	for k, v := range b.Env {
		env[k] = v
	}
	envJSON, err := ir.MarshalCanonical(env)
	if err != nil {
		return 0, fmt.Errorf("record build: marshal env: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("record build: %w", err)
	}
	defer tx.Rollback() // No-op after commit

	// seq is a logical clock; the single connection serializes writers.
	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM builds`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("record build: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO builds (id, seq, output_dir, env, page_count)
		VALUES (?, ?, ?, ?, ?)
	`, b.ID, seq, b.OutputDir, string(envJSON), b.PageCount)
	if err != nil {
		return 0, fmt.Errorf("record build %s: %w", b.ID, err)
	}

	for _, o := range outputs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO outputs (build_id, path, kind, token, size)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(build_id, path) DO NOTHING
		`, b.ID, o.Path, o.Kind, o.Token, o.Size)
		if err != nil {
			return 0, fmt.Errorf("record output %s: %w", o.Path, err)
		}

		if o.Token == "" {
			continue
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO recordings (token, size, first_build_id)
			VALUES (?, ?, ?)
			ON CONFLICT(token) DO NOTHING
		`, o.Token, o.Size, b.ID)
		if err != nil {
			return 0, fmt.Errorf("record recording %s: %w", o.Token, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("record build: commit: %w", err)
	}
	return seq, nil
}

// ListBuilds returns all builds ordered by seq.
func (s *Store) ListBuilds(ctx context.Context) ([]Build, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, output_dir, env, page_count
		FROM builds
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	builds := []Build{}
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return builds, nil
}

// GetBuild returns one build, or ErrBuildNotFound.
func (s *Store) GetBuild(ctx context.Context, id string) (Build, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, output_dir, env, page_count
		FROM builds
		WHERE id = ?
	`, id)
	b, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Build{}, fmt.Errorf("%w: %s", ErrBuildNotFound, id)
	}
	return b, err
}

// ListOutputs returns a build's outputs ordered by path.
func (s *Store) ListOutputs(ctx context.Context, buildID string) ([]Output, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, kind, token, size
		FROM outputs
		WHERE build_id = ?
		ORDER BY path COLLATE BINARY ASC
	`, buildID)
	if err != nil {
		return nil, fmt.Errorf("query outputs: %w", err)
	}
	defer rows.Close()

	outputs := []Output{}
	for rows.Next() {
		var o Output
		if err := rows.Scan(&o.Path, &o.Kind, &o.Token, &o.Size); err != nil {
			return nil, fmt.Errorf("scan output: %w", err)
		}
		outputs = append(outputs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outputs: %w", err)
	}
	return outputs, nil
}

// Recordings returns every recorded recording ordered by token.
func (s *Store) Recordings(ctx context.Context) ([]Recording, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, size, first_build_id
		FROM recordings
		ORDER BY token COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query recordings: %w", err)
	}
	defer rows.Close()

	recordings := []Recording{}
	for rows.Next() {
		var r Recording
		if err := rows.Scan(&r.Token, &r.Size, &r.FirstBuildID); err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		recordings = append(recordings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recordings: %w", err)
	}
	return recordings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBuild(row rowScanner) (Build, error) {
	var (
		b       Build
		envJSON string
	)
	if err := row.Scan(&b.ID, &b.Seq, &b.OutputDir, &envJSON, &b.PageCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Build{}, err
		}
		return Build{}, fmt.Errorf("scan build: %w", err)
	}
	if err := json.Unmarshal([]byte(envJSON), &b.Env); err != nil {
		return Build{}, fmt.Errorf("unmarshal env of build %s: %w", b.ID, err)
	}
	return b, nil
}
