package site

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/roach88/castembed/internal/catalog"
)

// Output describes one file of the generated site.
type Output struct {
	Path      string `json:"path"`
	Kind      string `json:"kind"`
	Token     string `json:"token,omitempty"`
	Size      int64  `json:"size"`
	Unchanged bool   `json:"unchanged,omitempty"`
}

// KindPage marks rendered pages in build outputs.
const KindPage = "page"

// writeFile atomically writes data to outDir/rel.
func writeFile(outDir, rel string, data []byte) error {
	return writeStream(outDir, rel, func(w io.Writer) (int64, error) {
		n, err := w.Write(data)
		return int64(n), err
	})
}

// writeEntry copies a catalog entry to its output location, opening the
// entry's source only now. An entry with a cached stat matching the existing
// output file is left alone.
func writeEntry(outDir string, e catalog.Entry) (Output, error) {
	out := Output{Path: e.Out, Kind: string(e.Kind), Token: e.Token}
	dst, err := outputPath(outDir, e.Out)
	if err != nil {
		return out, err
	}

	if e.Stat != nil {
		if fi, err := os.Stat(dst); err == nil && fi.Size() == e.Stat.Size && fi.ModTime().Equal(e.Stat.ModTime) {
			out.Size = fi.Size()
			out.Unchanged = true
			return out, nil
		}
	}

	rc, err := e.Contents.Open()
	if err != nil {
		return out, fmt.Errorf("open %s: %w", e.Path, err)
	}
	defer rc.Close()

	var written int64
	err = writeStream(outDir, e.Out, func(w io.Writer) (int64, error) {
		n, err := io.Copy(w, rc)
		written = n
		return n, err
	})
	if err != nil {
		return out, fmt.Errorf("write %s: %w", e.Path, err)
	}
	out.Size = written

	if e.Stat != nil {
		if err := os.Chtimes(dst, e.Stat.ModTime, e.Stat.ModTime); err != nil {
			return out, fmt.Errorf("set mtime %s: %w", e.Out, err)
		}
	}
	return out, nil
}

func outputPath(outDir, rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if rel == "" || !filepath.IsLocal(local) {
		return "", fmt.Errorf("output path %q escapes the output directory", rel)
	}
	return filepath.Join(outDir, local), nil
}

func writeStream(outDir, rel string, fill func(io.Writer) (int64, error)) error {
	dst, err := outputPath(outDir, rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".castembed-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // No-op after rename

	if _, err := fill(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
