package site

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/roach88/castembed/internal/catalog"
	"github.com/roach88/castembed/internal/ir"
)

// UIOwner marks catalog entries loaded from the user UI directory.
const UIOwner = "ui"

// layoutPath is the UI-relative path of a layout override.
const layoutPath = "layouts/default.tmpl"

// loadUI registers the files under dir in the catalog. partials/*.tmpl become
// partials named by stem; layouts/default.tmpl replaces the page layout;
// everything else is an asset published under uiOutputDir. Asset contents
// stay on disk until the final write. Returns the layout override, if any.
func loadUI(dir, uiOutputDir string, c *catalog.Catalog) (string, error) {
	var layout string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		switch {
		case rel == layoutPath:
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			layout = string(data)
			return nil

		case strings.HasPrefix(rel, "partials/") && path.Ext(rel) == ".tmpl":
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			_, err = c.Register(catalog.Entry{
				Path:     rel,
				Kind:     ir.KindPartial,
				Stem:     strings.TrimSuffix(path.Base(rel), ".tmpl"),
				Contents: catalog.Bytes(data),
				Owner:    UIOwner,
			}, false)
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if _, err := c.Register(catalog.Entry{
			Path:     rel,
			Kind:     ir.KindAsset,
			Contents: catalog.File(p),
			Out:      path.Join(uiOutputDir, rel),
			Owner:    UIOwner,
		}, false); err != nil {
			return err
		}
		c.SetStat(ir.KindAsset, rel, catalog.Stat{Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("load UI %s: %w", dir, err)
	}
	return layout, nil
}
