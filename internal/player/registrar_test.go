package player

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/castembed/internal/catalog"
	"github.com/roach88/castembed/internal/ir"
)

func newTestCatalog(t *testing.T) (*catalog.Catalog, *bytes.Buffer, *slog.Logger) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return catalog.New(logger), &buf, logger
}

func TestEnsureRuntimeAssetsRegistersEverything(t *testing.T) {
	c, _, logger := newTestCatalog(t)
	env := map[string]string{}

	err := NewRegistrar(c, WithLogger(logger)).EnsureRuntimeAssets("_", env)
	require.NoError(t, err)

	assert.Equal(t, Provider, env[ProviderEnv])

	script, ok := c.Lookup(ir.KindAsset, "js/vendor/asciinema-player.min.js")
	require.True(t, ok)
	assert.Equal(t, "_/js/vendor/asciinema-player.min.js", script.Out)

	style, ok := c.Lookup(ir.KindAsset, "css/vendor/asciinema-player.css")
	require.True(t, ok)
	assert.Equal(t, "_/css/vendor/asciinema-player.css", style.Out)

	data, err := catalog.ReadAll(script.Contents)
	require.NoError(t, err)
	assert.Contains(t, string(data), "AsciinemaPlayer")

	scripts, ok := c.Lookup(ir.KindPartial, "partials/asciinema-scripts.tmpl")
	require.True(t, ok)
	assert.Equal(t, "asciinema-scripts", scripts.Stem)
	data, err = catalog.ReadAll(scripts.Contents)
	require.NoError(t, err)
	assert.Equal(t, `<script src="{{ .UIRootPath }}/js/vendor/asciinema-player.min.js"></script>`+"\n", string(data))

	styles, ok := c.Lookup(ir.KindPartial, "partials/asciinema-styles.tmpl")
	require.True(t, ok)
	data, err = catalog.ReadAll(styles.Contents)
	require.NoError(t, err)
	assert.Equal(t, `<link rel="stylesheet" href="{{ .UIRootPath }}/css/vendor/asciinema-player.css">`+"\n", string(data))

	assert.Equal(t, 4, c.Len())
}

func TestEnsureRuntimeAssetsIdempotent(t *testing.T) {
	c, logs, logger := newTestCatalog(t)
	r := NewRegistrar(c, WithLogger(logger))

	require.NoError(t, r.EnsureRuntimeAssets("_", map[string]string{}))
	require.NoError(t, r.EnsureRuntimeAssets("_", map[string]string{}))

	assert.Equal(t, 4, c.Len())
	assert.Len(t, c.FindByKind(ir.KindAsset), 2)
	assert.Len(t, c.FindByKind(ir.KindPartial), 2)
	assert.Empty(t, logs.String(), "second pass must be silent")

	// A fresh registrar in the same build recognises its own entries.
	require.NoError(t, NewRegistrar(c, WithLogger(logger)).EnsureRuntimeAssets("_", map[string]string{}))
	assert.Equal(t, 4, c.Len())
	assert.Empty(t, logs.String())
}

func TestEnsureRuntimeAssetsKeepsUserVendorFile(t *testing.T) {
	c, logs, logger := newTestCatalog(t)
	_, err := c.Register(catalog.Entry{
		Path:     "css/vendor/asciinema-player.css",
		Kind:     ir.KindAsset,
		Contents: catalog.Bytes([]byte("/* mine */")),
		Out:      "_/css/vendor/asciinema-player.css",
		Owner:    "ui",
	}, false)
	require.NoError(t, err)

	r := NewRegistrar(c, WithLogger(logger))
	require.NoError(t, r.EnsureRuntimeAssets("_", map[string]string{}))

	entry, ok := c.Lookup(ir.KindAsset, "css/vendor/asciinema-player.css")
	require.True(t, ok)
	data, err := catalog.ReadAll(entry.Contents)
	require.NoError(t, err)
	assert.Equal(t, "/* mine */", string(data))
	assert.Equal(t, "ui", entry.Owner)

	assert.Contains(t, logs.String(), "level=INFO")
	assert.Contains(t, logs.String(), "css/vendor/asciinema-player.css")
	assert.NotContains(t, logs.String(), "level=WARN")

	// Re-delivery does not repeat the skip diagnostic.
	before := strings.Count(logs.String(), "skipping")
	require.NoError(t, r.EnsureRuntimeAssets("_", map[string]string{}))
	assert.Equal(t, before, strings.Count(logs.String(), "skipping"))
}

func TestEnsureRuntimeAssetsOverwrite(t *testing.T) {
	c, logs, logger := newTestCatalog(t)
	_, err := c.Register(catalog.Entry{
		Path:     "js/vendor/asciinema-player.min.js",
		Kind:     ir.KindAsset,
		Contents: catalog.Bytes([]byte("old")),
		Owner:    "ui",
	}, false)
	require.NoError(t, err)
	c.SetStat(ir.KindAsset, "js/vendor/asciinema-player.min.js", catalog.Stat{Size: 3})

	r := NewRegistrar(c, WithLogger(logger), WithOverwrite(true))
	require.NoError(t, r.EnsureRuntimeAssets("_", map[string]string{}))

	entry, _ := c.Lookup(ir.KindAsset, "js/vendor/asciinema-player.min.js")
	assert.Equal(t, Owner, entry.Owner)
	assert.Nil(t, entry.Stat)
	data, err := catalog.ReadAll(entry.Contents)
	require.NoError(t, err)
	assert.NotEqual(t, "old", string(data))
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "js/vendor/asciinema-player.min.js")
}

func TestEnsureRuntimeAssetsUserPartialWins(t *testing.T) {
	c, logs, logger := newTestCatalog(t)
	_, err := c.Register(catalog.Entry{
		Path:     "partials/asciinema-scripts.tmpl",
		Kind:     ir.KindPartial,
		Stem:     "asciinema-scripts",
		Contents: catalog.Bytes([]byte("<!-- custom -->")),
		Owner:    "ui",
	}, false)
	require.NoError(t, err)

	require.NoError(t, NewRegistrar(c, WithLogger(logger), WithOverwrite(true)).EnsureRuntimeAssets("_", map[string]string{}))

	entry, _ := c.Lookup(ir.KindPartial, "partials/asciinema-scripts.tmpl")
	data, err := catalog.ReadAll(entry.Contents)
	require.NoError(t, err)
	assert.Equal(t, "<!-- custom -->", string(data))
	assert.NotContains(t, logs.String(), "asciinema-scripts", "no diagnostic for user partials")
}

func TestEnsureRuntimeAssetsCustomRuntime(t *testing.T) {
	c, _, logger := newTestCatalog(t)
	fsys := fstest.MapFS{
		"asciinema-player.min.js": {Data: []byte("upstream js")},
		"asciinema-player.css":    {Data: []byte("upstream css")},
	}

	r := NewRegistrar(c, WithLogger(logger), WithRuntimeFS(fsys))
	require.NoError(t, r.EnsureRuntimeAssets("_", map[string]string{}))

	entry, _ := c.Lookup(ir.KindAsset, "js/vendor/asciinema-player.min.js")
	data, err := catalog.ReadAll(entry.Contents)
	require.NoError(t, err)
	assert.Equal(t, "upstream js", string(data))
}

func TestEnsureRuntimeAssetsMissingRuntimeIsFatal(t *testing.T) {
	c, _, logger := newTestCatalog(t)
	fsys := fstest.MapFS{
		"asciinema-player.css": {Data: []byte("css only")},
	}

	err := NewRegistrar(c, WithLogger(logger), WithRuntimeFS(fsys)).EnsureRuntimeAssets("_", map[string]string{})
	require.Error(t, err)

	var resolveErr *ResolveError
	require.True(t, errors.As(err, &resolveErr))
	assert.Equal(t, "js/asciinema-player.min.js", resolveErr.Name)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestEnsureRuntimeAssetsNilEnv(t *testing.T) {
	c, _, logger := newTestCatalog(t)
	err := NewRegistrar(c, WithLogger(logger)).EnsureRuntimeAssets("_", nil)
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestLogicalPaths(t *testing.T) {
	assert.Equal(t, "js/vendor/asciinema-player.min.js", Script.LogicalPath())
	assert.Equal(t, "css/vendor/asciinema-player.css", Style.LogicalPath())
	assert.Equal(t, "partials/asciinema-scripts.tmpl", ScriptsPartial.LogicalPath())
	assert.Equal(t, "partials/asciinema-styles.tmpl", StylesPartial.LogicalPath())
}
