package site

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/parser"
)

func TestParseDocumentFrontMatter(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		title string
		body  string
	}{
		{"none", "# Hi\n", "intro", "# Hi\n"},
		{"title", "---\ntitle: Getting Started\n---\nbody\n", "Getting Started", "body\n"},
		{"empty", "---\n---\nbody\n", "intro", "body\n"},
		{"front matter only", "---\ntitle: Bare\n---", "Bare", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument("guide/intro.md", []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.title, doc.Title)
			assert.Equal(t, tt.body, string(doc.Body))
		})
	}
}

func TestParseDocumentAttributes(t *testing.T) {
	doc, err := ParseDocument("a.md", []byte("---\nversion: 2\nfigure-caption: false\ndraft: true\n---\n"))
	require.NoError(t, err)

	assert.Equal(t, "2", doc.Attributes["version"])
	assert.Equal(t, "true", doc.Attributes["draft"])
	assert.Equal(t, "", doc.Attributes["figure-caption"])
	assert.Empty(t, doc.NextFigureCaption(), "captions disabled")
}

func TestParseDocumentErrors(t *testing.T) {
	_, err := ParseDocument("a.md", []byte("---\ntitle: x\n"))
	assert.ErrorContains(t, err, "unterminated front matter")

	_, err = ParseDocument("a.md", []byte("---\n: [\n---\n"))
	assert.ErrorContains(t, err, "front matter")
}

func TestDocumentPaths(t *testing.T) {
	tests := []struct {
		path string
		out  string
		root string
	}{
		{"index.md", "index.html", "."},
		{"guide/setup.md", "guide/setup.html", ".."},
		{"a/b/c.md", "a/b/c.html", "../.."},
	}
	for _, tt := range tests {
		doc, err := ParseDocument(tt.path, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.out, doc.OutPath(), tt.path)
		assert.Equal(t, tt.root, doc.RootPath(), tt.path)
	}
}

func TestDocumentFigureCaptions(t *testing.T) {
	doc, err := ParseDocument("a.md", []byte("---\nfigure-caption: Recording\n---\n"))
	require.NoError(t, err)

	assert.Equal(t, "Recording 1. ", doc.NextFigureCaption())
	assert.Equal(t, "Recording 2. ", doc.NextFigureCaption())
}

func TestDocumentUniqueID(t *testing.T) {
	doc, err := ParseDocument("a.md", nil)
	require.NoError(t, err)

	assert.Equal(t, "abc", doc.UniqueID("abc"))
	assert.Equal(t, "abc-2", doc.UniqueID("abc"))
	assert.Equal(t, "def", doc.UniqueID("def"))
	assert.Equal(t, "abc-3", doc.UniqueID("abc"))
}

func TestDocumentApplySubs(t *testing.T) {
	doc, err := ParseDocument("a.md", []byte("---\nhost: demo.local\n---\n"))
	require.NoError(t, err)

	tests := []struct {
		subs string
		in   string
		want string
	}{
		{"none", "<{host}>", "<{host}>"},
		{"attributes", "ssh {host} {missing}", "ssh demo.local {missing}"},
		{"specialchars", "a < b & c", "a &lt; b &amp; c"},
		{"attributes,specialcharacters", "<{host}>", "&lt;demo.local&gt;"},
	}
	for _, tt := range tests {
		t.Run(tt.subs, func(t *testing.T) {
			got, err := doc.ApplySubs([]byte(tt.in), tt.subs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}

	_, err = doc.ApplySubs([]byte("x"), "quotes")
	assert.ErrorContains(t, err, `unsupported substitution "quotes"`)
}

func TestDocumentErrors(t *testing.T) {
	doc, err := ParseDocument("a.md", nil)
	require.NoError(t, err)
	assert.NoError(t, doc.Err())

	first := errors.New("first")
	doc.AddError(first)
	doc.AddError(errors.New("second"))
	assert.ErrorIs(t, doc.Err(), first)
	assert.ErrorContains(t, doc.Err(), "second")
}

func TestDocumentContext(t *testing.T) {
	pc := parser.NewContext()
	assert.Nil(t, DocumentFromContext(pc))

	doc, err := ParseDocument("a.md", nil)
	require.NoError(t, err)
	WithDocument(pc, doc)
	assert.Same(t, doc, DocumentFromContext(pc))
}
