package markup

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"

	"github.com/roach88/castembed/internal/catalog"
	"github.com/roach88/castembed/internal/ir"
	"github.com/roach88/castembed/internal/publish"
	"github.com/roach88/castembed/internal/site"
)

func convertMarkdown(t *testing.T, c *catalog.Catalog, relPath, src string) (string, *site.Document) {
	t.Helper()
	doc, err := site.ParseDocument(relPath, []byte(src))
	require.NoError(t, err)

	md := goldmark.New(goldmark.WithExtensions(
		NewExtension(NewBuilder(publish.New(c, nil), ir.EmbedOptions{})),
	))
	pc := parser.NewContext()
	site.WithDocument(pc, doc)

	var out bytes.Buffer
	require.NoError(t, md.Convert(doc.Body, &out, parser.WithContext(pc)))
	return out.String(), doc
}

func TestExtensionRendersEmbed(t *testing.T) {
	c := catalog.New(nil)
	src := "# Demo\n\n```asciinema\nhello\n```\n"

	html, doc := convertMarkdown(t, c, "index.md", src)
	require.NoError(t, doc.Err())

	assert.Contains(t, html, `<div class="content"><div id="`+helloToken+`"></div></div>`)
	assert.Contains(t, html, "'./_casts/"+helloToken+".cast'")
	assert.NotContains(t, html, "<pre>")
	assert.True(t, c.Exists(ir.KindAsset, publish.LogicalPath(helloToken)))
}

func TestExtensionDedupesIdenticalBlocks(t *testing.T) {
	c := catalog.New(nil)
	src := "```asciinema\nsame\n```\n\ntext\n\n```asciinema rows=5\nsame\n```\n"

	html, doc := convertMarkdown(t, c, "guide/setup.md", src)
	require.NoError(t, doc.Err())

	assert.Equal(t, 1, c.Len())
	token := ir.Token([]byte("same\n"))
	assert.Contains(t, html, `id="`+token+`"`)
	assert.Contains(t, html, `id="`+token+`-2"`)
	assert.Contains(t, html, "'../_casts/"+token+".cast'")
	assert.Contains(t, html, `{"rows":5}`)
}

func TestExtensionLeavesOtherFencesAlone(t *testing.T) {
	c := catalog.New(nil)
	src := "```go\nfmt.Println()\n```\n\n```\nplain\n```\n"

	html, doc := convertMarkdown(t, c, "index.md", src)
	require.NoError(t, doc.Err())

	assert.Equal(t, 0, c.Len())
	assert.Contains(t, html, `<code class="language-go">`)
	assert.Contains(t, html, "plain")
}

func TestExtensionRecordsBlockErrors(t *testing.T) {
	c := catalog.New(nil)
	src := "intro\n\n```asciinema rows=none\nhello\n```\n"

	_, doc := convertMarkdown(t, c, "broken.md", src)

	var blockErr *BlockError
	require.ErrorAs(t, doc.Err(), &blockErr)
	assert.Equal(t, "broken.md", blockErr.Path)
	assert.Equal(t, 3, blockErr.Line)
	assert.Equal(t, 0, c.Len())
}

func TestExtensionWithoutDocumentIsInert(t *testing.T) {
	c := catalog.New(nil)
	md := goldmark.New(goldmark.WithExtensions(
		NewExtension(NewBuilder(publish.New(c, nil), ir.EmbedOptions{})),
	))

	var out bytes.Buffer
	require.NoError(t, md.Convert([]byte("```asciinema\nhello\n```\n"), &out))
	assert.Contains(t, out.String(), "<pre>")
	assert.Equal(t, 0, c.Len())
}
