package markup

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/roach88/castembed/internal/site"
)

// BlockName is the fenced block name handled by the extension.
const BlockName = "asciinema"

// KindEmbed is the AST kind of an embed node.
var KindEmbed = ast.NewNodeKind("AsciinemaEmbed")

// Embed is a built embed block in the goldmark AST.
type Embed struct {
	ast.BaseBlock
	Block *Block
}

// Kind implements ast.Node.
func (n *Embed) Kind() ast.NodeKind { return KindEmbed }

// Dump implements ast.Node.
func (n *Embed) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Token": n.Block.Token}, nil)
}

// BlockError reports an embed block that could not be built.
type BlockError struct {
	Path string
	Line int
	Err  error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("%s:%d: asciinema block: %v", e.Path, e.Line, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

// Extension is a goldmark extender for asciinema blocks.
type Extension struct {
	builder *Builder
}

// NewExtension creates an extension building blocks with b.
func NewExtension(b *Builder) *Extension {
	return &Extension{builder: b}
}

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&transformer{builder: e.builder}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(embedRenderer{}, 100),
	))
}

type transformer struct {
	builder *Builder
}

// Transform replaces asciinema fenced blocks with embed nodes. Blocks are only
// built when the parser context carries a site document; failures are
// recorded on that document.
func (t *transformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	doc := site.DocumentFromContext(pc)
	if doc == nil {
		return
	}
	source := reader.Source()

	var blocks []*ast.FencedCodeBlock
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fcb, ok := n.(*ast.FencedCodeBlock); ok {
			if string(fcb.Language(source)) == BlockName {
				blocks = append(blocks, fcb)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, fcb := range blocks {
		_, bag := SplitInfo(string(fcb.Info.Segment.Value(source)))

		var body bytes.Buffer
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			body.Write(seg.Value(source))
		}

		block, err := t.builder.Build(bag, body.Bytes(), doc)
		if err != nil {
			doc.AddError(&BlockError{Path: doc.Path, Line: lineOf(source, fcb.Info.Segment.Start), Err: err})
			continue
		}
		embed := &Embed{Block: block}
		fcb.Parent().ReplaceChild(fcb.Parent(), fcb, embed)
	}
}

// lineOf returns the 1-based line number of offset in source.
func lineOf(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return bytes.Count(source[:offset], []byte("\n")) + 1
}

type embedRenderer struct{}

func (embedRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindEmbed, renderEmbed)
}

func renderEmbed(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(n.(*Embed).Block.HTML())
	return ast.WalkSkipChildren, nil
}
