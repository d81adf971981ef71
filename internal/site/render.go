package site

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/roach88/castembed/internal/catalog"
	"github.com/roach88/castembed/internal/ir"
)

//go:embed layout.tmpl
var defaultLayout string

// newMarkdown builds the converter for one build. Extensions contributed
// through content-classified run after GFM.
func newMarkdown(render *RenderConfig) goldmark.Markdown {
	extenders := append([]goldmark.Extender{extension.GFM}, render.Extensions...)
	return goldmark.New(
		goldmark.WithExtensions(extenders...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

// convert renders doc's body to HTML. Errors recorded on the document by
// extensions fail the conversion.
func convert(md goldmark.Markdown, doc *Document) ([]byte, error) {
	pc := parser.NewContext()
	WithDocument(pc, doc)

	var buf bytes.Buffer
	if err := md.Convert(doc.Body, &buf, parser.WithContext(pc)); err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Path, err)
	}
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Path, err)
	}
	return buf.Bytes(), nil
}

// Page is the data a layout renders.
type Page struct {
	Title      string
	SiteTitle  string
	Body       template.HTML
	Env        map[string]string
	RootPath   string
	UIRootPath string
}

// layout renders pages. Partials come from the catalog and are resolved by
// stem at execution time, so a layout may reference partials that only some
// builds register.
type layout struct {
	page     *template.Template
	mu       sync.Mutex
	partials map[string]*template.Template
	sources  map[string]string
}

func newLayout(src string, c *catalog.Catalog) (*layout, error) {
	l := &layout{
		partials: make(map[string]*template.Template),
		sources:  make(map[string]string),
	}
	for _, e := range c.FindByKind(ir.KindPartial) {
		data, err := catalog.ReadAll(e.Contents)
		if err != nil {
			return nil, fmt.Errorf("read partial %s: %w", e.Path, err)
		}
		l.sources[e.Stem] = string(data)
	}

	page, err := template.New("layout").Funcs(template.FuncMap{
		"partial": l.partial,
	}).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	l.page = page
	return l, nil
}

func (l *layout) partial(name string, data any) (template.HTML, error) {
	l.mu.Lock()
	tmpl, ok := l.partials[name]
	if !ok {
		src, found := l.sources[name]
		if !found {
			l.mu.Unlock()
			return "", fmt.Errorf("partial %q not found", name)
		}
		var err error
		tmpl, err = template.New(name).Parse(src)
		if err != nil {
			l.mu.Unlock()
			return "", fmt.Errorf("parse partial %q: %w", name, err)
		}
		l.partials[name] = tmpl
	}
	l.mu.Unlock()

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render partial %q: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

func (l *layout) render(p Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := l.page.Execute(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// templateHTML marks converter output as trusted page markup.
func templateHTML(body []byte) template.HTML {
	return template.HTML(body)
}
