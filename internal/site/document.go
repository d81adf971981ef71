package site

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"path"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"
)

// DefaultFigureCaption prefixes numbered block titles.
const DefaultFigureCaption = "Figure"

// Document is one source document during a build. A Document is converted by
// a single goroutine and is not safe for concurrent use.
type Document struct {
	// Path is the slash-separated path relative to the content directory.
	Path string

	// Title comes from front matter, falling back to the file stem.
	Title string

	// Attributes are the front matter values as strings.
	Attributes map[string]string

	// Body is the Markdown source without front matter.
	Body []byte

	figures int
	ids     map[string]int
	errs    []error
}

var frontMatterDelim = []byte("---")

// ParseDocument splits optional YAML front matter from data.
func ParseDocument(relPath string, data []byte) (*Document, error) {
	doc := &Document{
		Path:       relPath,
		Attributes: map[string]string{"figure-caption": DefaultFigureCaption},
		Body:       data,
		ids:        make(map[string]int),
	}

	if bytes.HasPrefix(data, append(frontMatterDelim, '\n')) {
		rest := data[len(frontMatterDelim)+1:]
		end := bytes.Index(rest, []byte("\n---\n"))
		var front []byte
		switch {
		case bytes.HasPrefix(rest, []byte("---\n")):
			front, doc.Body = nil, rest[4:]
		case end >= 0:
			front, doc.Body = rest[:end], rest[end+5:]
		case bytes.HasSuffix(rest, []byte("\n---")):
			front, doc.Body = rest[:len(rest)-4], nil
		default:
			return nil, fmt.Errorf("%s: unterminated front matter", relPath)
		}

		var meta map[string]any
		if err := yaml.Unmarshal(front, &meta); err != nil {
			return nil, fmt.Errorf("%s: front matter: %w", relPath, err)
		}
		for k, v := range meta {
			switch val := v.(type) {
			case nil:
				doc.Attributes[k] = ""
			case bool:
				if !val {
					doc.Attributes[k] = ""
				} else {
					doc.Attributes[k] = "true"
				}
			default:
				doc.Attributes[k] = fmt.Sprint(val)
			}
		}
	}

	doc.Title = doc.Attributes["title"]
	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	}
	return doc, nil
}

// OutPath returns the page output path: the source path with .html.
func (d *Document) OutPath() string {
	return strings.TrimSuffix(d.Path, path.Ext(d.Path)) + ".html"
}

// RootPath returns the relative path from the page to the site root.
func (d *Document) RootPath() string {
	dir := path.Dir(d.Path)
	if dir == "." || dir == "" {
		return "."
	}
	depth := strings.Count(dir, "/") + 1
	return strings.TrimSuffix(strings.Repeat("../", depth), "/")
}

// NextFigureCaption returns the next numbered caption, e.g. "Figure 2. ".
// Returns "" when the document disables figure captions.
func (d *Document) NextFigureCaption() string {
	label := d.Attributes["figure-caption"]
	if label == "" {
		return ""
	}
	d.figures++
	return fmt.Sprintf("%s %d. ", label, d.figures)
}

// UniqueID returns base the first time it is requested and base-N after,
// keeping DOM ids unique within the page.
func (d *Document) UniqueID(base string) string {
	d.ids[base]++
	if n := d.ids[base]; n > 1 {
		return fmt.Sprintf("%s-%d", base, n)
	}
	return base
}

var attributeRef = regexp.MustCompile(`\{([A-Za-z0-9_][A-Za-z0-9_-]*)\}`)

// ApplySubs applies a comma-separated list of substitutions to text.
// Supported: none, attributes, specialchars (alias specialcharacters).
func (d *Document) ApplySubs(text []byte, subs string) ([]byte, error) {
	out := text
	for _, sub := range strings.Split(subs, ",") {
		switch strings.TrimSpace(sub) {
		case "none", "":
		case "attributes":
			out = attributeRef.ReplaceAllFunc(out, func(ref []byte) []byte {
				if v, ok := d.Attributes[string(ref[1:len(ref)-1])]; ok {
					return []byte(v)
				}
				return ref
			})
		case "specialchars", "specialcharacters":
			out = []byte(html.EscapeString(string(out)))
		default:
			return nil, fmt.Errorf("unsupported substitution %q", strings.TrimSpace(sub))
		}
	}
	return out, nil
}

// AddError records a conversion error. The page fails after conversion.
func (d *Document) AddError(err error) {
	d.errs = append(d.errs, err)
}

// Err returns the recorded conversion errors joined, or nil.
func (d *Document) Err() error {
	return errors.Join(d.errs...)
}

var documentKey = parser.NewContextKey()

// WithDocument stores doc in a goldmark parser context.
func WithDocument(pc parser.Context, doc *Document) {
	pc.Set(documentKey, doc)
}

// DocumentFromContext returns the document stored by WithDocument, or nil.
func DocumentFromContext(pc parser.Context) *Document {
	doc, _ := pc.Get(documentKey).(*Document)
	return doc
}
