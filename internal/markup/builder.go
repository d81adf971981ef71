package markup

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/roach88/castembed/internal/ir"
	"github.com/roach88/castembed/internal/publish"
)

// Publisher publishes recording content and returns its token.
type Publisher interface {
	Publish(content []byte) (string, error)
}

// Document is the document-engine handle a block is built against.
type Document interface {
	// ApplySubs applies the engine's substitution directives to text.
	ApplySubs(text []byte, subs string) ([]byte, error)

	// NextFigureCaption returns the next automatic caption or "".
	NextFigureCaption() string

	// UniqueID returns a page-unique DOM id derived from base.
	UniqueID(base string) string

	// RootPath is the relative path from the page to the site root.
	RootPath() string
}

// Block is a built embed block.
type Block struct {
	ID      string
	Role    string
	Title   string
	Caption string

	// Token identifies the published recording.
	Token string

	// ElementID is the DOM id of the content holder.
	ElementID string

	// Src is the recording path handed to the player.
	Src string

	Options ir.EmbedOptions

	// Attributes are the block attributes with caption consumed.
	Attributes map[string]string

	Lines []string
}

// HTML returns the block markup.
func (b *Block) HTML() string {
	return strings.Join(b.Lines, "\n") + "\n"
}

// Builder builds embed blocks.
type Builder struct {
	publisher Publisher
	defaults  ir.EmbedOptions
}

// NewBuilder creates a builder. defaults are the build-wide option defaults
// that block attributes override.
func NewBuilder(p Publisher, defaults ir.EmbedOptions) *Builder {
	return &Builder{publisher: p, defaults: defaults}
}

// Build publishes text and returns the embed markup for it.
//
// bag is the block's attribute container in any form Coerce accepts. All
// attributes are validated before anything is published.
func (b *Builder) Build(bag any, text []byte, doc Document) (*Block, error) {
	attrs, err := Coerce(bag)
	if err != nil {
		return nil, err
	}

	blockOpts, err := parseOptions(attrs)
	if err != nil {
		return nil, err
	}
	opts := b.defaults.Override(blockOpts)
	optsJSON, err := opts.JSON()
	if err != nil {
		return nil, fmt.Errorf("serialize options: %w", err)
	}

	style, err := styleAttr(attrs)
	if err != nil {
		return nil, err
	}

	if subs := attrs["subs"]; subs != "" {
		text, err = doc.ApplySubs(text, subs)
		if err != nil {
			return nil, fmt.Errorf("apply subs: %w", err)
		}
	}

	token, err := b.publisher.Publish(text)
	if err != nil {
		return nil, err
	}

	block := &Block{
		ID:         attrs["id"],
		Role:       attrs["role"],
		Title:      attrs["title"],
		Token:      token,
		ElementID:  doc.UniqueID(token),
		Src:        doc.RootPath() + "/" + publish.LogicalPath(token),
		Options:    opts,
		Attributes: attrs,
	}
	if block.Title != "" {
		if caption, ok := attrs["caption"]; ok {
			block.Caption = caption
		} else {
			block.Caption = doc.NextFigureCaption()
		}
	}
	// Consumed here so generic rendering does not repeat it.
	delete(attrs, "caption")

	idAttr := ""
	if block.ID != "" {
		idAttr = fmt.Sprintf(` id="%s"`, html.EscapeString(block.ID))
	}
	class := "videoblock"
	if block.Role != "" {
		class = html.EscapeString(block.Role) + " videoblock"
	}
	titleElement := ""
	if block.Title != "" {
		titleElement = fmt.Sprintf(`<div class="title">%s%s</div>`,
			html.EscapeString(block.Caption), html.EscapeString(block.Title))
	}

	block.Lines = []string{
		fmt.Sprintf(`<div%s class="%s">`, idAttr, class),
		fmt.Sprintf(`<div class="content"><div id="%s"%s></div></div>`, block.ElementID, style),
		titleElement + "</div>",
		fmt.Sprintf(`<script>AsciinemaPlayer.create('%s', document.getElementById('%s'), %s)</script>`,
			block.Src, block.ElementID, optsJSON),
	}
	return block, nil
}

// parseOptions reads rows, cols and autoPlay from block attributes. Absent
// attributes stay nil so defaults apply.
func parseOptions(attrs map[string]string) (ir.EmbedOptions, error) {
	var opts ir.EmbedOptions
	var err error
	if opts.Rows, err = positiveAttr(attrs, "rows"); err != nil {
		return opts, err
	}
	if opts.Cols, err = positiveAttr(attrs, "cols"); err != nil {
		return opts, err
	}
	if v, ok := attrs["autoPlay"]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("attribute autoPlay: %q is not a boolean", v)
		}
		opts.AutoPlay = &b
	}
	return opts, nil
}

func positiveAttr(attrs map[string]string, name string) (*int, error) {
	v, ok := attrs[name]
	if !ok {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("attribute %s: %q is not a positive integer", name, v)
	}
	return &n, nil
}

// styleAttr renders width and height (pixels) as a style attribute.
func styleAttr(attrs map[string]string) (string, error) {
	var parts []string
	for _, name := range []string{"width", "height"} {
		n, err := positiveAttr(attrs, name)
		if err != nil {
			return "", err
		}
		if n != nil {
			parts = append(parts, fmt.Sprintf("%s: %dpx;", name, *n))
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return fmt.Sprintf(` style="%s"`, strings.Join(parts, " ")), nil
}
