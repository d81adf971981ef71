package markup

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// Forcer is an attribute bag in a deferred representation. Force produces the
// plain mapping.
type Forcer interface {
	Force() (map[string]string, error)
}

// Coerce converts an opaque attribute bag to a fresh plain mapping. Accepted
// forms: nil, map[string]string, map[string]any, and Forcer.
func Coerce(bag any) (map[string]string, error) {
	switch b := bag.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		out := maps.Clone(b)
		if out == nil {
			out = map[string]string{}
		}
		return out, nil
	case map[string]any:
		out := make(map[string]string, len(b))
		for k, v := range b {
			switch val := v.(type) {
			case nil:
			case string:
				out[k] = val
			case bool:
				out[k] = strconv.FormatBool(val)
			default:
				out[k] = fmt.Sprint(val)
			}
		}
		return out, nil
	case Forcer:
		forced, err := b.Force()
		if err != nil {
			return nil, err
		}
		return Coerce(forced)
	default:
		return nil, fmt.Errorf("unsupported attribute container %T", bag)
	}
}

// positionalAttributes names positional info-string words in order.
var positionalAttributes = []string{"target", "format"}

// InfoAttributes is the attribute list of a fenced block's info string,
// parsed on first Force.
type InfoAttributes struct {
	raw string
}

// Force parses the attribute list.
func (a InfoAttributes) Force() (map[string]string, error) {
	return parseAttributeList(a.raw)
}

// SplitInfo returns the block name and its deferred attribute list.
func SplitInfo(info string) (string, InfoAttributes) {
	info = strings.TrimSpace(info)
	name, rest, _ := strings.Cut(info, " ")
	return name, InfoAttributes{raw: rest}
}

func parseAttributeList(raw string) (map[string]string, error) {
	words, err := splitWords(raw)
	if err != nil {
		return nil, err
	}

	attrs := map[string]string{}
	positional := 0
	for _, w := range words {
		switch {
		case strings.HasPrefix(w, "#") && len(w) > 1:
			attrs["id"] = w[1:]
		case strings.HasPrefix(w, ".") && len(w) > 1:
			if role := attrs["role"]; role != "" {
				attrs["role"] = role + " " + w[1:]
			} else {
				attrs["role"] = w[1:]
			}
		case strings.Contains(w, "="):
			k, v, _ := strings.Cut(w, "=")
			if k == "" {
				return nil, fmt.Errorf("attribute %q has no name", w)
			}
			attrs[k] = v
		default:
			if positional >= len(positionalAttributes) {
				return nil, fmt.Errorf("unexpected positional attribute %q", w)
			}
			attrs[positionalAttributes[positional]] = w
			positional++
		}
	}
	return attrs, nil
}

// splitWords splits on spaces, keeping quoted values (key="a b") together
// and removing the quotes.
func splitWords(s string) ([]string, error) {
	var (
		words []string
		cur   strings.Builder
		quote rune
		inTok bool
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inTok = true
		case r == ' ' || r == '\t':
			if inTok {
				words = append(words, cur.String())
				cur.Reset()
				inTok = false
			}
		default:
			cur.WriteRune(r)
			inTok = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in %q", s)
	}
	if inTok {
		words = append(words, cur.String())
	}
	return words, nil
}
