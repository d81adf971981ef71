package ir

// Kind classifies a catalog entry.
type Kind string

const (
	// KindAsset is a file copied verbatim into the site output.
	KindAsset Kind = "asset"

	// KindPartial is a template fragment made available to page layouts.
	KindPartial Kind = "partial"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindAsset || k == KindPartial
}

// EmbedOptions are the player options resolved for one embed block.
// Nil fields are absent and are left out of the serialized object.
type EmbedOptions struct {
	Rows     *int  `json:"rows,omitempty"`
	Cols     *int  `json:"cols,omitempty"`
	AutoPlay *bool `json:"autoPlay,omitempty"`
}

// Override returns o with every field set in block taking precedence.
// Block-local values win over build-wide defaults.
func (o EmbedOptions) Override(block EmbedOptions) EmbedOptions {
	out := o
	if block.Rows != nil {
		out.Rows = block.Rows
	}
	if block.Cols != nil {
		out.Cols = block.Cols
	}
	if block.AutoPlay != nil {
		out.AutoPlay = block.AutoPlay
	}
	return out
}

// Object returns the options as a map containing only the set fields.
func (o EmbedOptions) Object() map[string]any {
	obj := map[string]any{}
	if o.Rows != nil {
		obj["rows"] = *o.Rows
	}
	if o.Cols != nil {
		obj["cols"] = *o.Cols
	}
	if o.AutoPlay != nil {
		obj["autoPlay"] = *o.AutoPlay
	}
	return obj
}

// JSON returns the compact canonical JSON form handed to the client runtime.
func (o EmbedOptions) JSON() (string, error) {
	data, err := MarshalCanonical(o.Object())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }
