package config

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/castembed/internal/ir"
)

//go:embed options.cue
var optionsSchema string

// Recognized option keys.
var OptionKeys = []string{"rows", "cols", "autoPlay"}

// ConfigError reports unrecognized setup keys.
type ConfigError struct {
	Component string
	Keys      []string // sorted
}

func (e *ConfigError) Error() string {
	noun := "option"
	if len(e.Keys) > 1 {
		noun = "options"
	}
	return fmt.Sprintf("unrecognized %s specified for %s: %s", noun, e.Component, strings.Join(e.Keys, ", "))
}

// IsConfigError returns true if err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ValidationError reports recognized keys with invalid values.
type ValidationError struct {
	Component string
	Details   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid options for %s: %s", e.Component, strings.Join(e.Details, "; "))
}

// ParseOptions validates raw setup options for component and returns the
// build-wide embed defaults. A nil map yields empty defaults.
func ParseOptions(component string, raw map[string]any) (ir.EmbedOptions, error) {
	var unknown []string
	for k := range raw {
		if !slices.Contains(OptionKeys, k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return ir.EmbedOptions{}, &ConfigError{Component: component, Keys: unknown}
	}
	if len(raw) == 0 {
		return ir.EmbedOptions{}, nil
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(optionsSchema, cue.Filename("options.cue"))
	if err := schema.Err(); err != nil {
		return ir.EmbedOptions{}, fmt.Errorf("compile options schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Options"))

	value := def.Unify(ctx.Encode(raw))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return ir.EmbedOptions{}, &ValidationError{Component: component, Details: details(err)}
	}

	var opts ir.EmbedOptions
	if err := value.Decode(&opts); err != nil {
		return ir.EmbedOptions{}, fmt.Errorf("decode options for %s: %w", component, err)
	}
	return opts, nil
}

// details flattens a CUE error list into one line per problem.
func details(err error) []string {
	var out []string
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if p := e.Path(); len(p) > 0 {
			msg = strings.Join(p, ".") + ": " + msg
		}
		out = append(out, msg)
	}
	if len(out) == 0 {
		out = append(out, err.Error())
	}
	return out
}
