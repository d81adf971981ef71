package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedOptionsOverridePrecedence(t *testing.T) {
	defaults := EmbedOptions{Rows: IntPtr(24)}
	block := EmbedOptions{Cols: IntPtr(80)}

	got := defaults.Override(block)

	assert.Equal(t, map[string]any{"rows": 24, "cols": 80}, got.Object())
	_, hasAutoPlay := got.Object()["autoPlay"]
	assert.False(t, hasAutoPlay, "absent values are omitted, not defaulted")
}

func TestEmbedOptionsBlockWins(t *testing.T) {
	defaults := EmbedOptions{Rows: IntPtr(24), AutoPlay: BoolPtr(true)}
	block := EmbedOptions{Rows: IntPtr(40), AutoPlay: BoolPtr(false)}

	got := defaults.Override(block)

	require.NotNil(t, got.Rows)
	assert.Equal(t, 40, *got.Rows)
	require.NotNil(t, got.AutoPlay)
	assert.False(t, *got.AutoPlay, "explicit block-level false wins over default true")
}

func TestEmbedOptionsOverrideDoesNotMutate(t *testing.T) {
	defaults := EmbedOptions{Rows: IntPtr(24)}
	_ = defaults.Override(EmbedOptions{Rows: IntPtr(10)})
	assert.Equal(t, 24, *defaults.Rows)
}

func TestEmbedOptionsJSON(t *testing.T) {
	tests := []struct {
		name string
		opts EmbedOptions
		want string
	}{
		{"empty", EmbedOptions{}, `{}`},
		{"rows and cols", EmbedOptions{Rows: IntPtr(24), Cols: IntPtr(80)}, `{"cols":80,"rows":24}`},
		{"all", EmbedOptions{Rows: IntPtr(1), Cols: IntPtr(2), AutoPlay: BoolPtr(true)}, `{"autoPlay":true,"cols":2,"rows":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.JSON()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindValid(t *testing.T) {
	assert.True(t, KindAsset.Valid())
	assert.True(t, KindPartial.Valid())
	assert.False(t, Kind("page").Valid())
	assert.False(t, Kind("").Valid())
}
