package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tokenA = "b1946ac92492d2347c6235b4d2611184"
	tokenB = "d41d8cd98f00b204e9800998ecf8427e"
)

func TestRecordBuildAssignsSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq1, err := s.RecordBuild(ctx, Build{ID: "b1", OutputDir: "public"}, nil)
	require.NoError(t, err)
	seq2, err := s.RecordBuild(ctx, Build{ID: "b2", OutputDir: "public"}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), seq1)
	assert.Equal(t, int64(2), seq2)

	builds, err := s.ListBuilds(ctx)
	require.NoError(t, err)
	require.Len(t, builds, 2)
	assert.Equal(t, "b1", builds[0].ID)
	assert.Equal(t, "b2", builds[1].ID)
}

func TestRecordBuildDuplicateID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.RecordBuild(ctx, Build{ID: "b1"}, nil)
	require.NoError(t, err)
	_, err = s.RecordBuild(ctx, Build{ID: "b1"}, []Output{{Path: "index.html", Kind: "page", Size: 1}})
	require.Error(t, err)

	outputs, err := s.ListOutputs(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, outputs, "failed build leaves nothing behind")
}

func TestGetBuild(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.RecordBuild(ctx, Build{
		ID:        "b1",
		OutputDir: "/srv/site",
		Env:       map[string]string{"SITE_ASCIINEMA_PROVIDER": "asciinema"},
		PageCount: 3,
	}, nil)
	require.NoError(t, err)

	b, err := s.GetBuild(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, Build{
		ID:        "b1",
		Seq:       1,
		OutputDir: "/srv/site",
		Env:       map[string]string{"SITE_ASCIINEMA_PROVIDER": "asciinema"},
		PageCount: 3,
	}, b)

	_, err = s.GetBuild(ctx, "missing")
	assert.ErrorIs(t, err, ErrBuildNotFound)
}

func TestGetBuildEmptyEnv(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.RecordBuild(ctx, Build{ID: "b1"}, nil)
	require.NoError(t, err)

	b, err := s.GetBuild(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, b.Env)
}

func TestListOutputsOrderedByPath(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.RecordBuild(ctx, Build{ID: "b1"}, []Output{
		{Path: "index.html", Kind: "page", Size: 120},
		{Path: "_casts/" + tokenA + ".cast", Kind: "asset", Token: tokenA, Size: 6},
		{Path: "Z.html", Kind: "page", Size: 1},
		{Path: "index.html", Kind: "page", Size: 999},
	})
	require.NoError(t, err)

	outputs, err := s.ListOutputs(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, outputs, 3, "duplicate path ignored")
	assert.Equal(t, "Z.html", outputs[0].Path)
	assert.Equal(t, "_casts/"+tokenA+".cast", outputs[1].Path)
	assert.Equal(t, tokenA, outputs[1].Token)
	assert.Equal(t, int64(120), outputs[2].Size, "first write wins")

	empty, err := s.ListOutputs(ctx, "nope")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRecordingsKeepFirstBuild(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.RecordBuild(ctx, Build{ID: "b1"}, []Output{
		{Path: "_casts/" + tokenA + ".cast", Kind: "asset", Token: tokenA, Size: 6},
	})
	require.NoError(t, err)
	_, err = s.RecordBuild(ctx, Build{ID: "b2"}, []Output{
		{Path: "_casts/" + tokenA + ".cast", Kind: "asset", Token: tokenA, Size: 6},
		{Path: "_casts/" + tokenB + ".cast", Kind: "asset", Token: tokenB, Size: 0},
		{Path: "index.html", Kind: "page", Size: 10},
	})
	require.NoError(t, err)

	recordings, err := s.Recordings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Recording{
		{Token: tokenA, Size: 6, FirstBuildID: "b1"},
		{Token: tokenB, Size: 0, FirstBuildID: "b2"},
	}, recordings)
}
