package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/nucleus"
	"github.com/hupe1980/nucleus/blobstore"
	"github.com/hupe1980/nucleus/checkpoint"
	"github.com/hupe1980/nucleus/resource"
)

func newWorkspace(t *testing.T, seq uint64) *nucleus.Workspace {
	t.Helper()
	ws, err := nucleus.New(
		nucleus.WithReserve(64<<20),
		nucleus.WithCommitGranularity(1<<16),
		nucleus.WithSeed(7, seq),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, 1<<30, cfg.reserve)
	assert.Equal(t, 1<<20, cfg.granularity)
	assert.Equal(t, "lz4", cfg.compression)

	cfg, err = parseFlags([]string{"-steps", "5", "-compression", "zstd", "-checkpoint-dir", "/tmp/x"})
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.steps)
	assert.Equal(t, "/tmp/x", cfg.checkpointDir)

	for _, args := range [][]string{
		{"-batch", "0"},
		{"-hidden", "-1"},
		{"-compression", "gzip"},
		{"-unknown"},
	} {
		_, err := parseFlags(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestParseCompression(t *testing.T) {
	for s, want := range map[string]checkpoint.Compression{
		"none": checkpoint.CompressionNone,
		"lz4":  checkpoint.CompressionLZ4,
		"zstd": checkpoint.CompressionZSTD,
	} {
		got, err := parseCompression(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, s, got.String())
	}
}

func TestTrainingReducesLoss(t *testing.T) {
	params := newWorkspace(t, 1)
	scratch := newWorkspace(t, 2)

	m := newModel(params, 2, 16, 2)
	paramsUsed := params.Stats().Offset

	var first, last float32
	for i := range 300 {
		x, p := batch(scratch, scratch.Stream(), 64)
		loss, err := m.step(scratch, x, p, 0.5)
		require.NoError(t, err)
		if i == 0 {
			first = loss
		}
		last = loss
		scratch.Reset()
	}

	assert.Less(t, last, first*0.75)
	assert.Equal(t, paramsUsed, params.Stats().Offset, "training must not allocate parameters")
	assert.Zero(t, scratch.Stats().Offset)

	acc, err := evaluate(scratch, m, 512)
	require.NoError(t, err)
	assert.Greater(t, acc, 0.85)
}

func TestRoundTrip(t *testing.T) {
	params := newWorkspace(t, 1)
	m := newModel(params, 2, 8, 2)

	cfg, err := parseFlags([]string{"-compression", "zstd"})
	require.NoError(t, err)

	rc := resource.NewController(resource.Config{MaxBackgroundWorkers: 2})
	store := blobstore.NewMemoryStore()
	require.NoError(t, roundTrip(t.Context(), cfg, nucleus.NoopLogger(), store, rc, params, m))

	names, err := store.List(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"seed-42/w1", "seed-42/w2"}, names)
}

func TestOpenStore(t *testing.T) {
	s, err := openStore(t.Context(), config{}, nil)
	require.NoError(t, err)
	assert.Nil(t, s)

	dir := t.TempDir()
	s, err = openStore(t.Context(), config{checkpointDir: dir}, nil)
	require.NoError(t, err)
	require.IsType(t, &blobstore.LocalStore{}, s)
	assert.Equal(t, dir, s.(*blobstore.LocalStore).Root())

	_, err = openStore(t.Context(), config{minioEndpoint: "localhost:9000"}, nil)
	assert.Error(t, err)
}

func TestEqual(t *testing.T) {
	ws := newWorkspace(t, 1)
	a := ws.RandomNormal(3, 4, 0, 1)
	b := ws.Matrix(3, 4)
	copy(b.Data(), a.Data())
	assert.True(t, equal(a, b))

	b.Set(2, 3, b.At(2, 3)+1)
	assert.False(t, equal(a, b))
	assert.False(t, equal(a, ws.Matrix(4, 3)))
}
