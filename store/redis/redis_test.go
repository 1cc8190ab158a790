package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/smallnest/ragfusion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s := New(Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRedisStoreFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	chunks := []ragfusion.Chunk{
		{ID: "a_chunk_0", Text: "alpha", Metadata: map[string]string{"region": "US", "topic": "ACA"}},
		{ID: "b_chunk_0", Text: "beta", Metadata: map[string]string{"region": "US", "topic": "Medicare"}},
		{ID: "c_chunk_0", Text: "gamma", Metadata: map[string]string{"region": "UK", "topic": "NHS"}},
	}
	require.NoError(t, s.Add(ctx, chunks))

	got, err := s.Filter(ctx, map[string]string{"region": "US"}, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a_chunk_0", got[0].ID)
	assert.Equal(t, "b_chunk_0", got[1].ID)

	got, err = s.Filter(ctx, map[string]string{"region": "US", "topic": "Medicare"}, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "beta", got[0].Text)

	got, err = s.Filter(ctx, map[string]string{"region": "FR"}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisStoreInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	chunks := []ragfusion.Chunk{
		{ID: "z_chunk_0", Metadata: map[string]string{"k": "v"}},
		{ID: "a_chunk_0", Metadata: map[string]string{"k": "v"}},
		{ID: "m_chunk_0", Metadata: map[string]string{"k": "v"}},
	}
	require.NoError(t, s.Add(ctx, chunks))

	got, err := s.Filter(ctx, map[string]string{"k": "v"}, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "z_chunk_0", got[0].ID)
	assert.Equal(t, "a_chunk_0", got[1].ID)
	assert.Equal(t, "m_chunk_0", got[2].ID)
}

func TestRedisStoreUpsertKeepsPosition(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Add(ctx, []ragfusion.Chunk{
		{ID: "a", Text: "v1", Metadata: map[string]string{"k": "v"}},
		{ID: "b", Text: "v1", Metadata: map[string]string{"k": "v"}},
	}))
	require.NoError(t, s.Add(ctx, []ragfusion.Chunk{
		{ID: "a", Text: "v2", Metadata: map[string]string{"k": "v"}},
	}))

	got, err := s.Filter(ctx, map[string]string{"k": "v"}, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "v2", got[0].Text)
}

func TestRedisStoreLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Add(ctx, []ragfusion.Chunk{
		{ID: "a", Metadata: map[string]string{"k": "v"}},
		{ID: "b", Metadata: map[string]string{"k": "v"}},
		{ID: "c", Metadata: map[string]string{"k": "v"}},
	}))

	got, err := s.Filter(ctx, map[string]string{"k": "v"}, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRedisStoreEmpty(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Filter(context.Background(), map[string]string{"k": "v"}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
