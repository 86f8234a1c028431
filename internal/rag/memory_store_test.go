package rag

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	s, err := NewMemoryStore(testDims)
	require.NoError(t, err)
	return s
}

func TestMemoryStore_NearestOnEmptyStore(t *testing.T) {
	s := newTestStore(t)

	matches, err := s.Nearest(context.Background(), hashVector("q"), 3)
	require.NoError(t, err)
	require.NotNil(t, matches)
	require.Empty(t, matches)
}

func TestMemoryStore_NearestIsBoundedAndOrdered(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 10; i++ {
		_, err := s.Insert(ctx, fmt.Sprintf("entry %d", i), hashVector(fmt.Sprintf("entry %d", i)))
		require.NoError(t, err)
	}

	for _, k := range []int{1, 3, 10, 25} {
		matches, err := s.Nearest(ctx, hashVector("some question"), k)
		require.NoError(t, err)
		require.LessOrEqual(t, len(matches), k)
		for i := 1; i < len(matches); i++ {
			require.LessOrEqual(t, matches[i-1].Distance, matches[i].Distance)
		}
	}
}

func TestMemoryStore_RoundTripDistanceIsZero(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Insert(ctx, "I have five years of Go experience.", hashVector("noise"))
	require.NoError(t, err)

	content := "I led the migration of our billing system to Postgres."
	id, err := s.Insert(ctx, content, hashVector(content))
	require.NoError(t, err)

	matches, err := s.Nearest(ctx, hashVector(content), 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, id, matches[0].ID)
	require.Equal(t, content, matches[0].Content)
	require.InDelta(t, 0, matches[0].Distance, 1e-5)
}

func TestMemoryStore_AssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.Insert(ctx, "a", hashVector("a"))
	require.NoError(t, err)
	b, err := s.Insert(ctx, "b", hashVector("b"))
	require.NoError(t, err)
	require.Greater(t, b, a)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}

func TestMemoryStore_RejectsWrongDimension(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Insert(ctx, "short", []float32{1, 2})
	require.ErrorIs(t, err, ErrStore)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n, "no row is written on failure")

	_, err = s.Nearest(ctx, []float32{1}, 1)
	require.ErrorIs(t, err, ErrStore)
}
