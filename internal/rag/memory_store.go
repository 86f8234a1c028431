package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync/atomic"

	"github.com/philippgille/chromem-go"
)

// MemoryStore is an in-process VectorStore on top of a chromem-go collection.
// It ranks by cosine distance (1 - cosine similarity) and keeps nothing
// across restarts.
type MemoryStore struct {
	collection *chromem.Collection
	dims       int
	nextID     atomic.Int64
}

func NewMemoryStore(dims int) (*MemoryStore, error) {
	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(tableName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create collection: %w", ErrStore, err)
	}
	return &MemoryStore{collection: collection, dims: dims}, nil
}

func (s *MemoryStore) Insert(ctx context.Context, content string, embedding []float32) (int64, error) {
	if err := checkDimensions(embedding, s.dims); err != nil {
		return 0, err
	}

	id := s.nextID.Add(1)
	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	err := s.collection.AddDocument(ctx, chromem.Document{
		ID:        strconv.FormatInt(id, 10),
		Content:   content,
		Embedding: vec,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: insert entry: %w", ErrStore, err)
	}
	return id, nil
}

func (s *MemoryStore) Nearest(ctx context.Context, embedding []float32, k int) ([]Match, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	if err := checkDimensions(embedding, s.dims); err != nil {
		return nil, err
	}

	// chromem rejects nResults larger than the collection.
	n := s.collection.Count()
	if n == 0 {
		return []Match{}, nil
	}
	k = min(k, n)

	query := make([]float32, len(embedding))
	copy(query, embedding)

	results, err := s.collection.QueryEmbedding(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: nearest query: %w", ErrStore, err)
	}

	matches := make([]Match, 0, len(results))
	for _, res := range results {
		id, err := strconv.ParseInt(res.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad document id %q: %w", ErrStore, res.ID, err)
		}
		matches = append(matches, Match{
			ID:       id,
			Content:  res.Content,
			Distance: math.Max(0, 1-float64(res.Similarity)),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	return matches, nil
}

func (s *MemoryStore) Count(context.Context) (int64, error) {
	return int64(s.collection.Count()), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

var _ VectorStore = (*MemoryStore)(nil)
