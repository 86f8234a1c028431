package rag

import (
	"context"
	"fmt"
)

// VectorStore holds (id, content, embedding) rows and answers
// nearest-neighbour queries over them.
type VectorStore interface {
	// Insert writes one row and returns its id. A failed insert leaves no row.
	Insert(ctx context.Context, content string, embedding []float32) (int64, error)
	// Nearest returns at most k rows ordered by ascending distance.
	Nearest(ctx context.Context, embedding []float32, k int) ([]Match, error)
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// DistanceMetric selects the pgvector distance used both for the index and
// for queries. Mixing metrics degrades relevance without any error.
type DistanceMetric string

const (
	DistanceCosine DistanceMetric = "cosine"
	DistanceL2     DistanceMetric = "l2"
)

// ParseDistanceMetric validates a configured metric name.
func ParseDistanceMetric(s string) (DistanceMetric, error) {
	switch m := DistanceMetric(s); m {
	case DistanceCosine, DistanceL2:
		return m, nil
	default:
		return "", fmt.Errorf("unknown distance metric %q", s)
	}
}

func (m DistanceMetric) operator() string {
	if m == DistanceL2 {
		return "<->"
	}
	return "<=>"
}

func (m DistanceMetric) opsClass() string {
	if m == DistanceL2 {
		return "vector_l2_ops"
	}
	return "vector_cosine_ops"
}

func checkDimensions(embedding []float32, dims int) error {
	if len(embedding) != dims {
		return fmt.Errorf("%w: embedding has %d dimensions, store expects %d", ErrStore, len(embedding), dims)
	}
	return nil
}
