package rag

import (
	"context"
	"fmt"
)

// Retriever embeds a question and fetches the closest stored snippets.
type Retriever struct {
	embeddings  EmbeddingsClient
	store       VectorStore
	maxDistance float64
}

// NewRetriever builds a Retriever. maxDistance > 0 drops matches farther
// than that from the query; 0 keeps everything the store returns.
func NewRetriever(embeddings EmbeddingsClient, store VectorStore, maxDistance float64) *Retriever {
	return &Retriever{embeddings: embeddings, store: store, maxDistance: maxDistance}
}

// Retrieve returns up to k matches, closest first. An empty store yields an
// empty slice and no error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]Match, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	vec, err := r.embeddings.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := r.store.Nearest(ctx, vec, k)
	if err != nil {
		return nil, err
	}

	if r.maxDistance <= 0 {
		return matches, nil
	}

	kept := matches[:0]
	for _, m := range matches {
		if m.Distance <= r.maxDistance {
			kept = append(kept, m)
		}
	}
	return kept, nil
}

// Contents returns the snippet texts in the order given.
func Contents(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Content
	}
	return out
}
