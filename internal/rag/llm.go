package rag

import "context"

// EmbeddingsClient turns text into a fixed-length vector.
type EmbeddingsClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// LLMClient sends an assembled prompt to a generation model and returns the
// completion text as produced.
type LLMClient interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}
