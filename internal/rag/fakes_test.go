package rag

import (
	"context"
	"hash/fnv"
	"sync/atomic"
)

const testDims = 8

// hashEmbedder derives a deterministic vector from the text, so equal texts
// embed identically.
type hashEmbedder struct {
	calls atomic.Int64
	err   error
}

func (e *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	return hashVector(text), nil
}

func hashVector(text string) []float32 {
	vec := make([]float32, testDims)
	for i := range vec {
		h := fnv.New32a()
		_, _ = h.Write([]byte{byte(i)})
		_, _ = h.Write([]byte(text))
		vec[i] = float32(h.Sum32()%1000)/1000 + 0.01
	}
	return vec
}

// fakeLLM records the last prompt and returns a fixed answer.
type fakeLLM struct {
	answer string
	err    error
	last   Prompt
	calls  atomic.Int64
}

func (f *fakeLLM) Generate(_ context.Context, p Prompt) (string, error) {
	f.calls.Add(1)
	f.last = p
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}
