package rag

import "errors"

// Failure classes surfaced by the pipeline. Concrete errors wrap one of
// these with %w so the HTTP layer can map them with errors.Is.
var (
	ErrEmbedding  = errors.New("embedding failure")
	ErrGeneration = errors.New("generation failure")
	ErrStore      = errors.New("store failure")
	ErrValidation = errors.New("validation failure")
)
