package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/josinaldojr/portfolio-chat/internal/extract"
)

const previewRunes = 200

// Service wires retrieval, prompt assembly and generation for chat, and
// embedding plus storage for ingestion.
type Service struct {
	store      VectorStore
	embeddings EmbeddingsClient
	llm        LLMClient
	retriever  *Retriever
	assembler  *Assembler
	topK       int
	logger     zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTopK sets how many snippets feed each prompt.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithMaxDistance drops retrieved snippets farther than d from the question.
func WithMaxDistance(d float64) Option {
	return func(s *Service) {
		s.retriever = NewRetriever(s.embeddings, s.store, d)
	}
}

// WithAssembler replaces the default prompt assembler.
func WithAssembler(a *Assembler) Option {
	return func(s *Service) { s.assembler = a }
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(store VectorStore, embeddings EmbeddingsClient, llm LLMClient, opts ...Option) *Service {
	s := &Service{
		store:      store,
		embeddings: embeddings,
		llm:        llm,
		retriever:  NewRetriever(embeddings, store, 0),
		assembler:  NewAssembler(DefaultPersona(), DefaultPromptMaxChars),
		topK:       DefaultTopK,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat answers one visitor message. Each call is independent; nothing is
// remembered between calls.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &s.logger
	}

	matches, err := s.retriever.Retrieve(ctx, req.Message, s.topK)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("matches", len(matches)).Msg("retrieved portfolio context")

	prompt := s.assembler.Assemble(req.Message, Contents(matches))

	answer, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &ChatResponse{Response: answer}, nil
}

// AddEntry embeds content and stores it as a new row.
func (s *Service) AddEntry(ctx context.Context, content string) (int64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, fmt.Errorf("%w: content is required", ErrValidation)
	}

	vec, err := s.embeddings.Embed(ctx, content)
	if err != nil {
		return 0, fmt.Errorf("embed entry: %w", err)
	}

	id, err := s.store.Insert(ctx, content, vec)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("entry_id", id).Int("chars", len(content)).Msg("portfolio entry stored")
	return id, nil
}

// AddDocument extracts the text of an uploaded file and stores it as a
// single entry.
func (s *Service) AddDocument(ctx context.Context, filename string, data []byte) (*AddFileResponse, error) {
	text, err := extract.Text(filename, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrValidation, filename, err)
	}

	id, err := s.AddEntry(ctx, text)
	if err != nil {
		return nil, err
	}

	return &AddFileResponse{
		Status:         "success",
		ID:             id,
		ContentPreview: preview(text, previewRunes),
	}, nil
}

// Ready reports whether the store is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
