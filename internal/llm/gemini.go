package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/josinaldojr/portfolio-chat/internal/rag"
)

const (
	defaultGeminiEmbeddingModel = "gemini-embedding-001"
	defaultGeminiChatModel      = "gemini-2.5-flash"
)

// GeminiConfig holds configuration for GeminiClient.
type GeminiConfig struct {
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	Dimensions     int
	MaxTokens      int
	MaxInputChars  int
	Timeout        time.Duration
	Retry          RetryPolicy
}

// GeminiClient embeds text and generates answers with the Gemini API.
type GeminiClient struct {
	client         *genai.Client
	embeddingModel string
	chatModel      string
	dims           int
	maxTokens      int
	maxInputChars  int
	retry          RetryPolicy
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY or GOOGLE_API_KEY")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	g := &GeminiClient{
		client:         c,
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
		dims:           cfg.Dimensions,
		maxTokens:      cfg.MaxTokens,
		maxInputChars:  cfg.MaxInputChars,
		retry:          cfg.Retry,
	}
	if g.embeddingModel == "" {
		g.embeddingModel = defaultGeminiEmbeddingModel
	}
	if g.chatModel == "" {
		g.chatModel = defaultGeminiChatModel
	}
	if g.dims <= 0 {
		g.dims = defaultEmbedDim
	}
	if g.maxTokens <= 0 {
		g.maxTokens = defaultMaxTokens
	}
	if g.maxInputChars <= 0 {
		g.maxInputChars = DefaultMaxInputChars
	}
	return g, nil
}

func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	clean := truncateRunes(normalizeWhitespace(text), g.maxInputChars)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty text for embedding", rag.ErrValidation)
	}

	var resp *genai.EmbedContentResponse
	err := g.retry.do(ctx, isRetryableGemini, func() error {
		var err error
		resp, err = g.client.Models.EmbedContent(
			ctx,
			g.embeddingModel,
			genai.Text(clean),
			&genai.EmbedContentConfig{
				OutputDimensionality: genai.Ptr(int32(g.dims)),
			},
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini embed: %w", rag.ErrEmbedding, err)
	}

	if resp == nil || len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", rag.ErrEmbedding)
	}

	values := resp.Embeddings[0].Values
	if len(values) != g.dims {
		return nil, fmt.Errorf("%w: unexpected embedding size %d (expected %d)", rag.ErrEmbedding, len(values), g.dims)
	}
	return values, nil
}

func (g *GeminiClient) Generate(ctx context.Context, prompt rag.Prompt) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.Text(prompt.System)[0],
		MaxOutputTokens:   int32(g.maxTokens),
	}

	var resp *genai.GenerateContentResponse
	err := g.retry.do(ctx, isRetryableGemini, func() error {
		var err error
		resp, err = g.client.Models.GenerateContent(ctx, g.chatModel, genai.Text(prompt.User), cfg)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: gemini generateContent: %w", rag.ErrGeneration, err)
	}

	if resp == nil {
		return "", fmt.Errorf("%w: empty response from gemini", rag.ErrGeneration)
	}

	txt := resp.Text()
	if strings.TrimSpace(txt) == "" {
		return "", fmt.Errorf("%w: %w", rag.ErrGeneration, errEmptyCompletion)
	}
	return txt, nil
}

func isRetryableGemini(err error) bool {
	if isTimeout(err) {
		return true
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}
	return false
}

var (
	_ rag.EmbeddingsClient = (*GeminiClient)(nil)
	_ rag.LLMClient        = (*GeminiClient)(nil)
)
