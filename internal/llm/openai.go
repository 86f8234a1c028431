package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/josinaldojr/portfolio-chat/internal/rag"
)

const (
	defaultOpenAIEmbeddingModel = "text-embedding-3-small"
	defaultOpenAIChatModel      = "gpt-4o-mini"
	defaultMaxTokens            = 200
	defaultEmbedDim             = 1536
)

var errEmptyCompletion = errors.New("model returned empty text")

// OpenAIConfig holds configuration for OpenAIClient. Zero values take the
// defaults.
type OpenAIConfig struct {
	APIKey         string
	OrgID          string
	BaseURL        string
	EmbeddingModel string
	ChatModel      string
	Dimensions     int
	MaxTokens      int
	MaxInputChars  int
	Timeout        time.Duration
	Retry          RetryPolicy
}

// OpenAIClient embeds text and generates chat answers with the OpenAI API.
type OpenAIClient struct {
	client         *openai.Client
	embeddingModel string
	chatModel      string
	dims           int
	maxTokens      int
	maxInputChars  int
	retry          RetryPolicy
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	config := openai.DefaultConfig(cfg.APIKey)
	config.OrgID = cfg.OrgID
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &OpenAIClient{
		client:         openai.NewClientWithConfig(config),
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
		dims:           cfg.Dimensions,
		maxTokens:      cfg.MaxTokens,
		maxInputChars:  cfg.MaxInputChars,
		retry:          cfg.Retry,
	}
	if c.embeddingModel == "" {
		c.embeddingModel = defaultOpenAIEmbeddingModel
	}
	if c.chatModel == "" {
		c.chatModel = defaultOpenAIChatModel
	}
	if c.dims <= 0 {
		c.dims = defaultEmbedDim
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultMaxTokens
	}
	if c.maxInputChars <= 0 {
		c.maxInputChars = DefaultMaxInputChars
	}
	return c
}

// Embed returns the embedding of text. Transient failures are retried per
// the client's RetryPolicy.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	clean := truncateRunes(normalizeWhitespace(text), c.maxInputChars)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty text for embedding", rag.ErrValidation)
	}

	req := openai.EmbeddingRequest{
		Input: []string{clean},
		Model: openai.EmbeddingModel(c.embeddingModel),
	}

	var resp openai.EmbeddingResponse
	err := c.retry.do(ctx, isRetryableOpenAI, func() error {
		var err error
		resp, err = c.client.CreateEmbeddings(ctx, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai embeddings: %w", rag.ErrEmbedding, err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", rag.ErrEmbedding)
	}

	values := resp.Data[0].Embedding
	if len(values) != c.dims {
		return nil, fmt.Errorf("%w: unexpected embedding size %d (expected %d)", rag.ErrEmbedding, len(values), c.dims)
	}
	return values, nil
}

// Generate sends the prompt as a system and a user message and returns the
// first choice unchanged.
func (c *OpenAIClient) Generate(ctx context.Context, prompt rag.Prompt) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
		MaxTokens: c.maxTokens,
	}

	var resp openai.ChatCompletionResponse
	err := c.retry.do(ctx, isRetryableOpenAI, func() error {
		var err error
		resp, err = c.client.CreateChatCompletion(ctx, req)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai chat completion: %w", rag.ErrGeneration, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", rag.ErrGeneration)
	}

	answer := resp.Choices[0].Message.Content
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("%w: %w", rag.ErrGeneration, errEmptyCompletion)
	}
	return answer, nil
}

func isRetryableOpenAI(err error) bool {
	if isTimeout(err) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 0 || retryableStatus(reqErr.HTTPStatusCode)
	}

	return false
}

var (
	_ rag.EmbeddingsClient = (*OpenAIClient)(nil)
	_ rag.LLMClient        = (*OpenAIClient)(nil)
)
