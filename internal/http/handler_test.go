package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/josinaldojr/portfolio-chat/internal/rag"
)

const dims = 4

type stubEmbedder struct {
	err   error
	delay time.Duration
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", rag.ErrEmbedding, ctx.Err())
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return []float32{float32(len(text)), 1, 2, 3}, nil
}

type stubLLM struct {
	answer string
	err    error
}

func (s *stubLLM) Generate(context.Context, rag.Prompt) (string, error) {
	return s.answer, s.err
}

type testServer struct {
	handler http.Handler
	store   *rag.MemoryStore
	emb     *stubEmbedder
	llm     *stubLLM
}

func newTestServer(t *testing.T, opts ...func(*RouterConfig, *Handler)) *testServer {
	t.Helper()

	store, err := rag.NewMemoryStore(dims)
	require.NoError(t, err)

	emb := &stubEmbedder{}
	llm := &stubLLM{answer: "I have worked mostly with Go."}
	svc := rag.NewService(store, emb, llm)

	h := NewHandler(svc, time.Second, 1024)
	cfg := RouterConfig{AllowedOrigins: []string{"*"}, Logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg, h)
	}

	return &testServer{handler: NewRouter(h, cfg), store: store, emb: emb, llm: llm}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *testServer) count(t *testing.T) int64 {
	t.Helper()
	n, err := s.store.Count(context.Background())
	require.NoError(t, err)
	return n
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestChat_EmptyStoreStillAnswers(t *testing.T) {
	s := newTestServer(t)

	rec := s.postJSON("/chat/", `{"message": "What languages do you know?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[rag.ChatResponse](t, rec)
	require.NotEmpty(t, resp.Response)
}

func TestChat_WithoutTrailingSlash(t *testing.T) {
	s := newTestServer(t)

	rec := s.postJSON("/chat", `{"message": "hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestChat_InvalidBodies(t *testing.T) {
	s := newTestServer(t)

	cases := map[string]string{
		"empty body":    ``,
		"not json":      `message=hi`,
		"missing field": `{}`,
		"empty message": `{"message": "  "}`,
		"unknown field": `{"message": "hi", "history": []}`,
		"wrong type":    `{"message": 42}`,
		"trailing data": `{"message": "hi"} {"message": "again"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := s.postJSON("/chat/", body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			require.NotEmpty(t, decode[errorBody](t, rec).Detail)
		})
	}
}

func TestChat_EmbeddingTimeout(t *testing.T) {
	s := newTestServer(t, func(_ *RouterConfig, h *Handler) {
		h.requestTimeout = 20 * time.Millisecond
	})
	s.emb.delay = time.Second

	rec := s.postJSON("/chat/", `{"message": "Where did you study?"}`)

	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	require.Contains(t, decode[errorBody](t, rec).Detail, "chat failed")
	require.Zero(t, s.count(t))
}

func TestChat_UpstreamFailures(t *testing.T) {
	t.Run("embedding", func(t *testing.T) {
		s := newTestServer(t)
		s.emb.err = fmt.Errorf("%w: rate limited", rag.ErrEmbedding)

		rec := s.postJSON("/chat/", `{"message": "hi"}`)
		require.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("generation", func(t *testing.T) {
		s := newTestServer(t)
		s.llm.err = fmt.Errorf("%w: model overloaded", rag.ErrGeneration)

		rec := s.postJSON("/chat/", `{"message": "hi"}`)
		require.Equal(t, http.StatusBadGateway, rec.Code)
		detail := decode[errorBody](t, rec).Detail
		require.Contains(t, detail, "chat failed")
		require.NotContains(t, detail, "overloaded")
	})

	t.Run("unclassified", func(t *testing.T) {
		s := newTestServer(t)
		s.llm.err = errors.New("boom")

		rec := s.postJSON("/chat/", `{"message": "hi"}`)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestAddEntry(t *testing.T) {
	s := newTestServer(t)

	rec := s.postJSON("/add-entry/", `{"content": "I built this site with React and Go."}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[rag.AddEntryResponse](t, rec)
	require.Equal(t, "success", resp.Status)
	require.Equal(t, int64(1), resp.ID)
	require.Equal(t, int64(1), s.count(t))
}

func TestAddEntry_EmptyContent(t *testing.T) {
	s := newTestServer(t)

	rec := s.postJSON("/add-entry/", `{"content": ""}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Zero(t, s.count(t))
}

func TestAddEntry_AdminToken(t *testing.T) {
	s := newTestServer(t, func(cfg *RouterConfig, _ *Handler) {
		cfg.AdminToken = "secret"
	})

	rec := s.postJSON("/add-entry/", `{"content": "x"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/add-entry/", strings.NewReader(`{"content": "x"}`))
	req.Header.Set("Authorization", "Bearer secret")
	rec = s.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(1), s.count(t))

	// Chat stays public.
	rec = s.postJSON("/chat/", `{"message": "hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func multipartRequest(t *testing.T, path, field, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAddFile(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(multipartRequest(t, "/add-file", "file", "about.md", []byte("# About\n\nI like **Go**.")))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[rag.AddFileResponse](t, rec)
	require.Equal(t, "success", resp.Status)
	require.Equal(t, int64(1), resp.ID)
	require.Equal(t, "About\nI like Go.", resp.ContentPreview)
}

func TestAddFile_Rejections(t *testing.T) {
	t.Run("missing file field", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(multipartRequest(t, "/add-file/", "upload", "a.txt", []byte("hi")))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(multipartRequest(t, "/add-file/", "file", "a.txt", []byte{0xff, 0xfe, 0xfd}))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Contains(t, decode[errorBody](t, rec).Detail, "UTF-8")
		require.Zero(t, s.count(t))
	})

	t.Run("too large", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(multipartRequest(t, "/add-file/", "file", "a.txt", bytes.Repeat([]byte("a"), 4096)))
		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		require.Zero(t, s.count(t))
	})
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/chat/", nil)
	req.Header.Set("Origin", "https://portfolio.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := s.do(req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://portfolio.example", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_ListedOriginGetsCredentials(t *testing.T) {
	s := newTestServer(t, func(cfg *RouterConfig, _ *Handler) {
		cfg.AllowedOrigins = []string{"*", "https://mine.example"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/chat/", nil)
	req.Header.Set("Origin", "https://mine.example")
	rec := s.do(req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://mine.example", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	s := newTestServer(t, func(cfg *RouterConfig, _ *Handler) {
		cfg.AllowedOrigins = []string{"https://mine.example"}
	})

	req := httptest.NewRequest(http.MethodPost, "/chat/", strings.NewReader(`{"message": "hi"}`))
	req.Header.Set("Origin", "https://other.example")
	rec := s.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	rec = s.do(httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: x", rag.ErrValidation), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: %w", rag.ErrEmbedding, context.DeadlineExceeded), http.StatusGatewayTimeout},
		{fmt.Errorf("%w: x", rag.ErrEmbedding), http.StatusBadGateway},
		{fmt.Errorf("%w: x", rag.ErrGeneration), http.StatusBadGateway},
		{fmt.Errorf("%w: x", rag.ErrStore), http.StatusServiceUnavailable},
		{errors.New("x"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		require.Equal(t, c.want, statusFor(c.err), c.err.Error())
	}
}
