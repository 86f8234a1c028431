package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/josinaldojr/portfolio-chat/internal/rag"
)

const defaultRequestTimeout = 30 * time.Second

// Handler serves the chat and ingestion endpoints.
type Handler struct {
	ragService     *rag.Service
	requestTimeout time.Duration
	maxUploadBytes int64
}

func NewHandler(ragService *rag.Service, requestTimeout time.Duration, maxUploadBytes int64) *Handler {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	return &Handler{
		ragService:     ragService,
		requestTimeout: requestTimeout,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready fails while the vector store is unreachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.ragService.Ready(ctx); err != nil {
		writeError(w, r, "readiness check", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req rag.ChatRequest
	if err := decodeStrict(w, r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "message is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	resp, err := h.ragService.Chat(ctx, req)
	if err != nil {
		writeError(w, r, "chat", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req rag.AddEntryRequest
	if err := decodeStrict(w, r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "content is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	id, err := h.ragService.AddEntry(ctx, req.Content)
	if err != nil {
		writeError(w, r, "add entry", err)
		return
	}

	writeJSON(w, http.StatusOK, rag.AddEntryResponse{Status: "success", ID: id})
}

func (h *Handler) AddFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.maxUploadBytes))
			return
		}
		writeDetail(w, http.StatusUnprocessableEntity, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "could not read uploaded file")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	resp, err := h.ragService.AddDocument(ctx, header.Filename, data)
	if err != nil {
		writeError(w, r, "add file", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// decodeStrict reads exactly one JSON object and rejects unknown fields.
func decodeStrict(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("invalid json body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("invalid json body: unexpected data after object")
	}
	return nil
}
