package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/josinaldojr/portfolio-chat/internal/rag"
)

// errorBody mirrors FastAPI's {"detail": ...} shape, which the frontend reads.
type errorBody struct {
	Detail string `json:"detail"`
}

// statusFor maps pipeline failures onto HTTP status codes.
func statusFor(err error) int {
	var netErr net.Error
	switch {
	case errors.Is(err, rag.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return http.StatusGatewayTimeout
	case errors.Is(err, rag.ErrEmbedding), errors.Is(err, rag.ErrGeneration):
		return http.StatusBadGateway
	case errors.Is(err, rag.ErrStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// detailFor keeps internal error text out of 5xx responses.
func detailFor(status int, op string, err error) string {
	switch status {
	case http.StatusUnprocessableEntity:
		return err.Error()
	case http.StatusGatewayTimeout:
		return op + " failed: upstream service timed out"
	case http.StatusBadGateway:
		return op + " failed: upstream model service unavailable"
	case http.StatusServiceUnavailable:
		return op + " failed: portfolio store unavailable"
	default:
		return op + " failed"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeError logs err and writes the mapped status with a failure detail.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)

	logger := zerolog.Ctx(r.Context())
	ev := logger.Error()
	if status < http.StatusInternalServerError {
		ev = logger.Warn()
	}
	ev.Err(err).Str("op", op).Int("status", status).Msg("request failed")

	writeDetail(w, status, detailFor(status, op, err))
}
