package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// RouterConfig carries the cross-cutting settings of the router.
type RouterConfig struct {
	AllowedOrigins []string
	AdminToken     string
	Logger         zerolog.Logger
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.Ready).Methods(http.MethodGet)
	handle(r, "/chat", http.HandlerFunc(h.Chat))

	admin := adminAuth(cfg.AdminToken)
	handle(r, "/add-entry", admin(http.HandlerFunc(h.AddEntry)))
	handle(r, "/add-file", admin(http.HandlerFunc(h.AddFile)))

	return requestLogging(cfg.Logger)(cors(cfg.AllowedOrigins)(r))
}

// handle registers a POST route with and without the trailing slash.
// StrictSlash would redirect and drop the request body.
func handle(r *mux.Router, path string, h http.Handler) {
	r.Handle(path, h).Methods(http.MethodPost)
	r.Handle(path+"/", h).Methods(http.MethodPost)
}
