package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/quickchess/internal/middleware"
)

// NewRouter builds the HTTP surface: the websocket endpoint plus a
// health probe
func NewRouter(handler *Handler, logger *slog.Logger) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger, middleware.DefaultPanicHandler))

	r.Handle("/ws", handler)
	r.HandleFunc("/api/v1/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
