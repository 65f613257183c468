package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"ytquery-web/internal/handlers"
	"ytquery-web/internal/middleware"
	"ytquery-web/internal/websocket"
)

func New(
	searchHandler *handlers.SearchHandler,
	chatHandler *handlers.ChatHandler,
	wsHub *websocket.Hub,
	limiter *middleware.RateLimiter,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Search View ────
	r.Get("/", searchHandler.Page)
	r.With(limiter.Middleware).Post("/", searchHandler.Submit)

	// ──── Chat View ────
	r.Route("/{videoId}", func(r chi.Router) {
		r.Use(middleware.VideoID)

		r.With(limiter.Middleware).Get("/", chatHandler.Page)
		r.Get("/state", chatHandler.State)
		r.With(limiter.Middleware).Post("/messages", chatHandler.PostMessage)
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
