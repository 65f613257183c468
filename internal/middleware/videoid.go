package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ytquery-web/internal/services"
)

// VideoID rejects routes whose {videoId} segment is not a well-formed video id.
func VideoID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !services.IsVideoID(chi.URLParam(r, "videoId")) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Unknown video", r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
