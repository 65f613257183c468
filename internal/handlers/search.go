package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"ytquery-web/internal/search"
	"ytquery-web/internal/services"
)

type SearchHandler struct {
	log *slog.Logger
}

func NewSearchHandler(log *slog.Logger) *SearchHandler {
	return &SearchHandler{log: log}
}

type searchPageData struct {
	URL   string
	Alert string
}

// Page renders the landing view.
func (h *SearchHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.render(w, searchPageData{})
}

// Submit runs the pasted URL through the search view. A valid link redirects to
// its chat page; anything else re-renders the landing page with an alert.
func (h *SearchHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid form body", r))
		return
	}
	rawURL := r.PostForm.Get("url")

	nav := &redirectNavigator{w: w, r: r}
	alert := &pageAlerter{}

	err := search.NewView(nav, alert).Load(rawURL)
	if errors.Is(err, services.ErrInvalidURL) {
		h.log.Debug("rejected url", slog.String("url", rawURL))
		h.render(w, searchPageData{URL: rawURL, Alert: alert.message})
	}
}

func (h *SearchHandler) render(w http.ResponseWriter, data searchPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := searchPage.Execute(w, data); err != nil {
		h.log.Error("render search page", slog.Any("error", err))
	}
}

type redirectNavigator struct {
	w http.ResponseWriter
	r *http.Request
}

func (n *redirectNavigator) Navigate(location string) {
	http.Redirect(n.w, n.r, location, http.StatusSeeOther)
}

type pageAlerter struct {
	message string
}

func (a *pageAlerter) Alert(message string) {
	a.message = message
}
