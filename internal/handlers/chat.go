package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ytquery-web/internal/chat"
	"ytquery-web/internal/models"
)

type metadataLookup interface {
	GetVideoMetadata(ctx context.Context, videoID string) models.VideoMetadata
}

type ChatHandler struct {
	registry *chat.Registry
	youtube  metadataLookup
	log      *slog.Logger
}

func NewChatHandler(registry *chat.Registry, youtube metadataLookup, log *slog.Logger) *ChatHandler {
	return &ChatHandler{
		registry: registry,
		youtube:  youtube,
		log:      log,
	}
}

type chatPageData struct {
	VideoID  string
	ViewID   string
	Meta     models.VideoMetadata
	Snapshot chat.Snapshot
}

// Page renders the chat view named by the view query parameter, or opens a
// fresh one for the video. A fresh view starts loading the video's context
// right away.
func (h *ChatHandler) Page(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")

	id, view := h.openOrResume(r, videoID)
	meta := h.youtube.GetVideoMetadata(r.Context(), videoID)

	data := chatPageData{
		VideoID:  videoID,
		ViewID:   id.String(),
		Meta:     meta,
		Snapshot: view.Snapshot(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := chatPage.Execute(w, data); err != nil {
		h.log.Error("render chat page", slog.Any("error", err))
	}
}

// State returns the current snapshot of a view as JSON.
func (h *ChatHandler) State(w http.ResponseWriter, r *http.Request) {
	view, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view.Snapshot())
}

// PostMessage submits a question to a view. JSON callers get the snapshot
// holding the user's message; the reply arrives later over the socket.
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	view, ok := h.lookup(w, r)
	if !ok {
		return
	}

	question, err := readQuestion(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(question) == "" {
		writeJSON(w, http.StatusBadRequest, validationResp(map[string]string{"question": "required"}, r))
		return
	}

	view.Submit(r.Context(), question)

	// Plain form posts come from pages without scripts; send them back to the page.
	if !isJSON(r) {
		http.Redirect(w, r, "/"+view.VideoID()+"?view="+r.URL.Query().Get("view"), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusAccepted, view.Snapshot())
}

func (h *ChatHandler) openOrResume(r *http.Request, videoID string) (uuid.UUID, *chat.View) {
	if id, err := uuid.Parse(r.URL.Query().Get("view")); err == nil {
		if view, ok := h.registry.Get(id, videoID); ok {
			return id, view
		}
	}
	return h.registry.Open(r.Context(), videoID)
}

func (h *ChatHandler) lookup(w http.ResponseWriter, r *http.Request) (*chat.View, bool) {
	viewID, err := uuid.Parse(r.URL.Query().Get("view"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid view ID", r))
		return nil, false
	}

	view, ok := h.registry.Get(viewID, chi.URLParam(r, "videoId"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Chat view not found", r))
		return nil, false
	}
	return view, true
}

func isJSON(r *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mediaType == "application/json"
}

func readQuestion(r *http.Request) (string, error) {
	if isJSON(r) {
		var req models.QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		return req.Question, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostForm.Get("question"), nil
}
