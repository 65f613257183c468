package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ytquery-web/internal/models"
)

// ErrRequestFailed wraps every transport, status or decoding failure from the backend.
var ErrRequestFailed = errors.New("backend request failed")

// BackendClient talks to the external question-answering service.
type BackendClient struct {
	httpClient *http.Client
	baseURL    string
	log        *slog.Logger
}

// NewBackendClient builds a client rooted at baseURL. A zero timeout leaves the
// http.Client default in place (no deadline).
func NewBackendClient(baseURL string, timeout time.Duration, log *slog.Logger) *BackendClient {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &BackendClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		log:        log,
	}
}

// Load asks the backend to prime its context for the given video.
func (c *BackendClient) Load(ctx context.Context, videoID string) (*models.APIResponse, error) {
	const op = "BackendClient.Load"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("load", videoID), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrRequestFailed, err)
	}

	return c.do(op, req)
}

// Query posts a follow-up question about the given video.
func (c *BackendClient) Query(ctx context.Context, videoID, question string) (*models.APIResponse, error) {
	const op = "BackendClient.Query"

	body, err := json.Marshal(models.QueryRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("query", videoID), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(op, req)
}

func (c *BackendClient) endpoint(action, videoID string) string {
	return c.baseURL + action + "/" + url.PathEscape(videoID)
}

func (c *BackendClient) do(op string, req *http.Request) (*models.APIResponse, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	c.log.Debug("backend call",
		slog.String("op", op),
		slog.String("url", req.URL.String()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%s: %w: status %d", op, ErrRequestFailed, resp.StatusCode)
	}

	var out models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: %w: decode body: %v", op, ErrRequestFailed, err)
	}

	return &out, nil
}
