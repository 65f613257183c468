package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	yt "github.com/kkdai/youtube/v2"
	"github.com/redis/go-redis/v9"

	"ytquery-web/internal/models"
)

const defaultOEmbedURL = "https://www.youtube.com/oembed"

// YouTubeService looks up display metadata for the chat page header.
// Lookups are best effort: a failure still yields a usable VideoMetadata.
type YouTubeService struct {
	httpClient *http.Client
	ytClient   *yt.Client
	cache      *redis.Client
	cacheTTL   time.Duration
	oembedURL  string
	log        *slog.Logger

	fetchVideo func(ctx context.Context, videoID string) (*yt.Video, error)
}

// NewYouTubeService creates the lookup service. cache may be nil.
func NewYouTubeService(cache *redis.Client, cacheTTL time.Duration, log *slog.Logger) *YouTubeService {
	s := &YouTubeService{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		ytClient:   &yt.Client{},
		cache:      cache,
		cacheTTL:   cacheTTL,
		oembedURL:  defaultOEmbedURL,
		log:        log,
	}
	s.fetchVideo = s.ytClient.GetVideoContext
	return s
}

// GetVideoMetadata returns title, channel and thumbnail for a video.
func (s *YouTubeService) GetVideoMetadata(ctx context.Context, videoID string) models.VideoMetadata {
	if meta, ok := s.fromCache(ctx, videoID); ok {
		return meta
	}

	meta, err := s.fromPlayer(ctx, videoID)
	if err != nil {
		s.log.Debug("player metadata unavailable, trying oEmbed",
			slog.String("video_id", videoID), slog.Any("error", err))

		meta, err = s.fromOEmbed(ctx, videoID)
		if err != nil {
			s.log.Warn("video metadata lookup failed",
				slog.String("video_id", videoID), slog.Any("error", err))
			return fallbackMetadata(videoID)
		}
	}

	s.toCache(ctx, meta)
	return meta
}

func (s *YouTubeService) fromPlayer(ctx context.Context, videoID string) (models.VideoMetadata, error) {
	video, err := s.fetchVideo(ctx, videoID)
	if err != nil {
		return models.VideoMetadata{}, fmt.Errorf("failed to fetch YouTube video metadata: %w", err)
	}

	meta := models.VideoMetadata{
		VideoID:     videoID,
		Title:       video.Title,
		ChannelName: video.Author,
		Duration:    int(video.Duration.Seconds()),
	}

	// Thumbnails are ordered smallest first.
	if n := len(video.Thumbnails); n > 0 {
		meta.ThumbnailURL = video.Thumbnails[n-1].URL
	}
	if meta.ThumbnailURL == "" {
		meta.ThumbnailURL = defaultThumbnail(videoID)
	}

	return meta, nil
}

func (s *YouTubeService) fromOEmbed(ctx context.Context, videoID string) (models.VideoMetadata, error) {
	q := url.Values{}
	q.Set("url", "https://www.youtube.com/watch?v="+videoID)
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.oembedURL+"?"+q.Encode(), nil)
	if err != nil {
		return models.VideoMetadata{}, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.VideoMetadata{}, fmt.Errorf("oEmbed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.VideoMetadata{}, fmt.Errorf("oEmbed status %d", resp.StatusCode)
	}

	var oembed struct {
		Title        string `json:"title"`
		AuthorName   string `json:"author_name"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oembed); err != nil {
		return models.VideoMetadata{}, fmt.Errorf("oEmbed decode: %w", err)
	}

	meta := models.VideoMetadata{
		VideoID:      videoID,
		Title:        oembed.Title,
		ChannelName:  oembed.AuthorName,
		ThumbnailURL: oembed.ThumbnailURL,
	}
	if meta.ThumbnailURL == "" {
		meta.ThumbnailURL = defaultThumbnail(videoID)
	}
	return meta, nil
}

func (s *YouTubeService) fromCache(ctx context.Context, videoID string) (models.VideoMetadata, bool) {
	if s.cache == nil {
		return models.VideoMetadata{}, false
	}

	raw, err := s.cache.Get(ctx, cacheKey(videoID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("metadata cache read failed", slog.Any("error", err))
		}
		return models.VideoMetadata{}, false
	}

	var meta models.VideoMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return models.VideoMetadata{}, false
	}
	return meta, true
}

func (s *YouTubeService) toCache(ctx context.Context, meta models.VideoMetadata) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(meta.VideoID), data, s.cacheTTL).Err(); err != nil {
		s.log.Warn("metadata cache write failed", slog.Any("error", err))
	}
}

func cacheKey(videoID string) string {
	return "video_meta:" + videoID
}

func defaultThumbnail(videoID string) string {
	return "https://img.youtube.com/vi/" + videoID + "/hqdefault.jpg"
}

func fallbackMetadata(videoID string) models.VideoMetadata {
	return models.VideoMetadata{
		VideoID:      videoID,
		Title:        "YouTube Video",
		ThumbnailURL: defaultThumbnail(videoID),
	}
}
