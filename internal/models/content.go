package models

// VideoMetadata is shown in the chat page header. Every field except VideoID may be empty.
type VideoMetadata struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	ChannelName  string `json:"channel_name"`
	ThumbnailURL string `json:"thumbnail_url"`
	Duration     int    `json:"duration_seconds"`
}

// WatchURL returns the canonical watch page for the video.
func (m VideoMetadata) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + m.VideoID
}
