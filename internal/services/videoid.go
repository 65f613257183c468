package services

import (
	"errors"
	"regexp"
)

// ErrInvalidURL is returned when no video id can be found in the input.
var ErrInvalidURL = errors.New("invalid YouTube URL")

var videoIDRegex = regexp.MustCompile(`(?:v=|youtu\.be/)([a-zA-Z0-9_-]{11})`)

var videoIDForm = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// ExtractVideoID pulls the 11-character id out of a watch URL (v=...) or a youtu.be short link.
func ExtractVideoID(rawURL string) (string, error) {
	matches := videoIDRegex.FindStringSubmatch(rawURL)
	if len(matches) < 2 {
		return "", ErrInvalidURL
	}
	return matches[1], nil
}

// IsVideoID reports whether s has the lexical form of an extracted video id.
func IsVideoID(s string) bool {
	return videoIDForm.MatchString(s)
}
