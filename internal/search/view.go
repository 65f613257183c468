package search

import (
	"ytquery-web/internal/services"
)

// InvalidURLMessage is what the user sees when no video id can be extracted.
const InvalidURLMessage = "Invalid YouTube URL"

// Navigator moves the client to another location.
type Navigator interface {
	Navigate(location string)
}

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(message string)
}

// View is the landing page: it turns a pasted URL into a chat location.
type View struct {
	nav   Navigator
	alert Alerter
}

func NewView(nav Navigator, alert Alerter) *View {
	return &View{nav: nav, alert: alert}
}

// Load extracts the video id from rawURL and navigates to its chat view.
// On failure the user is alerted and no navigation happens.
func (v *View) Load(rawURL string) error {
	videoID, err := services.ExtractVideoID(rawURL)
	if err != nil {
		v.alert.Alert(InvalidURLMessage)
		return err
	}

	v.nav.Navigate(ChatLocation(videoID))
	return nil
}

// ChatLocation is the client-side path of the chat view for videoID.
func ChatLocation(videoID string) string {
	return "/" + videoID
}
