package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ytquery-web/internal/services"
)

type recorder struct {
	locations []string
	alerts    []string
}

func (r *recorder) Navigate(location string) { r.locations = append(r.locations, location) }
func (r *recorder) Alert(message string)     { r.alerts = append(r.alerts, message) }

func TestView_LoadNavigates(t *testing.T) {
	rec := &recorder{}
	v := NewView(rec, rec)

	err := v.Load("https://www.youtube.com/watch?v=dQw4w9WgXcQ")

	assert.NoError(t, err)
	assert.Equal(t, []string{"/dQw4w9WgXcQ"}, rec.locations)
	assert.Empty(t, rec.alerts)
}

func TestView_LoadShortLink(t *testing.T) {
	rec := &recorder{}
	v := NewView(rec, rec)

	assert.NoError(t, v.Load("https://youtu.be/dQw4w9WgXcQ?t=10"))
	assert.Equal(t, []string{"/dQw4w9WgXcQ"}, rec.locations)
}

func TestView_LoadInvalidAlerts(t *testing.T) {
	rec := &recorder{}
	v := NewView(rec, rec)

	err := v.Load("not a url")

	assert.ErrorIs(t, err, services.ErrInvalidURL)
	assert.Equal(t, []string{InvalidURLMessage}, rec.alerts)
	assert.Empty(t, rec.locations)
}
