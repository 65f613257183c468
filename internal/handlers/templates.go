package handlers

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Each view's page is parsed on its own so neither drags in the other.
var (
	searchPage = template.Must(template.ParseFS(templateFS, "templates/search.html"))
	chatPage   = template.Must(template.ParseFS(templateFS, "templates/chat.html"))
)
