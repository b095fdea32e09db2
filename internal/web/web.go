// Package web holds the HTML pages of the upload form and the result view.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names.
const (
	UploadPage = "upload.html"
	ResultPage = "resultado.html"
)

// Templates parses every embedded page.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}
