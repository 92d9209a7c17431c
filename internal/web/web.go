// Package web содержит HTML-шаблоны страниц, встроенные в бинарник.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates разбирает все шаблоны страниц в один набор для gin.Engine.SetHTMLTemplate
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}
