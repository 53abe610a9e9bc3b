package http

import (
	"embed"
	"html/template"
)

//go:embed templates/*.tmpl
var templates embed.FS

func pageTemplate() *template.Template {
	return template.Must(template.New(indexTemplate).ParseFS(templates, "templates/"+indexTemplate))
}
