// Package preview renders a stored project as a standalone HTML page.
package preview

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/aibuilder/aibuilder-backend/internal/projects/domain"
)

//go:embed page.html.tmpl
var pageSource string

var page = template.Must(template.New("page").Parse(pageSource))

const emptyBody = `<div class="p-8 text-center"><h1 class="text-2xl font-bold">Generated WebApp</h1><p>Your AI-generated web application preview.</p></div>`

type pageData struct {
	Title string
	CSS   template.CSS
	HTML  template.HTML
	JS    template.JS
}

// Render wraps the project's generated code in a page that loads Tailwind
// from its CDN. The title is escaped; the code fields are trusted as authored.
func Render(p *domain.Project) ([]byte, error) {
	body := p.HTMLCode
	if body == "" {
		body = emptyBody
	}

	var buf bytes.Buffer
	err := page.Execute(&buf, pageData{
		Title: p.Title,
		CSS:   template.CSS(p.CSSCode),
		HTML:  template.HTML(body),
		JS:    template.JS(p.JSCode),
	})
	if err != nil {
		return nil, fmt.Errorf("render preview %s: %w", p.ID, err)
	}
	return buf.Bytes(), nil
}
