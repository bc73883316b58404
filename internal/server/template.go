package server

import (
	"bytes"
	"html/template"

	"github.com/livetemplate/blockkit"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}{{with .SiteTitle}} | {{.}}{{end}}</title>
    {{- with .Description}}
    <meta name="description" content="{{.}}">
    {{- end}}
    {{- with .Image}}
    <meta property="og:image" content="{{.}}">
    {{- end}}
    <link rel="stylesheet" href="/assets/blockkit.css">
</head>
<body>
    <main data-page="{{.Path}}"{{if .LiveReload}} data-live-reload{{end}}>
{{.Content}}
    </main>
    <script src="/assets/blockkit.js" defer></script>
</body>
</html>
`))

type pageData struct {
	Title       string
	SiteTitle   string
	Description string
	Image       string
	Path        string
	LiveReload  bool
	Content     template.HTML
}

// renderPage renders a page to HTML with every block in its initial state.
func (s *Server) renderPage(route *Route) ([]byte, error) {
	page := route.Page
	body := page.Render(blockkit.RenderOptions{
		Registry: s.registry,
		Env:      s.blockEnv(),
	})

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Title:       page.Title,
		SiteTitle:   s.config.Title,
		Description: page.Description,
		Image:       page.Image,
		Path:        route.Pattern,
		LiveReload:  s.config.Features.HotReload,
		Content:     template.HTML(body),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
