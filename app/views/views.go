// Package views embeds the HTML templates and static assets.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Pages lists the page templates rendered inside the layout.
var Pages = []string{"index", "post", "make-post", "register", "login", "about", "contact", "error"}

var bodyPolicy = bluemonday.UGCPolicy()

// Funcs are the helpers available to every template.
var Funcs = template.FuncMap{
	// safeHTML renders rich text post bodies after stripping scripts and
	// event handlers.
	"safeHTML": func(s string) template.HTML {
		return template.HTML(bodyPolicy.Sanitize(s))
	},
	"year": func() int { return time.Now().Year() },
}

// Load parses every page together with the layout, keyed by page name.
func Load() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(Pages))
	for _, page := range Pages {
		tmpl, err := template.New(page).Funcs(Funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = tmpl
	}
	return templates, nil
}

// Static returns the static asset tree rooted at its top directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
