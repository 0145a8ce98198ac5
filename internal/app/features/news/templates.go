// internal/app/features/news/templates.go
package news

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

// FS holds the templates for the news list and article pages.
//
//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "news",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
