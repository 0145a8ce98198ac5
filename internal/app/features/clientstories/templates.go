// internal/app/features/clientstories/templates.go
package clientstories

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

// FS holds the templates for the client story page.
//
//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "clientstories",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
