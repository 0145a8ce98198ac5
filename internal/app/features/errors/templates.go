// internal/app/features/errors/templates.go
package errors

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

// FS holds the error page templates.
//
//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "errors",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
