// internal/app/resources/resources.go
package resources

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/dalemusser/waffle/pantry/templates"
)

// Embed shared template files (layout, page builder blocks).
//
//go:embed templates/*.gohtml
var sharedFS embed.FS

//go:embed assets/css/*.css assets/js/*.js
var assetsFS embed.FS

// assetMaxAge is sent with embedded assets; they change only on deploy.
const assetMaxAge = "public, max-age=3600"

var registerOnce sync.Once

// LoadSharedTemplates registers the shared set (layout, head, nav, footer,
// preview banner and block partials) with the waffle template engine.
// This must be called before the engine boots in BuildHandler.
func LoadSharedTemplates() {
	registerOnce.Do(func() {
		templates.Register(templates.Set{
			Name:     "shared",
			FS:       sharedFS,
			Patterns: []string{"templates/*.gohtml"},
		})
	})
}

// AssetsHandler serves the embedded site stylesheet and script under prefix.
// Only existing files get the cache header; misses and directories do not.
func AssetsHandler(prefix string) http.Handler {
	sub, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic("failed to get assets subdirectory: " + err.Error())
	}

	files := http.StripPrefix(prefix, http.FileServer(http.FS(sub)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(r.URL.Path, prefix)), "/")
		if fi, err := fs.Stat(sub, name); err == nil && fi.Mode().IsRegular() {
			w.Header().Set("Cache-Control", assetMaxAge)
		}
		files.ServeHTTP(w, r)
	})
}
