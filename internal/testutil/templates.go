package testutil

import (
	"sync"

	"github.com/dalemusser/stratasite/internal/app/resources"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

var (
	templatesOnce sync.Once
	templatesErr  error
)

// MustBootTemplates installs the shared layout and every registered feature
// set into the package-level template engine. Feature sets register
// themselves on import, so a handler test only needs to call this once.
// Later calls reuse the first result.
func MustBootTemplates(t interface{ Fatalf(string, ...any) }) {
	templatesOnce.Do(func() {
		resources.LoadSharedTemplates()
		eng := templates.New(false)
		if templatesErr = eng.Boot(zap.NewNop()); templatesErr == nil {
			templates.UseEngine(eng, zap.NewNop())
		}
	})
	if templatesErr != nil {
		t.Fatalf("boot templates: %v", templatesErr)
	}
}
