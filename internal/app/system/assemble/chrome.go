package assemble

import (
	"context"

	"github.com/dalemusser/stratasite/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Chrome is the site-wide layout content: title, navigation and footer.
type Chrome struct {
	SiteTitle       string
	SiteDescription string
	Nav             []models.NavLink
	FooterLinks     []models.NavLink
	Copyright       string
}

// DefaultChrome is used when the singletons are missing or unreadable.
func DefaultChrome() Chrome {
	return Chrome{SiteTitle: models.DefaultSiteTitle}
}

// Chrome reads the settings, navbar and footer singletons together. A
// singleton that is absent or fails to load leaves its defaults in place;
// the layout always renders.
func (a *Assembler) Chrome(ctx context.Context) Chrome {
	c := DefaultChrome()

	var (
		settings models.Settings
		navbar   models.Navbar
		footer   models.Footer
	)
	var g errgroup.Group
	g.Go(func() error { return a.singleton(ctx, models.TypeSettings, &settings) })
	g.Go(func() error { return a.singleton(ctx, models.TypeNavbar, &navbar) })
	g.Go(func() error { return a.singleton(ctx, models.TypeFooter, &footer) })
	if err := g.Wait(); err != nil {
		a.logger.Warn("site chrome incomplete", zap.Error(err))
	}

	if settings.SiteTitle != "" {
		c.SiteTitle = settings.SiteTitle
	}
	c.SiteDescription = settings.SiteDescription
	c.Nav = navbar.Links
	c.FooterLinks = footer.Links
	c.Copyright = footer.Copyright
	return c
}

func (a *Assembler) singleton(ctx context.Context, docType string, v any) error {
	d, found, err := a.client.ByID(ctx, docType, docType)
	if err != nil || !found {
		return err
	}
	return d.Decode(v)
}
