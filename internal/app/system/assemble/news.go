package assemble

import (
	"context"
	"html/template"
	"time"

	"github.com/dalemusser/stratasite/internal/app/store/content"
	"github.com/dalemusser/stratasite/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"go.uber.org/zap"
)

// NewsView is a news item ready to render.
type NewsView struct {
	ID            string
	Title         string
	Category      string
	CategoryTitle string
	URL           string
	Body          template.HTML
	CreatedAt     time.Time
	DateLabel     string
}

// ClientStoryView is a client story page.
type ClientStoryView struct {
	ID           string
	Title        string
	Slug         string
	URL          string
	HeroTitle    string
	HeroSubtitle string
	HeroImage    *ImageView
	Body         template.HTML
}

// InvestorView is one investor link.
type InvestorView struct {
	Name string
	URL  string
}

// News lists news items newest first within r. A non-empty category limits
// the list to that category; an unknown category matches nothing.
func (a *Assembler) News(ctx context.Context, category string, r content.Range) ([]NewsView, error) {
	q := content.Query{
		Type:   models.TypeNews,
		Fields: models.NewsFields,
		Order:  []content.Order{{Field: "_createdAt", Desc: true}},
		Range:  &r,
	}
	params := content.Params{}
	if category != "" {
		q.Filters = []content.Filter{content.Eq("category", "category")}
		params["category"] = category
	}

	docs, err := a.client.Fetch(ctx, q, params)
	if err != nil {
		return nil, err
	}
	out := make([]NewsView, 0, len(docs))
	for _, d := range docs {
		v, err := a.newsView(d)
		if err != nil {
			a.logger.Warn("skipping undecodable news item", zap.String("id", d.ID()), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// NewsByID resolves one news item. News has no slug, so its URL carries
// the published id.
func (a *Assembler) NewsByID(ctx context.Context, id string) (NewsView, bool, error) {
	if id == "" {
		return NewsView{}, false, nil
	}
	d, found, err := a.client.ByID(ctx, models.TypeNews, id)
	if err != nil || !found {
		return NewsView{}, false, err
	}
	v, err := a.newsView(d)
	if err != nil {
		return NewsView{}, false, err
	}
	return v, true, nil
}

func (a *Assembler) newsView(d models.Document) (NewsView, error) {
	var n models.News
	if err := d.Decode(&n); err != nil {
		return NewsView{}, err
	}
	v := NewsView{
		ID:            models.PublishedID(n.ID),
		Title:         n.Title,
		Category:      n.Category,
		CategoryTitle: models.NewsCategoryTitle(n.Category),
		URL:           models.URLFor(models.TypeNews, models.PublishedID(n.ID)),
		Body:          richBody(n.RichText, n.BodyHTML),
	}
	if t, err := time.Parse(time.RFC3339Nano, n.CreatedAt); err == nil {
		v.CreatedAt = t
		v.DateLabel = t.In(a.loc).Format("January 2, 2006")
	}
	return v, nil
}

// ClientStory resolves the client story at /client-stories/<slug>.
func (a *Assembler) ClientStory(ctx context.Context, slug string) (ClientStoryView, bool, error) {
	d, found, err := a.bySlug(ctx, models.TypeClientStory, slug, models.ClientStoryFields)
	if err != nil || !found {
		return ClientStoryView{}, false, err
	}
	var s models.ClientStory
	if err := d.Decode(&s); err != nil {
		return ClientStoryView{}, false, err
	}
	return ClientStoryView{
		ID:           models.PublishedID(s.ID),
		Title:        s.Title,
		Slug:         s.Slug.Current,
		URL:          models.URLFor(models.TypeClientStory, s.Slug.Current),
		HeroTitle:    firstNonEmpty(s.Hero.Title, s.Title),
		HeroSubtitle: s.Hero.Subtitle,
		HeroImage:    imageView(a.client.Config(), s.Hero.Image, s.Title),
		Body:         richBody(s.RichText, s.BodyHTML),
	}, true, nil
}

// Investors lists investors by name.
func (a *Assembler) Investors(ctx context.Context) ([]InvestorView, error) {
	docs, err := a.client.Fetch(ctx, content.Query{
		Type:   models.TypeInvestor,
		Fields: []string{"name", "url"},
		Order:  []content.Order{{Field: "name"}},
	}, nil)
	if err != nil {
		return nil, err
	}
	out := make([]InvestorView, 0, len(docs))
	for _, d := range docs {
		var inv models.Investor
		if err := d.Decode(&inv); err != nil || inv.Name == "" {
			continue
		}
		out = append(out, InvestorView{Name: inv.Name, URL: inv.URL})
	}
	return out, nil
}

// richBody prefers Portable Text and falls back to pre-rendered HTML.
func richBody(blocks []models.Block, bodyHTML string) template.HTML {
	if len(blocks) > 0 {
		return htmlsanitize.RenderPortableText(blocks)
	}
	return htmlsanitize.HTML(bodyHTML)
}
