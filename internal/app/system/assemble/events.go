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

const (
	dateLabelLayout = "Monday, January 2, 2006"
	timeLabelLayout = "3:04 PM"
)

// EventView is the render-ready form of an event.
type EventView struct {
	ID               string
	Title            string
	Description      string
	DateTime         time.Time
	DateTimeISO      string
	DateLabel        string
	TimeLabel        string
	Location         string
	RegistrationLink string
	Slug             string
	URL              string
	FeatureImage     *ImageView
	IsUpcoming       bool

	SEOTitle       string
	SEODescription string
	NoIndex        bool
}

// MetaTitle is the document title for the event page.
func (e EventView) MetaTitle() string {
	if e.SEOTitle != "" {
		return e.SEOTitle
	}
	return e.Title
}

// MetaDescription is the meta description for the event page.
func (e EventView) MetaDescription() string {
	if e.SEODescription != "" {
		return e.SEODescription
	}
	return e.Description
}

// EventList is an ordered run of events. When past events were requested,
// Upcoming and Past partition Events, each keeping its order.
type EventList struct {
	Events   []EventView
	Upcoming []EventView
	Past     []EventView
}

// EventBySlug resolves the event whose slug is slug. found is false when no
// published event has that slug.
func (a *Assembler) EventBySlug(ctx context.Context, slug string) (EventView, bool, error) {
	d, found, err := a.bySlug(ctx, models.TypeEvent, slug, models.EventFields)
	if err != nil || !found {
		return EventView{}, false, err
	}
	ev, ok := a.eventView(d, a.now())
	if !ok {
		return EventView{}, false, nil
	}
	return ev, true, nil
}

// ListEvents returns events newest first within r. Without includePast,
// events at or before now are excluded before slicing, so r counts
// upcoming events only.
func (a *Assembler) ListEvents(ctx context.Context, r content.Range, includePast bool) (EventList, error) {
	now := a.now()
	q := content.Query{
		Type:   models.TypeEvent,
		Fields: models.EventFields,
		Order:  []content.Order{{Field: "dateTime", Desc: true}},
		Range:  &r,
	}
	params := content.Params{}
	if !includePast {
		q.Filters = []content.Filter{content.After("dateTime", "now")}
		params["now"] = content.FormatTime(now)
	}

	docs, err := a.client.Fetch(ctx, q, params)
	if err != nil {
		return EventList{}, err
	}

	list := EventList{Events: make([]EventView, 0, len(docs))}
	for _, d := range docs {
		if ev, ok := a.eventView(d, now); ok {
			list.Events = append(list.Events, ev)
		}
	}
	if includePast {
		list.Upcoming, list.Past = SplitByTime(list.Events, now)
	} else {
		list.Upcoming = list.Events
	}
	return list, nil
}

// SplitByTime partitions events into those after now and those at or
// before now, preserving order.
func SplitByTime(events []EventView, now time.Time) (upcoming, past []EventView) {
	for _, e := range events {
		if e.DateTime.After(now) {
			upcoming = append(upcoming, e)
		} else {
			past = append(past, e)
		}
	}
	return upcoming, past
}

// FeaturedEventView is a featured event block merged with its event.
type FeaturedEventView struct {
	Key             string
	Badge           string
	Title           string
	Event           EventView
	BannerHTML      template.HTML
	BackgroundImage *ImageView
	Buttons         []ButtonView
}

// ButtonView is a call to action link.
type ButtonView struct {
	Text     string
	Href     string
	Variant  string
	External bool
}

// FeaturedEvent resolves the block's event reference and applies the
// block's overrides. It returns nil when the reference is missing or does
// not resolve to a published event; the block then renders nothing.
func (a *Assembler) FeaturedEvent(ctx context.Context, blk models.FeaturedEventBlock) (*FeaturedEventView, error) {
	if !blk.Event.Resolvable() {
		return nil, nil
	}
	d, found, err := a.client.ByID(ctx, models.TypeEvent, blk.Event.Ref)
	if err != nil {
		return nil, err
	}
	if !found {
		a.logger.Debug("featured event reference does not resolve",
			zap.String("block", blk.Key),
			zap.String("ref", blk.Event.Ref))
		return nil, nil
	}
	ev, ok := a.eventView(d, a.now())
	if !ok {
		return nil, nil
	}
	return a.mergeFeatured(blk, ev), nil
}

func (a *Assembler) mergeFeatured(blk models.FeaturedEventBlock, ev EventView) *FeaturedEventView {
	v := &FeaturedEventView{
		Key:             blk.Key,
		Badge:           blk.Headline,
		Title:           ev.Title,
		Event:           ev,
		BackgroundImage: ev.FeatureImage,
	}
	if v.Badge == "" {
		v.Badge = models.DefaultFeaturedBadge
	}
	if blk.Title != "" {
		v.Title = blk.Title
	}
	if len(blk.BannerText) > 0 {
		v.BannerHTML = htmlsanitize.RenderPortableText(blk.BannerText)
	} else {
		v.BannerHTML = htmlsanitize.Text(ev.Description)
	}
	if img := imageView(a.client.Config(), blk.BackgroundImage, ev.Title); img != nil {
		v.BackgroundImage = img
	}

	if len(blk.Buttons) > 0 {
		for _, b := range blk.Buttons {
			if b.Href == "" || b.Text == "" {
				continue
			}
			v.Buttons = append(v.Buttons, ButtonView{
				Text:     b.Text,
				Href:     b.Href,
				Variant:  b.Variant,
				External: b.OpenInNewTab,
			})
		}
		return v
	}

	v.Buttons = append(v.Buttons, ButtonView{Text: "Learn More", Href: ev.URL, Variant: "default"})
	if ev.RegistrationLink != "" {
		v.Buttons = append(v.Buttons, ButtonView{
			Text:     "Register Now",
			Href:     ev.RegistrationLink,
			Variant:  "outline",
			External: true,
		})
	}
	return v
}

// eventView decodes d. A record that cannot be decoded is a data problem,
// logged and skipped.
func (a *Assembler) eventView(d models.Document, now time.Time) (EventView, bool) {
	d = d.Clone()
	if s, ok := d["dateTime"].(string); ok {
		if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
			a.logger.Warn("event has an unparseable dateTime",
				zap.String("id", d.ID()),
				zap.String("dateTime", s))
			delete(d, "dateTime")
		}
	}

	var e models.Event
	if err := d.Decode(&e); err != nil {
		a.logger.Warn("skipping undecodable event", zap.String("id", d.ID()), zap.Error(err))
		return EventView{}, false
	}

	ev := EventView{
		ID:               models.PublishedID(e.ID),
		Title:            e.Title,
		Description:      e.Description,
		DateTime:         e.DateTime,
		Location:         e.Location,
		RegistrationLink: e.RegistrationLink,
		Slug:             e.Slug.Current,
		URL:              models.URLFor(models.TypeEvent, e.Slug.Current),
		FeatureImage:     imageView(a.client.Config(), e.FeatureImage, e.Title),
		IsUpcoming:       e.DateTime.After(now),
		SEOTitle:         e.SEOTitle,
		SEODescription:   e.SEODescription,
		NoIndex:          e.SEONoIndex,
	}
	if !e.DateTime.IsZero() {
		local := e.DateTime.In(a.loc)
		ev.DateTimeISO = e.DateTime.UTC().Format(time.RFC3339)
		ev.DateLabel = local.Format(dateLabelLayout)
		ev.TimeLabel = local.Format(timeLabelLayout)
	}
	return ev, true
}
