// internal/domain/models/event.go
package models

import "time"

// Event is a scheduled happening shown on /events and in page builder blocks.
type Event struct {
	ID               string    `json:"_id"`
	Type             string    `json:"_type"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	DateTime         time.Time `json:"dateTime"`
	Location         string    `json:"location"`
	RegistrationLink string    `json:"registrationLink,omitempty"`
	Slug             Slug      `json:"slug"`
	FeatureImage     *Image    `json:"featureImage,omitempty"`

	SEOTitle       string `json:"seoTitle,omitempty"`
	SEODescription string `json:"seoDescription,omitempty"`
	SEONoIndex     bool   `json:"seoNoIndex,omitempty"`
}

// EventFields is the projection used for every event query.
var EventFields = []string{
	"_id", "_type", "title", "description", "dateTime", "location",
	"registrationLink", "slug", "featureImage", "seoTitle", "seoDescription", "seoNoIndex",
}

// Page builder block types.
const (
	BlockEventsList    = "eventsList"
	BlockFeaturedEvent = "featuredEvent"
	BlockFileDownload  = "fileDownload"
)

// DefaultEventsListTitle is the heading of an events list with no title.
const DefaultEventsListTitle = "Upcoming Events"

// DefaultEventsListMax is the range end used when maxEvents is unset.
const DefaultEventsListMax = 50

// EventsListBlock lists events inside a page.
type EventsListBlock struct {
	Key            string `json:"_key"`
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	ShowPastEvents bool   `json:"showPastEvents,omitempty"`
	MaxEvents      int    `json:"maxEvents,omitempty"`
}

// FeaturedEventBlock highlights one referenced event. Title, BannerText,
// BackgroundImage and Buttons override what the event itself provides.
type FeaturedEventBlock struct {
	Key             string     `json:"_key"`
	Event           *Reference `json:"event,omitempty"`
	Title           string     `json:"title,omitempty"`
	Headline        string     `json:"headline,omitempty"`
	BannerText      []Block    `json:"bannerText,omitempty"`
	BackgroundImage *Image     `json:"backgroundImage,omitempty"`
	Buttons         []Button   `json:"buttons,omitempty"`
}

// DefaultFeaturedBadge labels a featured event block with no headline.
const DefaultFeaturedBadge = "Featured Event"

// FileDownloadBlock offers a downloadable file.
type FileDownloadBlock struct {
	Key          string    `json:"_key"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	File         FileField `json:"file"`
	ButtonText   string    `json:"buttonText,omitempty"`
	ShowFileSize *bool     `json:"showFileSize,omitempty"`
	ShowFileType *bool     `json:"showFileType,omitempty"`
}

// DefaultDownloadButtonText is the button label of a download with no text.
const DefaultDownloadButtonText = "Download File"
