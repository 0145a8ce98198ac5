// internal/domain/models/content.go
package models

// Page is a routable page built from page builder blocks.
// Services and the home page share this shape.
type Page struct {
	ID          string     `json:"_id"`
	Type        string     `json:"_type"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Slug        Slug       `json:"slug"`
	PageBuilder []Document `json:"pageBuilder,omitempty"`

	SEOTitle       string `json:"seoTitle,omitempty"`
	SEODescription string `json:"seoDescription,omitempty"`
}

// PageFields is the projection for page, service and homePage queries.
var PageFields = []string{
	"_id", "_type", "title", "description", "slug", "pageBuilder", "seoTitle", "seoDescription",
}

// News categories.
const (
	NewsPressReleases      = "press-releases"
	NewsAnalystRecognition = "analyst-recognition"
	NewsClientStories      = "client-stories"
	NewsInsideStories      = "inside-stories"
	NewsSocialMedia        = "social-media"
	NewsEvents             = "events"
)

// NewsCategory pairs a category value with its display title.
type NewsCategory struct {
	Value string
	Title string
}

// NewsCategories lists the categories in editorial order.
var NewsCategories = []NewsCategory{
	{NewsPressReleases, "Press Release"},
	{NewsAnalystRecognition, "Analyst Recognition"},
	{NewsClientStories, "Client Story"},
	{NewsInsideStories, "Inside Story"},
	{NewsSocialMedia, "Social Media"},
	{NewsEvents, "Event"},
}

// NewsCategoryTitle returns the display title for a category value,
// or the value itself when it is not a known category.
func NewsCategoryTitle(value string) string {
	for _, c := range NewsCategories {
		if c.Value == value {
			return c.Title
		}
	}
	return value
}

// IsValidNewsCategory reports whether value is a known category.
func IsValidNewsCategory(value string) bool {
	for _, c := range NewsCategories {
		if c.Value == value {
			return true
		}
	}
	return false
}

// News is a company news article or announcement.
type News struct {
	ID        string  `json:"_id"`
	Type      string  `json:"_type"`
	Title     string  `json:"title"`
	Category  string  `json:"category"`
	RichText  []Block `json:"richText,omitempty"`
	BodyHTML  string  `json:"bodyHtml,omitempty"`
	CreatedAt string  `json:"_createdAt,omitempty"`
}

// NewsFields is the projection for news queries.
var NewsFields = []string{"_id", "_type", "title", "category", "richText", "bodyHtml", "_createdAt"}

// ClientStory is a client success story page.
type ClientStory struct {
	ID       string  `json:"_id"`
	Type     string  `json:"_type"`
	Title    string  `json:"title"`
	Slug     Slug    `json:"slug"`
	Hero     Hero    `json:"hero"`
	RichText []Block `json:"richText,omitempty"`
	BodyHTML string  `json:"bodyHtml,omitempty"`
}

// Hero is the header section of a client story.
type Hero struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Image    *Image `json:"image,omitempty"`
}

// ClientStoryFields is the projection for client story queries.
var ClientStoryFields = []string{"_id", "_type", "title", "slug", "hero", "richText", "bodyHtml"}

// Investor is an investor or investment firm.
type Investor struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Settings is the global site settings singleton.
type Settings struct {
	SiteTitle       string `json:"siteTitle"`
	SiteDescription string `json:"siteDescription,omitempty"`
}

// DefaultSiteTitle is used when no settings document exists.
const DefaultSiteTitle = "StrataSite"

// NavLink is one entry in the navbar or footer.
type NavLink struct {
	Key   string `json:"_key,omitempty"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Navbar is the site navigation singleton.
type Navbar struct {
	Links []NavLink `json:"links,omitempty"`
}

// Footer is the site footer singleton.
type Footer struct {
	Links     []NavLink `json:"links,omitempty"`
	Copyright string    `json:"copyright,omitempty"`
}

// Block is one Portable Text block of rich text.
type Block struct {
	Type     string    `json:"_type"`
	Key      string    `json:"_key,omitempty"`
	Style    string    `json:"style,omitempty"`
	ListItem string    `json:"listItem,omitempty"`
	Level    int       `json:"level,omitempty"`
	Children []Span    `json:"children,omitempty"`
	MarkDefs []MarkDef `json:"markDefs,omitempty"`
}

// Span is a run of text with decorator or annotation marks.
type Span struct {
	Type  string   `json:"_type"`
	Key   string   `json:"_key,omitempty"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// MarkDef defines an annotation referenced by a span mark.
type MarkDef struct {
	Key          string `json:"_key"`
	Type         string `json:"_type"`
	Href         string `json:"href,omitempty"`
	OpenInNewTab bool   `json:"openInNewTab,omitempty"`
}
