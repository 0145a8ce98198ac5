// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig carries the content source selection and its connection
// settings, the draft preview session, and presentation settings.
type AppConfig struct {
	// Content source: "sanity", "mongo" or "files"
	ContentSource string

	// Content project. Required for every source; asset URLs are built from it.
	SanityProjectID  string
	SanityDataset    string
	SanityAPIVersion string
	SanityToken      string        // read token; needed to see drafts in preview
	SanityUseCDN     bool          // read published content from the API CDN
	SanityTimeout    time.Duration // HTTP round trip bound

	// MongoDB mirror store (content_source = "mongo")
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)
	SeedFile         string // YAML documents loaded into an empty mirror at startup

	// Markdown directory (content_source = "files")
	ContentDir            string
	ContentWatch          bool          // reload on file changes
	ContentReloadInterval time.Duration // periodic reload; 0 disables

	// Draft preview
	PreviewSecret string        // shared secret for /api/presentation-draft; empty disables preview
	SessionKey    string        // preview cookie signing key (must be strong in production)
	SessionName   string        // preview cookie name
	SessionDomain string        // cookie domain (blank means current host)
	SessionMaxAge time.Duration // preview session lifetime

	// CSRF protection for the preview exit form
	CSRFKey string

	// Asset storage for the files source (relative image and file paths)
	StorageType      string // "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./content/assets")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Prefix    string
	StorageCFURL       string
	StorageCFKeyPairID string
	StorageCFKeyPath   string

	// Presentation
	BaseURL         string // canonical URL prefix, e.g. "https://example.com"
	EventsPageSize  int    // number of events on /events
	DisplayTimezone string // IANA zone for event date and time labels

	// Handler query timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration

	// Background content ping interval; 0 disables the probe
	ContentPingInterval time.Duration
}
