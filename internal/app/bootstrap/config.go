// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/stratasite/internal/app/store/content"
	sanitystore "github.com/dalemusser/stratasite/internal/app/store/sanity"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "STRATASITE"

// Content source names accepted by content_source.
const (
	SourceSanity = "sanity"
	SourceMongo  = "mongo"
	SourceFiles  = "files"
)

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: content_source, sanity_project_id, etc.
//   - Environment variables: STRATASITE_CONTENT_SOURCE, STRATASITE_SANITY_PROJECT_ID, etc.
//   - Command-line flags: --content_source, --sanity_project_id, etc.
var appConfigKeys = []config.AppKey{
	{Name: "content_source", Default: SourceSanity, Desc: "Content source: 'sanity', 'mongo' or 'files'"},

	// Content project
	{Name: "sanity_project_id", Default: "", Desc: "Content project id (required)"},
	{Name: "sanity_dataset", Default: "production", Desc: "Content dataset (required)"},
	{Name: "sanity_api_version", Default: sanitystore.DefaultAPIVersion, Desc: "Query API date version"},
	{Name: "sanity_token", Default: "", Desc: "Read token; needed for draft preview"},
	{Name: "sanity_use_cdn", Default: true, Desc: "Read published content from the API CDN"},
	{Name: "sanity_timeout", Default: "10s", Desc: "Query API HTTP timeout"},

	// MongoDB mirror
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "stratasite", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "seed_file", Default: "", Desc: "YAML file of documents seeded into an empty mirror"},

	// Markdown directory
	{Name: "content_dir", Default: "./content", Desc: "Markdown content directory (files source)"},
	{Name: "content_watch", Default: false, Desc: "Reload the files source when files change"},
	{Name: "content_reload_interval", Default: "0", Desc: "Periodic reload of the files source (0 disables)"},

	// Draft preview
	{Name: "preview_secret", Default: "", Desc: "Preview secret (leave empty to disable draft preview)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Preview cookie signing key (must be strong in production)"},
	{Name: "session_name", Default: "stratasite-preview", Desc: "Preview cookie name"},
	{Name: "session_domain", Default: "", Desc: "Preview cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "1h", Desc: "Preview session lifetime (e.g., 1h, 30m)"},

	{Name: "csrf_key", Default: "dev-only-csrf-key-please-change-0123456789", Desc: "CSRF token signing key (32+ chars in production)"},

	// Asset storage (files source)
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./content/assets", Desc: "Local path of content assets"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local assets"},

	// S3/CloudFront configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "assets/", Desc: "S3 key prefix"},
	{Name: "storage_cf_url", Default: "", Desc: "CloudFront distribution URL"},
	{Name: "storage_cf_keypair_id", Default: "", Desc: "CloudFront key pair ID"},
	{Name: "storage_cf_key_path", Default: "", Desc: "Path to CloudFront private key file"},

	// Presentation
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Canonical URL prefix"},
	{Name: "events_page_size", Default: 100, Desc: "Number of events listed on /events"},
	{Name: "display_timezone", Default: "UTC", Desc: "IANA time zone for event dates"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single document lookups"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for list and page builder queries"},
	{Name: "content_ping_interval", Default: "30s", Desc: "Background content source ping interval (0 disables)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STRATASITE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		ContentSource: appValues.String("content_source"),

		SanityProjectID:  appValues.String("sanity_project_id"),
		SanityDataset:    appValues.String("sanity_dataset"),
		SanityAPIVersion: appValues.String("sanity_api_version"),
		SanityToken:      appValues.String("sanity_token"),
		SanityUseCDN:     appValues.Bool("sanity_use_cdn"),
		SanityTimeout:    appValues.Duration("sanity_timeout", sanitystore.DefaultTimeout),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SeedFile:         appValues.String("seed_file"),

		ContentDir:            appValues.String("content_dir"),
		ContentWatch:          appValues.Bool("content_watch"),
		ContentReloadInterval: appValues.Duration("content_reload_interval", 0),

		PreviewSecret: appValues.String("preview_secret"),
		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", time.Hour),

		CSRFKey: appValues.String("csrf_key"),

		// File storage
		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		// S3/CloudFront
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageCFURL:       appValues.String("storage_cf_url"),
		StorageCFKeyPairID: appValues.String("storage_cf_keypair_id"),
		StorageCFKeyPath:   appValues.String("storage_cf_key_path"),

		BaseURL:         appValues.String("base_url"),
		EventsPageSize:  appValues.Int("events_page_size"),
		DisplayTimezone: appValues.String("display_timezone"),

		TimeoutShort:        appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium:       appValues.Duration("timeout_medium", 10*time.Second),
		ContentPingInterval: appValues.Duration("content_ping_interval", 30*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Missing project id or dataset, an unknown content source, an invalid
// MongoDB URI for the mongo source, and an unknown display time zone all
// abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := contentConfig(appCfg).Validate(); err != nil {
		logger.Error("content project not configured", zap.Error(err))
		return err
	}

	switch appCfg.ContentSource {
	case SourceSanity, SourceFiles:
	case SourceMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	default:
		return fmt.Errorf("%w: unknown content source %q (want %s, %s or %s)",
			content.ErrConfig, appCfg.ContentSource, SourceSanity, SourceMongo, SourceFiles)
	}

	if _, err := time.LoadLocation(appCfg.DisplayTimezone); err != nil {
		return fmt.Errorf("%w: display timezone %q: %v", content.ErrConfig, appCfg.DisplayTimezone, err)
	}
	if appCfg.EventsPageSize < 1 {
		return fmt.Errorf("%w: events_page_size must be at least 1", content.ErrConfig)
	}
	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.CSRFKey) < 32 {
		return fmt.Errorf("%w: csrf_key must be at least 32 characters in production", content.ErrConfig)
	}

	return nil
}

func contentConfig(appCfg AppConfig) content.Config {
	return content.Config{ProjectID: appCfg.SanityProjectID, Dataset: appCfg.SanityDataset}
}
