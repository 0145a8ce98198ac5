// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/stratasite/internal/app/store/content"
	markdownstore "github.com/dalemusser/stratasite/internal/app/store/markdown"
	mirrorstore "github.com/dalemusser/stratasite/internal/app/store/mirror"
	sanitystore "github.com/dalemusser/stratasite/internal/app/store/sanity"
	"github.com/dalemusser/stratasite/internal/app/system/indexes"
	"github.com/dalemusser/stratasite/internal/app/system/seeding"
	"github.com/dalemusser/stratasite/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// ConnectDB builds the content source selected by content_source and the
// content client over it.
//
// WAFFLE calls this after configuration is loaded but before EnsureSchema and
// Startup. The sanity source needs no persistent connection; the mongo source
// connects a pooled client; the files source parses the content directory.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	var deps DBDeps

	store, err := newFileStorage(ctx, appCfg, logger)
	if err != nil {
		return DBDeps{}, err
	}
	deps.FileStorage = store

	var src content.Source
	switch appCfg.ContentSource {
	case SourceSanity:
		src, err = sanitystore.New(sanitystore.Config{
			ProjectID:  appCfg.SanityProjectID,
			Dataset:    appCfg.SanityDataset,
			APIVersion: appCfg.SanityAPIVersion,
			Token:      appCfg.SanityToken,
			UseCDN:     appCfg.SanityUseCDN,
			Timeout:    appCfg.SanityTimeout,
		}, logger)
		if err != nil {
			return DBDeps{}, fmt.Errorf("failed to initialize content API source: %w", err)
		}
		logger.Info("using content API source",
			zap.String("project_id", appCfg.SanityProjectID),
			zap.String("dataset", appCfg.SanityDataset),
			zap.Bool("cdn", appCfg.SanityUseCDN),
			zap.Bool("token", appCfg.SanityToken != ""),
		)

	case SourceMongo:
		// Configure MongoDB connection pool
		poolCfg := wafflemongo.DefaultPoolConfig()
		if appCfg.MongoMaxPoolSize > 0 {
			poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
		}
		if appCfg.MongoMinPoolSize > 0 {
			poolCfg.MinPoolSize = appCfg.MongoMinPoolSize
		}

		client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, poolCfg)
		if err != nil {
			return DBDeps{}, err
		}
		deps.MongoClient = client
		deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
		src = mirrorstore.New(deps.MongoDatabase)

		logger.Info("connected to MongoDB",
			zap.String("database", appCfg.MongoDatabase),
			zap.Uint64("max_pool_size", poolCfg.MaxPoolSize),
			zap.Uint64("min_pool_size", poolCfg.MinPoolSize),
		)

	case SourceFiles:
		files, err := markdownstore.New(markdownstore.Config{
			Dir:    appCfg.ContentDir,
			Assets: store,
		}, logger)
		if err != nil {
			return DBDeps{}, fmt.Errorf("failed to load content directory: %w", err)
		}
		deps.Files = files
		src = files
		logger.Info("using markdown content directory",
			zap.String("dir", appCfg.ContentDir),
			zap.Int("documents", files.Len()),
		)

	default:
		return DBDeps{}, fmt.Errorf("unknown content source: %s", appCfg.ContentSource)
	}

	client, err := content.NewClient(contentConfig(appCfg), src, logger)
	if err != nil {
		return DBDeps{}, err
	}
	deps.Content = client

	return deps, nil
}

// newFileStorage initializes the asset store behind markdown image and file
// references.
func newFileStorage(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (storage.Store, error) {
	switch appCfg.StorageType {
	case "s3":
		store, err := storage.NewS3(ctx, storage.S3Config{
			Region:                   appCfg.StorageS3Region,
			Bucket:                   appCfg.StorageS3Bucket,
			Prefix:                   appCfg.StorageS3Prefix,
			CloudFrontURL:            appCfg.StorageCFURL,
			CloudFrontKeyPairID:      appCfg.StorageCFKeyPairID,
			CloudFrontPrivateKeyPath: appCfg.StorageCFKeyPath,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		logger.Info("initialized S3/CloudFront asset storage",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.String("prefix", appCfg.StorageS3Prefix),
		)
		return store, nil
	case "local", "":
		store, err := storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		logger.Info("initialized local asset storage",
			zap.String("path", appCfg.StorageLocalPath),
			zap.String("url", appCfg.StorageLocalURL),
		)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", appCfg.StorageType)
	}
}

// EnsureSchema prepares the content mirror when the mongo source is in use.
// The other sources have no schema and this is a no-op for them.
//
// The context has a timeout based on coreCfg.IndexBootTimeout, so long-running
// seeding respects context cancellation.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase
	if db == nil {
		return nil
	}

	// Ensure collections exist and attach JSON-Schema validators.
	// This runs first so indexes can be created on existing collections.
	logger.Info("ensuring collections and validators")
	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("failed to ensure validators", zap.Error(err))
		return err
	}

	// Slug uniqueness is enforced by a partial unique index.
	logger.Info("ensuring database indexes")
	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("failed to ensure indexes", zap.Error(err))
		return err
	}

	if appCfg.SeedFile != "" {
		logger.Info("seeding content mirror", zap.String("file", appCfg.SeedFile))
		if err := seeding.SeedAll(ctx, db, appCfg.SeedFile, logger); err != nil {
			logger.Error("failed to seed content mirror", zap.Error(err))
			return err
		}
	}

	logger.Info("database schema ensured successfully")
	return nil
}
