// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/stratasite/internal/app/store/content"
	markdownstore "github.com/dalemusser/stratasite/internal/app/store/markdown"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// This struct is created in ConnectDB and passed to subsequent lifecycle
// hooks: EnsureSchema, Startup, BuildHandler, and Shutdown.
//
// Exactly one content source backs Content. The MongoDB fields are set only
// for the mongo source and Files only for the files source.
type DBDeps struct {
	// MongoDB client and database (mongo source only)
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// FileStorage serves assets referenced by markdown content.
	FileStorage storage.Store

	// Content is the content repository client every handler reads through.
	Content *content.Client

	// Files is the markdown directory source (files source only).
	Files *markdownstore.Store
}
