package blobProviders

import (
	"github.com/open-ingest/eventgate/internal/providers/blobProviders/gridfs_provider"
	"github.com/open-ingest/eventgate/internal/providers/blobProviders/mock_provider"
	"github.com/open-ingest/eventgate/internal/providers/dbProviders"
	"github.com/open-ingest/eventgate/internal/providers/dbProviders/mongo_provider"
)

// OpenProvider returns the blob store matching the record store: a GridFS
// bucket sharing the Mongo database when the record store is Mongo-backed,
// otherwise an in-memory store.
func OpenProvider(provider dbProviders.DbProviderInterface) (BlobProviderInterface, error) {
	if mp, ok := provider.(*mongo_provider.MongoProvider); ok {
		return gridfs_provider.Open(mp.Database(), "")
	}
	return mock_provider.Open(), nil
}
