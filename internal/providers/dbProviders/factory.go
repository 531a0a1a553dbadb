package dbProviders

import (
	"strings"

	"github.com/open-ingest/eventgate/internal/providers/dbProviders/mock_provider"
	"github.com/open-ingest/eventgate/internal/providers/dbProviders/mongo_provider"
)

// OpenProvider detects the database URL and returns the appropriate provider
// implementation. If the URL starts with "mockdb:", it returns an in-memory
// provider. Otherwise, it returns a real MongoDB provider.
func OpenProvider(dbUrl string, dbName string) (DbProviderInterface, error) {
	if strings.HasPrefix(dbUrl, "mockdb:") {
		return mock_provider.Open(dbUrl, dbName)
	}
	return mongo_provider.Open(dbUrl, dbName)
}
