package dbProviders

import (
	"github.com/open-ingest/eventgate/internal/model"
	"github.com/open-ingest/eventgate/internal/providers/secretProviders"
)

// DbProviderInterface is the record store the ingest handler writes to and the
// aggregator scans. Providers also play the parameter-store role (shared JWT
// secret) so a single database backs the whole pipeline.
type DbProviderInterface interface {
	Name() string
	Check() error
	Close() error

	// PutRecord persists one immutable record as a single atomic put keyed by
	// (Id, Timestamp). At-most-once per invocation; a caller that retries after
	// an error creates a new record with a new identifier.
	PutRecord(record *model.IngestRecord) error

	// ScanRecords returns one page of records whose timestamp lies in window.
	// pageToken is the continuation token from the previous page ("" starts a
	// scan); an empty RecordPage.NextToken means the scan is exhausted. Pages
	// are bounded by limit. There is no bound on the number of pages.
	ScanRecords(window model.ScanWindow, pageToken string, limit int32) (*model.RecordPage, error)

	// CountRecords returns the total number of stored records (all time).
	CountRecords() (int64, error)

	secretProviders.SecretProvider
	secretProviders.SecretWriter

	// ResetDb drops all stored data. Used for testing only.
	ResetDb(initialize bool) error
}
