package aggregator

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/open-ingest/eventgate/internal/model"
	blobmock "github.com/open-ingest/eventgate/internal/providers/blobProviders/mock_provider"
	"github.com/open-ingest/eventgate/internal/providers/dbProviders/mock_provider"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
)

func newTestAggregator(t *testing.T) (*Aggregator, *mock_provider.MockDbProvider, *blobmock.MockBlobProvider) {
	provider, err := mock_provider.Open("mockdb:", "aggtest")
	assert.NoError(t, err)
	blobs := blobmock.Open()
	return NewAggregator(provider, blobs), provider, blobs
}

func putRecord(t *testing.T, provider *mock_provider.MockDbProvider, userId string, eventType string, ts time.Time) {
	record := model.IngestRecord{
		Id:                ksuid.New().String(),
		Timestamp:         ts.Unix(),
		UserId:            userId,
		EventType:         eventType,
		Data:              map[string]interface{}{"n": 1},
		CreatedAt:         ts.UTC().Format(time.RFC3339),
		AuthenticatedUser: userId,
	}
	assert.NoError(t, provider.PutRecord(&record))
}

func TestWindowExclusion(t *testing.T) {
	agg, provider, _ := newTestAggregator(t)

	end := time.Now()
	putRecord(t, provider, "u1", "click", end.Add(-time.Hour))
	putRecord(t, provider, "u2", "view", end.Add(-6*24*time.Hour))
	// Strictly outside on both sides
	putRecord(t, provider, "u3", "click", end.Add(-8*24*time.Hour))
	putRecord(t, provider, "u4", "view", end.Add(time.Hour))

	report, err := agg.Summarize(end, 7*24*time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, 2, report.Statistics.TotalItems, "out-of-window records excluded from total")
	assert.Equal(t, 2, report.Statistics.UniqueUsers)
	for _, item := range report.TopUsers {
		assert.NotContains(t, []string{"u3", "u4"}, item.Name, "out-of-window user should not be ranked")
	}
}

func TestSummaryCounts(t *testing.T) {
	agg, provider, _ := newTestAggregator(t)

	end := time.Now()
	putRecord(t, provider, "u1", "click", end.Add(-time.Hour))
	putRecord(t, provider, "u1", "view", end.Add(-2*time.Hour))
	putRecord(t, provider, "u2", "click", end.Add(-3*time.Hour))

	report, err := agg.Summarize(end, 7*24*time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, 3, report.Statistics.TotalItems)
	assert.Equal(t, 2, report.Statistics.UniqueUsers)
	assert.Equal(t, 2, report.Statistics.UniqueEventTypes)
}

func TestTopNTieBreak(t *testing.T) {
	agg, provider, _ := newTestAggregator(t)
	agg.TopN = 2

	end := time.Now()
	// C before A in insertion order; the ranking must not depend on that.
	for i := 0; i < 5; i++ {
		putRecord(t, provider, "C", "e", end.Add(-time.Hour))
	}
	for i := 0; i < 5; i++ {
		putRecord(t, provider, "A", "e", end.Add(-time.Hour))
	}
	for i := 0; i < 3; i++ {
		putRecord(t, provider, "B", "e", end.Add(-time.Hour))
	}

	report, err := agg.Summarize(end, 7*24*time.Hour)
	assert.NoError(t, err)
	assert.Len(t, report.TopUsers, 2)
	// Equal counts rank lexicographically, both ahead of the lower count.
	assert.Equal(t, model.TopItem{Name: "A", Count: 5}, report.TopUsers[0])
	assert.Equal(t, model.TopItem{Name: "C", Count: 5}, report.TopUsers[1])
}

func TestMissingSubjectAndEventType(t *testing.T) {
	agg, provider, _ := newTestAggregator(t)

	end := time.Now()
	putRecord(t, provider, "", "click", end.Add(-time.Hour))
	putRecord(t, provider, "u1", "", end.Add(-time.Hour))

	report, err := agg.Summarize(end, 7*24*time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, 2, report.Statistics.TotalItems, "subject-less record still counts toward total")
	assert.Equal(t, 1, report.Statistics.UniqueUsers, "subject-less record skipped from user tally")
	assert.Contains(t, report.TopEventTypes, model.TopItem{Name: "unknown", Count: 1})
}

func TestScanDrainsAllPages(t *testing.T) {
	agg, provider, _ := newTestAggregator(t)
	agg.PageSize = 1

	end := time.Now()
	for i := 0; i < 5; i++ {
		putRecord(t, provider, "u"+strconv.Itoa(i), "e", end.Add(-time.Hour))
	}

	report, err := agg.Summarize(end, 7*24*time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, 5, report.Statistics.TotalItems, "every page of the scan should be consumed")
	assert.Equal(t, 5, report.Statistics.UniqueUsers)
}

func TestRunUploadsReport(t *testing.T) {
	agg, provider, blobs := newTestAggregator(t)

	now := time.Now()
	putRecord(t, provider, "u1", "click", now.Add(-time.Hour))
	putRecord(t, provider, "u2", "view", now.Add(-2*time.Hour))

	report, key, err := agg.Run()
	assert.NoError(t, err)
	generatedAt, err := time.Parse(time.RFC3339, report.GeneratedAt)
	assert.NoError(t, err)
	assert.Equal(t, ObjectKey(generatedAt), key, "key derives from the window end date")

	obj, ok := blobs.GetObject(key)
	assert.True(t, ok, "report object should be stored")
	assert.Equal(t, CReportContentType, obj.ContentType)
	assert.Equal(t, report.GeneratedAt, obj.Metadata["generated-at"])
	assert.Equal(t, "2", obj.Metadata["total-items"])

	var stored model.SummaryReport
	assert.NoError(t, json.Unmarshal(obj.Data, &stored))
	assert.Equal(t, 2, stored.Statistics.TotalItems)
	assert.Equal(t, report.Period, stored.Period)
}

func TestRunAbortsOnScanFailure(t *testing.T) {
	agg, provider, blobs := newTestAggregator(t)
	provider.FailScanRecords = errors.New("scan unavailable")

	_, _, err := agg.Run()
	assert.Error(t, err)
	assert.Equal(t, 0, blobs.ObjectCount(), "no partial report may be written")
}

func TestRunAbortsOnUploadFailure(t *testing.T) {
	agg, provider, blobs := newTestAggregator(t)
	putRecord(t, provider, "u1", "click", time.Now().Add(-time.Hour))
	blobs.FailPutObject = errors.New("bucket unavailable")

	_, _, err := agg.Run()
	assert.Error(t, err)
	assert.Equal(t, 0, blobs.ObjectCount())
}
