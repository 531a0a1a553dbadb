package mock_provider

import (
	"strconv"
	"testing"
	"time"

	"github.com/open-ingest/eventgate/internal/model"
	"github.com/stretchr/testify/assert"
)

func seedRecords(t *testing.T, m *MockDbProvider, n int, ts int64) {
	for i := 0; i < n; i++ {
		err := m.PutRecord(&model.IngestRecord{
			Id:        "rec-" + strconv.Itoa(i),
			Timestamp: ts,
			UserId:    "u" + strconv.Itoa(i),
			EventType: "e",
		})
		assert.NoError(t, err)
	}
}

func TestScanPagination(t *testing.T) {
	m, err := Open("mockdb:", "")
	assert.NoError(t, err)
	assert.Equal(t, CDbName, m.Name())

	now := time.Now().Unix()
	seedRecords(t, m, 5, now)

	window := model.ScanWindow{Start: now - 10, End: now + 10}

	var collected []model.IngestRecord
	pageToken := ""
	pages := 0
	for {
		page, err := m.ScanRecords(window, pageToken, 2)
		assert.NoError(t, err)
		collected = append(collected, page.Records...)
		pages++
		if page.NextToken == "" {
			break
		}
		pageToken = page.NextToken
	}

	assert.Equal(t, 5, len(collected), "scan should drain all records")
	assert.Equal(t, 3, pages, "limit 2 over 5 records takes three pages")
	// Insertion order is preserved across pages
	assert.Equal(t, "rec-0", collected[0].Id)
	assert.Equal(t, "rec-4", collected[4].Id)
}

func TestScanWindowFilter(t *testing.T) {
	m, _ := Open("mockdb:", "")

	now := time.Now().Unix()
	seedRecords(t, m, 3, now)
	_ = m.PutRecord(&model.IngestRecord{Id: "old", Timestamp: now - 100, UserId: "u"})

	page, err := m.ScanRecords(model.ScanWindow{Start: now - 10, End: now + 10}, "", 100)
	assert.NoError(t, err)
	assert.Len(t, page.Records, 3, "out-of-window record filtered")
	assert.Empty(t, page.NextToken)

	count, err := m.CountRecords()
	assert.NoError(t, err)
	assert.Equal(t, int64(4), count, "count covers all records regardless of window")
}

func TestScanInvalidToken(t *testing.T) {
	m, _ := Open("mockdb:", "")
	_, err := m.ScanRecords(model.ScanWindow{Start: 0, End: 10}, "not-a-token", 10)
	assert.Error(t, err)
}

func TestParameterStore(t *testing.T) {
	m, _ := Open("mockdb:", "")

	_, err := m.GetSecret("/eventgate/jwt-secret")
	assert.Error(t, err, "unset parameter should fail the caller")

	assert.NoError(t, m.SetSecret("/eventgate/jwt-secret", "abc"))
	value, err := m.GetSecret("/eventgate/jwt-secret")
	assert.NoError(t, err)
	assert.Equal(t, "abc", value)

	assert.NoError(t, m.ResetDb(true))
	_, err = m.GetSecret("/eventgate/jwt-secret")
	assert.Error(t, err, "reset clears parameters")
}
