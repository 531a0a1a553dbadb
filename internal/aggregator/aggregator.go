package aggregator

import (
	"encoding/json"
	"log"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/open-ingest/eventgate/internal/model"
	"github.com/open-ingest/eventgate/internal/providers/blobProviders"
	"github.com/open-ingest/eventgate/internal/providers/dbProviders"
)

const CDefaultWindow = 7 * 24 * time.Hour
const CDefaultTopN = 10
const CDefaultPageSize = 100

const CObjectKeyPrefix = "summaries/weekly-summary-"
const CReportContentType = "application/json"

var gLog = log.New(os.Stdout, "AGGREG: ", log.Ldate|log.Ltime)

/*
Aggregator turns a trailing window of stored records into a ranked summary
report. Each run drains the record store's paginated scan to exhaustion,
counts per-user and per-event-type frequencies, and writes one JSON report to
the blob store. A run is all-or-nothing: any scan or write failure aborts it
with no partial output, and a rerun reprocesses the full window from scratch.
*/
type Aggregator struct {
	Provider dbProviders.DbProviderInterface
	Blobs    blobProviders.BlobProviderInterface
	Window   time.Duration
	TopN     int
	PageSize int32
}

func NewAggregator(provider dbProviders.DbProviderInterface, blobs blobProviders.BlobProviderInterface) *Aggregator {
	return &Aggregator{
		Provider: provider,
		Blobs:    blobs,
		Window:   CDefaultWindow,
		TopN:     CDefaultTopN,
		PageSize: CDefaultPageSize,
	}
}

/*
Summarize computes the report for records whose timestamp lies in
[windowEnd-windowLen, windowEnd]. Records with no userId are counted toward the
total but skipped from the per-user tally; an empty eventType counts as
"unknown". Nothing is written; see Run for the persisted form.
*/
func (a *Aggregator) Summarize(windowEnd time.Time, windowLen time.Duration) (*model.SummaryReport, error) {
	windowStart := windowEnd.Add(-windowLen)
	window := model.ScanWindow{
		Start: windowStart.Unix(),
		End:   windowEnd.Unix(),
	}

	gLog.Printf("Generating summary from %s to %s",
		windowStart.UTC().Format(time.RFC3339), windowEnd.UTC().Format(time.RFC3339))

	totalCount := 0
	userStats := map[string]int{}
	eventStats := map[string]int{}

	pageToken := ""
	for {
		page, err := a.Provider.ScanRecords(window, pageToken, a.PageSize)
		if err != nil {
			return nil, err
		}
		for _, record := range page.Records {
			totalCount++
			if record.UserId != "" {
				userStats[record.UserId]++
			}
			eventType := record.EventType
			if eventType == "" {
				eventType = "unknown"
			}
			eventStats[eventType]++
		}
		if page.NextToken == "" {
			break
		}
		gLog.Printf("Scanning next page... Current count: %d", totalCount)
		pageToken = page.NextToken
	}

	gLog.Printf("Scan complete: %d items processed", totalCount)

	report := model.SummaryReport{
		GeneratedAt: windowEnd.UTC().Format(time.RFC3339),
		Period: model.SummaryPeriod{
			Start: windowStart.UTC().Format(time.RFC3339),
			End:   windowEnd.UTC().Format(time.RFC3339),
		},
		Statistics: model.SummaryStatistics{
			TotalItems:       totalCount,
			UniqueUsers:      len(userStats),
			UniqueEventTypes: len(eventStats),
		},
		TopUsers:      topItems(userStats, a.TopN),
		TopEventTypes: topItems(eventStats, a.TopN),
	}
	return &report, nil
}

/*
Run executes one scheduled aggregation over the trailing configured window
ending now, and uploads the report to the blob store under the date-derived
object key. Returns the report and the object key it was stored under.
*/
func (a *Aggregator) Run() (*model.SummaryReport, string, error) {
	windowEnd := time.Now()

	report, err := a.Summarize(windowEnd, a.Window)
	if err != nil {
		gLog.Printf("Record scan error: %s", err.Error())
		return nil, "", err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, "", err
	}

	key := ObjectKey(windowEnd)
	metadata := map[string]string{
		"generated-at": report.GeneratedAt,
		"total-items":  strconv.Itoa(report.Statistics.TotalItems),
	}
	if err := a.Blobs.PutObject(key, data, CReportContentType, metadata); err != nil {
		gLog.Printf("Report upload error: %s", err.Error())
		return nil, "", err
	}

	gLog.Printf("Summary uploaded: %s (%d items)", key, report.Statistics.TotalItems)
	return report, key, nil
}

// ObjectKey derives the report's blob key from the window end date (UTC).
// Reports generated on the same date overwrite each other.
func ObjectKey(windowEnd time.Time) string {
	return CObjectKeyPrefix + windowEnd.UTC().Format("2006-01-02") + ".json"
}

// topItems ranks a counter map by count descending. Equal counts are ordered
// lexicographically by name so rankings are deterministic across runs (the
// store's scan order is not).
func topItems(stats map[string]int, limit int) []model.TopItem {
	items := make([]model.TopItem, 0, len(stats))
	for name, count := range stats {
		items = append(items, model.TopItem{Name: name, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Name < items[j].Name
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
