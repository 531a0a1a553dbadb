package model

// ScanWindow bounds a record scan to timestamps in [Start, End] (unix seconds,
// inclusive at both ends).
type ScanWindow struct {
	Start int64
	End   int64
}

func (w ScanWindow) Contains(ts int64) bool {
	return ts >= w.Start && ts <= w.End
}

// RecordPage is one page of a continuation-token scan. NextToken is opaque to the
// consumer; an empty NextToken means the scan is exhausted.
type RecordPage struct {
	Records   []IngestRecord
	NextToken string
}
