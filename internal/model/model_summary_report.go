package model

// SummaryPeriod is the closed time interval a summary covers.
type SummaryPeriod struct {
	Start string `json:"start"` // ISO-8601
	End   string `json:"end"`   // ISO-8601
}

type SummaryStatistics struct {
	TotalItems       int `json:"total_items"`
	UniqueUsers      int `json:"unique_users"`
	UniqueEventTypes int `json:"unique_event_types"`
}

// TopItem is one entry in a ranked frequency list.
type TopItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SummaryReport is the point-in-time artifact produced by one aggregation run.
// It is written once to the blob store under a date-derived key and never mutated.
type SummaryReport struct {
	GeneratedAt   string            `json:"generated_at"` // ISO-8601
	Period        SummaryPeriod     `json:"period"`
	Statistics    SummaryStatistics `json:"statistics"`
	TopUsers      []TopItem         `json:"top_users"`
	TopEventTypes []TopItem         `json:"top_event_types"`
}
