package model

// IngestRequest is the JSON body accepted on POST /data.
type IngestRequest struct {
	UserId    string                 `json:"userId"`              // Required
	EventType string                 `json:"eventType,omitempty"` // Optional, defaults to "unknown"
	Data      map[string]interface{} `json:"data"`                // Required
}

// IngestResponse acknowledges a persisted record.
type IngestResponse struct {
	Message   string `json:"message"`
	Id        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
}

// ErrorResponse is the body returned on 4xx/5xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SummaryRunResponse is returned by the summary trigger endpoint and mirrors what
// an external scheduler sees from a run.
type SummaryRunResponse struct {
	Message    string `json:"message"`
	TotalItems int    `json:"total_items"`
	ObjectKey  string `json:"objectKey"`
}
