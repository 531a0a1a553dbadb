package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/open-ingest/eventgate/internal/model"
	"github.com/segmentio/ksuid"
)

// IngestEvent accepts one authenticated event and persists it as a new record.
// The write is at-most-once: a caller that retries after an error produces a
// second record with a fresh identifier, identical content.
func (ia *IngestApplication) IngestEvent(w http.ResponseWriter, r *http.Request) {
	identity, err := ia.Auth.VerifyRequest(r)
	if err != nil {
		ia.Stats.RequestsRejected.WithLabelValues(rejectionReason(err)).Inc()
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var request model.IngestRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&request); err != nil {
		ia.Stats.RequestsRejected.WithLabelValues("invalid_payload").Inc()
		writeJson(w, http.StatusBadRequest, model.ErrorResponse{Error: model.ErrInvalidPayload.Error()})
		return
	}

	if request.UserId == "" || request.Data == nil {
		ia.Stats.RequestsRejected.WithLabelValues("missing_field").Inc()
		writeJson(w, http.StatusBadRequest, model.ErrorResponse{Error: model.ErrMissingField.Error()})
		return
	}

	eventType := request.EventType
	if eventType == "" {
		eventType = "unknown"
	}

	now := time.Now().UTC()
	record := model.IngestRecord{
		Id:                ksuid.New().String(),
		Timestamp:         now.Unix(),
		UserId:            request.UserId,
		EventType:         eventType,
		Data:              request.Data,
		CreatedAt:         now.Format(time.RFC3339),
		AuthenticatedUser: identity.Subject,
		UserEmail:         identity.Email,
	}

	if err := ia.Provider.PutRecord(&record); err != nil {
		serverLog.Printf("Record store error: %s", err.Error())
		ia.Stats.RequestsRejected.WithLabelValues("storage").Inc()
		writeJson(w, http.StatusInternalServerError, model.ErrorResponse{Error: model.ErrStorage.Error()})
		return
	}

	ia.Stats.RecordsIn.WithLabelValues(eventType).Inc()
	writeJson(w, http.StatusOK, model.IngestResponse{
		Message:   "Data ingested successfully",
		Id:        record.Id,
		Timestamp: record.Timestamp,
	})
}

func (ia *IngestApplication) CheckHealth(w http.ResponseWriter, _ *http.Request) {
	if !ia.HealthCheck() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func rejectionReason(err error) string {
	if errors.Is(err, model.ErrMalformedCredential) {
		return "malformed_credential"
	}
	return "unauthorized"
}

func writeJson(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	respBytes, _ := json.Marshal(body)
	_, _ = w.Write(respBytes)
}
