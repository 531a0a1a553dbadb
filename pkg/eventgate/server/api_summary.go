package server

import (
	"net/http"

	"github.com/open-ingest/eventgate/internal/authUtil"
	"github.com/open-ingest/eventgate/internal/model"
)

// RunSummary triggers one aggregation run on demand. The caller's token must
// carry the admin scope; a valid token without it is rejected with 403.
func (ia *IngestApplication) RunSummary(w http.ResponseWriter, r *http.Request) {
	identity, err := ia.Auth.VerifyRequest(r)
	if err != nil {
		ia.Stats.RequestsRejected.WithLabelValues(rejectionReason(err)).Inc()
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if !identity.HasScope(authUtil.ScopeAdmin) {
		ia.Stats.RequestsRejected.WithLabelValues("forbidden").Inc()
		w.WriteHeader(http.StatusForbidden)
		return
	}

	report, key, err := ia.Aggregator.Run()
	if err != nil {
		ia.Stats.SummaryRuns.WithLabelValues("error").Inc()
		writeJson(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to generate summary"})
		return
	}

	ia.Stats.SummaryRuns.WithLabelValues("success").Inc()
	ia.Stats.LastSummaryItems.Set(float64(report.Statistics.TotalItems))
	writeJson(w, http.StatusOK, model.SummaryRunResponse{
		Message:    "Summary generated successfully",
		TotalItems: report.Statistics.TotalItems,
		ObjectKey:  key,
	})
}
