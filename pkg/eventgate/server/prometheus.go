package server

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var pLog = log.New(os.Stdout, "PROMTH: ", log.Ldate|log.Ltime)

type PrometheusHandler struct {
	App              *IngestApplication
	RecordsIn        *prometheus.CounterVec
	RequestsRejected *prometheus.CounterVec
	SummaryRuns      *prometheus.CounterVec
	LastSummaryItems prometheus.Gauge
	StoredRecords    prometheus.GaugeFunc
}

var (
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "eventgate_http_duration_seconds",
		Help: "Duration of HTTP requests.",
	}, []string{"path"})
)

func PrometheusHttpMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := mux.CurrentRoute(r)
		path, _ := route.GetPathTemplate()
		timer := prometheus.NewTimer(httpDuration.WithLabelValues(path))
		next.ServeHTTP(w, r)
		timer.ObserveDuration()
	})
}

func (ia *IngestApplication) InitializePrometheus() {
	prometheusHandler := PrometheusHandler{
		App: ia,
		RecordsIn: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventgate",
				Subsystem: "ingest",
				Name:      "records_in_total",
				Help:      "Records accepted and persisted",
			},
			[]string{"event_type"},
		),
		RequestsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventgate",
				Subsystem: "ingest",
				Name:      "requests_rejected_total",
				Help:      "Requests rejected before a record was written",
			},
			[]string{"reason"},
		),
		SummaryRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventgate",
				Subsystem: "summary",
				Name:      "runs_total",
				Help:      "Aggregation runs by outcome",
			},
			[]string{"outcome"},
		),
		LastSummaryItems: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "eventgate",
				Subsystem: "summary",
				Name:      "last_run_items",
				Help:      "Records covered by the most recent summary run",
			}),
		StoredRecords: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "eventgate",
				Subsystem: "ingest",
				Name:      "stored_records",
				Help:      "Total records currently in the store",
			},
			func() float64 {
				count, err := ia.Provider.CountRecords()
				if err != nil {
					return -1
				}
				return float64(count)
			}),
	}

	registerCollector(prometheusHandler.RecordsIn)
	registerCollector(prometheusHandler.RequestsRejected)
	registerCollector(prometheusHandler.SummaryRuns)
	registerCollector(prometheusHandler.LastSummaryItems)
	registerCollector(prometheusHandler.StoredRecords)

	ia.Stats = &prometheusHandler
}

func registerCollector(collector prometheus.Collector) {

	err := prometheus.Register(collector)
	if err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			// Already registered, this is fine (e.g. in tests)
			return
		}
		pLog.Println("WARNING: instrumentation error:" + err.Error())
	}

}
