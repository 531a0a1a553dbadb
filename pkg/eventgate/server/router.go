package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

type Routes []Route

type MuxRouter struct {
	router *mux.Router
}

func NewRouter(ia *IngestApplication) *MuxRouter {
	routes := Routes{
		Route{
			"IngestEvent",
			http.MethodPost,
			"/data",
			ia.IngestEvent,
		},
		Route{
			"RunSummary",
			http.MethodPost,
			"/summaries",
			ia.RunSummary,
		},
		Route{
			"HealthCheck",
			http.MethodGet,
			"/healthz",
			ia.CheckHealth,
		},
	}

	router := mux.NewRouter().StrictSlash(true)
	router.Use(PrometheusHttpMiddleware)
	for _, route := range routes {
		router.
			Methods(route.Method).
			Path(route.Pattern).
			Name(route.Name).
			Handler(route.HandlerFunc)
	}

	router.
		Methods(http.MethodGet).
		Path("/metrics").
		Name("Metrics").
		Handler(promhttp.Handler())

	return &MuxRouter{router: router}
}
