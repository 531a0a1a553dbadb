package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/open-ingest/eventgate/config"
	"github.com/open-ingest/eventgate/internal/aggregator"
	"github.com/open-ingest/eventgate/internal/authUtil"
	"github.com/open-ingest/eventgate/internal/providers/blobProviders"
	"github.com/open-ingest/eventgate/internal/providers/dbProviders"
	"github.com/open-ingest/eventgate/internal/providers/secretProviders"
)

var serverLog = log.New(os.Stdout, "SERVER: ", log.Ldate|log.Ltime)

/*
IngestApplication wires the ingest endpoint, the token verifier, and the
aggregation scheduler over a record store and blob store. Each request is
handled statelessly; the only cross-request state is the secret cache, which is
read-only after first population and owned here so it can be invalidated.
*/
type IngestApplication struct {
	Provider   dbProviders.DbProviderInterface
	Blobs      blobProviders.BlobProviderInterface
	Server     *http.Server
	Handler    http.Handler
	BaseUrl    *url.URL
	Auth       *authUtil.TokenVerifier
	Secrets    *secretProviders.CachingProvider
	Aggregator *aggregator.Aggregator
	Stats      *PrometheusHandler

	schedulerStop chan struct{}
}

func (ia *IngestApplication) Name() string {
	if ia.Provider != nil {
		return ia.Provider.Name()
	}
	return "eventgate"
}

func (ia *IngestApplication) HealthCheck() bool {
	err := ia.Provider.Check()
	if err != nil {
		serverLog.Println("Record store ping failed: " + err.Error())
		return false
	}
	return true
}

func NewApplication(cfg config.Config, provider dbProviders.DbProviderInterface, blobs blobProviders.BlobProviderInterface) *IngestApplication {
	// JWT_SECRET short-circuits the parameter store for local use; otherwise the
	// shared secret comes from the provider's parameter collection.
	var source secretProviders.SecretProvider = provider
	if cfg.EnvSecret != "" {
		source = secretProviders.NewStaticProvider(cfg.EnvSecret)
	}
	secrets := secretProviders.NewCachingProvider(source, cfg.SecretTtl)

	ia := &IngestApplication{
		Provider: provider,
		Blobs:    blobs,
		Secrets:  secrets,
		Auth:     authUtil.NewTokenVerifier(secrets, cfg.SecretParam),
	}

	agg := aggregator.NewAggregator(provider, blobs)
	if cfg.SummaryWindow > 0 {
		agg.Window = cfg.SummaryWindow
	}
	if cfg.SummaryTopN > 0 {
		agg.TopN = cfg.SummaryTopN
	}
	if cfg.ScanPageSize > 0 {
		agg.PageSize = cfg.ScanPageSize
	}
	ia.Aggregator = agg

	httpRouter := NewRouter(ia)
	// expose the handler for external server usage (e.g., httptest.Server)
	ia.Handler = httpRouter.router

	var baseUrl *url.URL
	var err error
	if cfg.BaseUrl != "" {
		baseUrl, err = url.Parse(cfg.BaseUrl)
		if err != nil {
			serverLog.Println(fmt.Sprintf("FATAL: Invalid BaseUrl[%s]: %s", cfg.BaseUrl, err.Error()))
		}
	}
	ia.BaseUrl = baseUrl

	ia.InitializePrometheus()

	if cfg.SummaryInterval > 0 {
		ia.StartScheduler(cfg.SummaryInterval)
	}

	return ia
}

// StartServer creates a real net/http server wrapping the application handler.
// This is used for production binaries. Tests can instead use NewApplication +
// httptest.Server.
func StartServer(addr string, cfg config.Config, provider dbProviders.DbProviderInterface, blobs blobProviders.BlobProviderInterface) *IngestApplication {
	ia := NewApplication(cfg, provider, blobs)
	server := http.Server{
		Addr:    addr,
		Handler: ia.Handler,
	}
	ia.Server = &server
	if ia.BaseUrl == nil {
		baseUrl, _ := url.Parse("http://" + server.Addr + "/")
		ia.BaseUrl = baseUrl
	}
	serverLog.Printf("ServerUrl[%s] listening on %s", provider.Name(), addr)
	return ia
}

/*
StartScheduler runs the aggregator on a fixed interval in-process. Deployments
that trigger runs externally (cron invoking the admin tool, or the summary
endpoint) leave this off. A failed run is logged and reported through metrics;
the next tick retries the full window from scratch.
*/
func (ia *IngestApplication) StartScheduler(interval time.Duration) {
	if ia.schedulerStop != nil {
		return
	}
	ia.schedulerStop = make(chan struct{})
	serverLog.Printf("Summary scheduler started, interval %s", interval.String())

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				report, _, err := ia.Aggregator.Run()
				if err != nil {
					serverLog.Printf("Scheduled summary run failed: %s", err.Error())
					ia.Stats.SummaryRuns.WithLabelValues("error").Inc()
					continue
				}
				ia.Stats.SummaryRuns.WithLabelValues("success").Inc()
				ia.Stats.LastSummaryItems.Set(float64(report.Statistics.TotalItems))
			case <-ia.schedulerStop:
				return
			}
		}
	}()
}

func (ia *IngestApplication) Shutdown() {
	name := ia.Name()
	serverLog.Printf("[%s] Shutdown initiated...", name)

	if ia.schedulerStop != nil {
		close(ia.schedulerStop)
		ia.schedulerStop = nil
	}

	// Turn off the server (if present)
	if ia.Server != nil {
		_ = ia.Server.Shutdown(context.Background())
	}

	// Shutdown the provider
	_ = ia.Provider.Close()

	serverLog.Printf("[%s] Shutdown Complete.", name)
}
