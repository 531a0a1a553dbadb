package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/open-ingest/eventgate/config"
	"github.com/open-ingest/eventgate/internal/providers/blobProviders"
	"github.com/open-ingest/eventgate/internal/providers/dbProviders"
	"github.com/open-ingest/eventgate/pkg/eventgate/server"
)

var mainLog = log.New(os.Stdout, "EVENTGATE: ", log.Ldate|log.Ltime)

// stripQuotes removes one matching pair of surrounding quotes. Docker env files
// often pass values like MONGO_URL="mongodb://..." through literally.
func stripQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	first := value[0]
	last := value[len(value)-1]
	if first == last && (first == '"' || first == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}

func main() {
	cfg := config.GetEnvConfig()
	cfg.MongoUrl = stripQuotes(cfg.MongoUrl)
	cfg.DbName = stripQuotes(cfg.DbName)
	cfg.BaseUrl = stripQuotes(cfg.BaseUrl)

	provider, err := dbProviders.OpenProvider(cfg.MongoUrl, cfg.DbName)
	if err != nil {
		mainLog.Fatalf("Unable to open record store: %s", err.Error())
	}

	blobs, err := blobProviders.OpenProvider(provider)
	if err != nil {
		mainLog.Fatalf("Unable to open blob store: %s", err.Error())
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	ia := server.StartServer(addr, cfg, provider, blobs)

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := ia.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			mainLog.Fatalf("Server error: %s", err.Error())
		}
	}()

	<-done
	ia.Shutdown()
}
