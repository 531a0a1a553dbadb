package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	MongoUrl string `envconfig:"MONGO_URL"`
	DbName   string `envconfig:"EVENTGATE_DBNAME"`
	Port     int    `envconfig:"EVENTGATE_PORT" default:"8080"`
	BaseUrl  string `envconfig:"EVENTGATE_BASE_URL"`

	// SecretParam is the parameter-store name of the shared token secret. When
	// JWT_SECRET is set in the environment it takes precedence (local use).
	SecretParam string `envconfig:"JWT_SECRET_PARAM" default:"/eventgate/jwt-secret"`
	EnvSecret   string `envconfig:"JWT_SECRET"`

	// SecretTtl bounds the secret cache; 0 caches for the process lifetime.
	SecretTtl time.Duration `envconfig:"JWT_SECRET_TTL" default:"0"`

	// SummaryInterval enables the in-process scheduler when > 0. Deployments
	// using an external scheduler (cron driving the tool) leave it at 0.
	SummaryInterval time.Duration `envconfig:"SUMMARY_INTERVAL" default:"0"`
	SummaryWindow   time.Duration `envconfig:"SUMMARY_WINDOW" default:"168h"`
	SummaryTopN     int           `envconfig:"SUMMARY_TOP_N" default:"10"`
	ScanPageSize    int32         `envconfig:"SCAN_PAGE_SIZE" default:"100"`
}

func GetEnvConfig() Config {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		log.Println("Error occurred reading configuration: " + err.Error())
		return Config{}
	}
	return cfg
}
