package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/open-ingest/eventgate/internal/aggregator"
	"github.com/open-ingest/eventgate/internal/authUtil"
	"github.com/open-ingest/eventgate/internal/providers/blobProviders"
	"github.com/open-ingest/eventgate/internal/providers/dbProviders"
	"github.com/open-ingest/eventgate/internal/providers/secretProviders"
)

type Globals struct {
	MongoUrl     string `help:"URL of the eventgate Mongo database" env:"MONGO_URL"`
	DbName       string `help:"Database name" env:"EVENTGATE_DBNAME"`
	SecretParam  string `help:"Parameter name of the shared token secret" env:"JWT_SECRET_PARAM" default:"/eventgate/jwt-secret"`
	Secret       string `help:"Shared secret value, bypasses the parameter store (for local testing)" env:"JWT_SECRET"`
	Output       string `short:"o" help:"To redirect output to a file" type:"path"`
	AppendOutput bool   `short:"a" default:"false" help:"When true, output to file (--output) will be appended"`

	provider dbProviders.DbProviderInterface
}

// openProvider opens the record store once per shell session and reuses it.
func (g *Globals) openProvider() (dbProviders.DbProviderInterface, error) {
	if g.provider != nil {
		return g.provider, nil
	}
	provider, err := dbProviders.OpenProvider(g.MongoUrl, g.DbName)
	if err != nil {
		return nil, err
	}
	g.provider = provider
	return provider, nil
}

// secretProvider resolves where the shared secret comes from: --secret wins,
// otherwise the parameter store inside the record database.
func (g *Globals) secretProvider() (secretProviders.SecretProvider, error) {
	if g.Secret != "" {
		return secretProviders.NewStaticProvider(g.Secret), nil
	}
	return g.openProvider()
}

type CLI struct {
	Globals
	Token     TokenCmd     `cmd:"" help:"Generate an access token for API testing"`
	Secret    SecretCmd    `cmd:"" help:"Store or rotate the shared token secret in the parameter store"`
	Summarize SummarizeCmd `cmd:"" help:"Run one aggregation over the trailing window and upload the report"`
	Count     CountCmd     `cmd:"" help:"Show the number of records in the store"`
	Exit      ExitCmd      `cmd:"" help:"Exit the shell"`
}

type TokenCmd struct {
	UserId string `short:"u" required:"" help:"User ID to encode in the token"`
	Email  string `help:"User email (optional)"`
	Scope  string `help:"Token scope (optional, e.g. admin)"`
	Expiry int    `default:"24" help:"Token expiry in hours"`
}

func (t *TokenCmd) Run(globals *Globals) error {
	secrets, err := globals.secretProvider()
	if err != nil {
		return err
	}
	issuer := authUtil.NewTokenIssuer(secrets, globals.SecretParam)
	token, err := issuer.IssueToken(t.UserId, t.Email, t.Scope, time.Duration(t.Expiry)*time.Hour)
	if err != nil {
		return err
	}

	fmt.Printf("Token generated for %s (expires in %d hours):\n%s\n", t.UserId, t.Expiry, token)
	fmt.Println("\nUse with curl:")
	fmt.Printf("curl -X POST http://localhost:8080/data \\\n")
	fmt.Printf("  -H \"Authorization: Bearer %s\" \\\n", token)
	fmt.Printf("  -H \"Content-Type: application/json\" \\\n")
	fmt.Printf("  -d '{\"userId\": \"%s\", \"eventType\": \"test\", \"data\": {\"message\": \"hello\"}}'\n", t.UserId)

	out := globals.GetOutputWriter()
	out.WriteString(token+"\n", true)
	return nil
}

type SecretCmd struct {
	Value string `arg:"" help:"The new secret value"`
}

func (s *SecretCmd) Run(globals *Globals) error {
	if len(s.Value) < 16 {
		return errors.New("refusing to store a secret shorter than 16 characters")
	}
	provider, err := globals.openProvider()
	if err != nil {
		return err
	}
	if err := provider.SetSecret(globals.SecretParam, s.Value); err != nil {
		return err
	}
	fmt.Printf("Secret stored under %s. Running verifiers pick it up after cache invalidation or TTL expiry.\n", globals.SecretParam)
	return nil
}

type SummarizeCmd struct {
	Window time.Duration `default:"168h" help:"Trailing window length"`
	TopN   int           `default:"10" help:"Number of ranked entries per list"`
}

func (s *SummarizeCmd) Run(globals *Globals) error {
	provider, err := globals.openProvider()
	if err != nil {
		return err
	}
	blobs, err := blobProviders.OpenProvider(provider)
	if err != nil {
		return err
	}

	agg := aggregator.NewAggregator(provider, blobs)
	agg.Window = s.Window
	agg.TopN = s.TopN

	report, key, err := agg.Run()
	if err != nil {
		return err
	}
	fmt.Printf("Summary generated successfully: %d items, %d users, %d event types\n",
		report.Statistics.TotalItems, report.Statistics.UniqueUsers, report.Statistics.UniqueEventTypes)
	fmt.Printf("Uploaded as %s\n", key)
	return nil
}

type CountCmd struct {
}

func (c *CountCmd) Run(globals *Globals) error {
	provider, err := globals.openProvider()
	if err != nil {
		return err
	}
	count, err := provider.CountRecords()
	if err != nil {
		return err
	}
	fmt.Printf("%d records in store [%s]\n", count, provider.Name())
	return nil
}

type ExitCmd struct {
}

func (e *ExitCmd) Run(globals *Globals) error {
	if globals.provider != nil {
		_ = globals.provider.Close()
	}
	os.Exit(0)
	return nil
}
