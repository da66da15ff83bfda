package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bakkerme/prensa/internal/backend"
	"github.com/bakkerme/prensa/internal/config"
	"github.com/bakkerme/prensa/internal/filter"
	"github.com/bakkerme/prensa/internal/httpapi"
	"github.com/bakkerme/prensa/internal/observability/otelx"
	"github.com/bakkerme/prensa/internal/view"
)

func main() {
	_ = godotenv.Load()

	env := config.LoadEnv()
	configPath := flag.String("config", env.ConfigPath, "path to prensa document")
	listenAddr := flag.String("listen", env.ListenAddr, "http listen address")
	backendURL := flag.String("backend", env.Backend.BaseURL, "news backend base url")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := otelx.Init(ctx, logger, env.OTel)
	if err != nil {
		log.Fatalf("failed to initialise tracing: %v", err)
	}
	if shutdownOTel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOTel(shutdownCtx); err != nil {
				logger.Warn("otel shutdown", "error", err)
			}
		}()
	}

	doc, err := loadDocument(*configPath, logger)
	if err != nil {
		log.Fatalf("failed to load document: %v", err)
	}

	opts := view.Options{}
	if doc != nil {
		opts.Initial = initialParams(doc.View.Defaults)
		rules, err := rulesFromDocument(doc)
		if err != nil {
			log.Fatalf("failed to compile filters: %v", err)
		}
		opts.Rules = rules
	}

	client := backend.NewClient(*backendURL, env.Backend.Timeout, env.Backend.UserAgent)
	v := view.New(client, logger, opts)
	v.Refresh(ctx, false)

	if doc != nil && doc.View.AutoRefresh != nil {
		ar := doc.View.AutoRefresh
		if err := v.StartAutoRefresh(ctx, ar.Schedule, ar.Timezone); err != nil {
			log.Fatalf("failed to start auto refresh: %v", err)
		}
		logger.Info("auto refresh scheduled", "schedule", ar.Schedule, "timezone", ar.Timezone)
	}

	server := httpapi.NewServer(v)
	go func() {
		logger.Info("listening", "addr", *listenAddr, "backend", *backendURL)
		if err := server.Start(*listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", "error", err)
	}
	v.Close()
}

// loadDocument reads the optional prensa.yaml. A missing file at the default
// location is not an error; everything then runs on built-in defaults.
func loadDocument(path string, logger *slog.Logger) (*config.Document, error) {
	doc, err := config.Load(path)
	if err != nil {
		if os.IsNotExist(errors.Unwrap(err)) {
			logger.Info("no config document found, using defaults", "path", path)
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

func initialParams(p config.ParamsConfig) view.Params {
	params := view.DefaultParams()
	if p.Country != "" {
		params.Country = p.Country
	}
	if p.Range != "" {
		params.Range = p.Range
	}
	if p.PerFeed > 0 {
		params.PerFeed = p.PerFeed
	}
	if p.Translate != "" {
		params.Translate = p.Translate
	}
	return params
}

// rulesFromDocument compiles the configured filter expressions.
func rulesFromDocument(doc *config.Document) (filter.Rules, error) {
	rules := make(filter.Rules, 0, len(doc.View.Filters))
	for _, f := range doc.View.Filters {
		rule, err := filter.NewRule(f.Name, f.Rule, f.Result)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
