package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vanshika/txinsights/internal/analytics"
	"github.com/vanshika/txinsights/internal/config"
	"github.com/vanshika/txinsights/internal/graph"
	"github.com/vanshika/txinsights/internal/loader"
	"github.com/vanshika/txinsights/internal/logging"
	"github.com/vanshika/txinsights/internal/metrics"
	"github.com/vanshika/txinsights/internal/server"
	"github.com/vanshika/txinsights/internal/store"
)

const reloadTimeout = 30 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	graphClient, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if graphClient != nil {
			if err := graphClient.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		}
	}()

	source, err := loader.New(cfg.Data, graphClient)
	if err != nil {
		logger.Error("failed to configure data source", "error", err, "source", cfg.Data.Source)
		os.Exit(1)
	}

	var m *metrics.Metrics
	storeOpts := []store.Option{}
	if cfg.HTTP.MetricsEnabled {
		m = metrics.New()
		storeOpts = append(storeOpts, store.WithObserver(m))
	}

	records := store.New(source, logger.With("component", "store"), storeOpts...)
	loadCtx, cancelLoad := context.WithTimeout(ctx, reloadTimeout)
	records.Load(loadCtx)
	cancelLoad()

	engine := analytics.NewEngine(records)
	apiHandlers := server.NewAPIHandlers(logger, engine)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.GraphHealthService{Client: graphClient},
		Snapshots:        records,
		API:              apiHandlers,
		Metrics:          m,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

Wait:
	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				reload(records, logger)
				continue
			}
			logger.Info("received shutdown signal", "signal", sig.String())
			break Wait
		case err := <-errCh:
			if err != nil {
				logger.Error("server stopped unexpectedly", "error", err)
			}
			break Wait
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func reload(records *store.Store, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	logger.Info("reloading transactions")
	if _, err := records.Reload(ctx); err != nil {
		logger.Error("reload failed", "error", err)
	}
}

// buildGraphClient returns nil when no graph is configured; the file source
// and health checks work without one.
func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		if cfg.Data.Source == config.DataSourceGraph {
			return nil, graph.ErrMissingURI
		}
		return nil, nil
	}

	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	client, err := graph.NewNeo4jClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("graph client configured", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
