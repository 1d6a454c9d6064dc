package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vanshika/txinsights/internal/config"
	"github.com/vanshika/txinsights/internal/graph"
	"github.com/vanshika/txinsights/internal/ingest"
	"github.com/vanshika/txinsights/internal/loader"
	"github.com/vanshika/txinsights/internal/logging"
)

var errEmptyDataset = errors.New("transactions dataset empty")

func main() {
	var (
		transactions = flag.String("transactions", "", "Path to transactions.json (defaults to DATA_FILE)")
		workers      = flag.Int("workers", 4, "Number of concurrent workers for ingestion")
		prune        = flag.Bool("prune", true, "Remove graph transactions left over from a larger previous ingestion")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	path := *transactions
	if path == "" {
		path = cfg.Data.File
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	txs, err := loader.NewFileLoader(path).Load(ctx)
	if err == nil && len(txs) == 0 {
		err = errEmptyDataset
	}
	if err != nil {
		logger.Error("failed to load transactions", "error", err, "path", path)
		os.Exit(1)
	}

	graphClient, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	writer := ingest.NewWriter(graphClient)
	if err := writer.EnsureSchema(ctx); err != nil {
		logger.Error("schema setup failed", "error", err)
		os.Exit(1)
	}

	ingestor := ingest.NewBulkIngestor(writer, *workers, logger)

	start := time.Now()
	logger.Info("ingesting transactions", "count", len(txs), "workers", ingestor.Workers(), "path", path)
	if err := ingestor.IngestTransactions(ctx, txs); err != nil {
		logger.Error("transaction ingestion failed", "error", err)
		os.Exit(1)
	}

	if *prune {
		removed, err := writer.Prune(ctx, len(txs))
		if err != nil {
			logger.Error("pruning stale transactions failed", "error", err)
			os.Exit(1)
		}
		if removed > 0 {
			logger.Info("pruned stale transactions", "removed", removed)
		}
	}

	logger.Info("ingestion complete", "duration", time.Since(start).String(), "transactions", len(txs))
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, fmt.Errorf("GRAPH_URI is required for ingestion: %w", graph.ErrMissingURI)
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
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}
