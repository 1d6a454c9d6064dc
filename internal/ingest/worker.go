// Package ingest copies transaction records into the graph database using a
// bounded pool of workers.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/vanshika/txinsights/internal/domain"
)

const defaultWorkers = 4

// TaskError accumulates multiple errors produced during bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	var b strings.Builder
	b.WriteString("multiple errors:")
	for _, err := range e.Errors {
		b.WriteString(" ")
		b.WriteString(err.Error())
		b.WriteString(";")
	}
	return b.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// TransactionWriter is the persistence side of ingestion.
type TransactionWriter interface {
	UpsertTransaction(ctx context.Context, seq int, tx domain.Transaction) error
}

// BulkIngestor writes large transaction datasets using a worker pool.
type BulkIngestor struct {
	writer  TransactionWriter
	workers int
	logger  *slog.Logger
}

// NewBulkIngestor creates a BulkIngestor with the provided concurrency.
func NewBulkIngestor(writer TransactionWriter, workers int, logger *slog.Logger) *BulkIngestor {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &BulkIngestor{
		writer:  writer,
		workers: workers,
		logger:  logger,
	}
}

// Workers reports the configured concurrency.
func (bi *BulkIngestor) Workers() int {
	return bi.workers
}

// IngestTransactions upserts every record, using its index as the sequence
// number so loaders can restore input order.
func (bi *BulkIngestor) IngestTransactions(ctx context.Context, txs []domain.Transaction) error {
	return bi.run(ctx, len(txs), func(idx int) error {
		return bi.writer.UpsertTransaction(ctx, idx, txs[idx])
	})
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				if bi.logger != nil {
					bi.logger.Debug("ingest record failed", "index", idx, "error", err)
				}
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < bi.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return err
	}

	var taskErr TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
