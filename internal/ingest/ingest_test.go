package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/vanshika/txinsights/internal/domain"
	"github.com/vanshika/txinsights/internal/graph"
	"github.com/vanshika/txinsights/internal/logging"
)

func TestWriterUpsertTransaction(t *testing.T) {
	mem := graph.NewMemoryClient()
	w := NewWriter(mem)

	tx := domain.Transaction{
		ID: 1234567, Amount: 250.5, SenderFullName: "Ahmed", SenderAge: 40,
		BeneficiaryFullName: "Ali", BeneficiaryAge: 31, IssueID: 12678, IssueSolved: true, IssueMessage: "issue solved",
	}
	if err := w.UpsertTransaction(context.Background(), 7, tx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write, got %d", len(calls))
	}
	call := calls[0]
	if !strings.Contains(call.Query, "MERGE (t:Transaction {seq: $seq})") {
		t.Fatalf("unexpected query: %s", call.Query)
	}
	if call.Params["seq"] != int64(7) {
		t.Fatalf("expected seq 7, got %v", call.Params["seq"])
	}
	if call.Params["senderFullName"] != "Ahmed" || call.Params["beneficiaryName"] != "Ali" {
		t.Fatalf("unexpected client params: %v", call.Params)
	}
	props, ok := call.Params["props"].(map[string]any)
	if !ok {
		t.Fatalf("expected props map, got %T", call.Params["props"])
	}
	if props["mtn"] != int64(1234567) || props["amount"] != 250.5 || props["issueId"] != int64(12678) {
		t.Fatalf("unexpected props: %v", props)
	}
}

func TestWriterRejectsNegativeSequence(t *testing.T) {
	mem := graph.NewMemoryClient()
	err := NewWriter(mem).UpsertTransaction(context.Background(), -1, domain.Transaction{})
	if !errors.Is(err, ErrNegativeSequence) {
		t.Fatalf("expected ErrNegativeSequence, got %v", err)
	}
	if len(mem.WriteCalls()) != 0 {
		t.Fatalf("expected no writes")
	}
}

func TestWriterWrapsClientError(t *testing.T) {
	boom := errors.New("database unavailable")
	mem := graph.NewMemoryClient().WithError(boom)

	err := NewWriter(mem).UpsertTransaction(context.Background(), 0, domain.Transaction{ID: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
	if err := NewWriter(mem).EnsureSchema(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected schema error to wrap client error, got %v", err)
	}
}

func TestWriterEnsureSchemaAndPrune(t *testing.T) {
	mem := graph.NewMemoryClient().WithWriteResponder(func(q graph.ExecutedQuery) (graph.Result, error) {
		if strings.Contains(q.Query, "DETACH DELETE") {
			return graph.Result{Records: []graph.Record{{"removed": int64(3)}}}, nil
		}
		return graph.Result{}, nil
	})
	w := NewWriter(mem)

	if err := w.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	removed, err := w.Prune(context.Background(), 10)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}

	calls := mem.WriteCalls()
	if len(calls) != len(schemaCypher)+1 {
		t.Fatalf("expected %d writes, got %d", len(schemaCypher)+1, len(calls))
	}
	if calls[len(calls)-1].Params["count"] != int64(10) {
		t.Fatalf("expected prune count 10, got %v", calls[len(calls)-1].Params["count"])
	}
}

type recordingWriter struct {
	mu   sync.Mutex
	seen map[int]int64
	fail map[int]error
}

func (w *recordingWriter) UpsertTransaction(_ context.Context, seq int, tx domain.Transaction) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err, ok := w.fail[seq]; ok {
		return err
	}
	if w.seen == nil {
		w.seen = make(map[int]int64)
	}
	w.seen[seq] = tx.ID
	return nil
}

func TestBulkIngestorWritesEveryRecordWithItsIndex(t *testing.T) {
	txs := make([]domain.Transaction, 25)
	for i := range txs {
		txs[i] = domain.Transaction{ID: int64(1000 + i)}
	}
	w := &recordingWriter{}
	ingestor := NewBulkIngestor(w, 3, logging.Discard())

	if err := ingestor.IngestTransactions(context.Background(), txs); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(w.seen) != len(txs) {
		t.Fatalf("expected %d writes, got %d", len(txs), len(w.seen))
	}
	for i := range txs {
		if w.seen[i] != int64(1000+i) {
			t.Fatalf("seq %d carried id %d", i, w.seen[i])
		}
	}
}

func TestBulkIngestorAggregatesErrors(t *testing.T) {
	txs := make([]domain.Transaction, 6)
	w := &recordingWriter{fail: map[int]error{
		1: fmt.Errorf("record 1 rejected"),
		4: fmt.Errorf("record 4 rejected"),
	}}

	err := NewBulkIngestor(w, 2, nil).IngestTransactions(context.Background(), txs)
	var taskErr *TaskError
	if !errors.As(err, &taskErr) {
		t.Fatalf("expected TaskError, got %T %v", err, err)
	}
	if len(taskErr.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(taskErr.Errors))
	}
	if !strings.HasPrefix(taskErr.Error(), "multiple errors:") {
		t.Fatalf("unexpected message %q", taskErr.Error())
	}
	if len(w.seen) != 4 {
		t.Fatalf("expected other records to be written, got %d", len(w.seen))
	}
}

func TestBulkIngestorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewBulkIngestor(&recordingWriter{}, 2, nil).IngestTransactions(ctx, make([]domain.Transaction, 100))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBulkIngestorDefaults(t *testing.T) {
	ingestor := NewBulkIngestor(&recordingWriter{}, 0, nil)
	if ingestor.Workers() != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, ingestor.Workers())
	}
	if err := ingestor.IngestTransactions(context.Background(), nil); err != nil {
		t.Fatalf("expected nil error on empty input, got %v", err)
	}
}
