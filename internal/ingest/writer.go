package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanshika/txinsights/internal/domain"
	"github.com/vanshika/txinsights/internal/graph"
)

// ErrNegativeSequence is returned for a record without a usable position.
var ErrNegativeSequence = errors.New("sequence must not be negative")

// Writer persists transaction records as graph nodes.
type Writer struct {
	client graph.Client
}

// NewWriter returns a Writer backed by client.
func NewWriter(client graph.Client) *Writer {
	return &Writer{client: client}
}

// EnsureSchema creates the uniqueness constraints the upserts rely on.
func (w *Writer) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaCypher {
		if _, err := w.client.ExecuteWrite(ctx, stmt, nil); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// UpsertTransaction writes tx at position seq. Re-running with the same seq
// overwrites the node in place, so ingestion is repeatable.
func (w *Writer) UpsertTransaction(ctx context.Context, seq int, tx domain.Transaction) error {
	if seq < 0 {
		return fmt.Errorf("upsert transaction %d: %w", tx.ID, ErrNegativeSequence)
	}

	params := map[string]any{
		"seq":             int64(seq),
		"senderFullName":  tx.SenderFullName,
		"beneficiaryName": tx.BeneficiaryFullName,
		"props":           transactionProperties(tx),
	}

	if _, err := w.client.ExecuteWrite(ctx, upsertTransactionCypher, params); err != nil {
		return fmt.Errorf("upsert transaction %d at seq %d: %w", tx.ID, seq, err)
	}
	return nil
}

// Prune removes transactions at or beyond count, left over from a larger
// earlier ingestion.
func (w *Writer) Prune(ctx context.Context, count int) (int64, error) {
	res, err := w.client.ExecuteWrite(ctx, pruneTransactionsCypher, map[string]any{"count": int64(count)})
	if err != nil {
		return 0, fmt.Errorf("prune transactions: %w", err)
	}
	if len(res.Records) == 0 {
		return 0, nil
	}
	switch v := res.Records[0]["removed"].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, nil
	}
}

func transactionProperties(tx domain.Transaction) map[string]any {
	return map[string]any{
		"mtn":            tx.ID,
		"amount":         tx.Amount,
		"senderAge":      int64(tx.SenderAge),
		"beneficiaryAge": int64(tx.BeneficiaryAge),
		"issueId":        int64(tx.IssueID),
		"issueSolved":    tx.IssueSolved,
		"issueMessage":   tx.IssueMessage,
	}
}

var schemaCypher = []string{
	`CREATE CONSTRAINT client_full_name IF NOT EXISTS FOR (c:Client) REQUIRE c.fullName IS UNIQUE`,
	`CREATE CONSTRAINT transaction_seq IF NOT EXISTS FOR (t:Transaction) REQUIRE t.seq IS UNIQUE`,
}

const upsertTransactionCypher = `
MERGE (t:Transaction {seq: $seq})
SET t += $props
MERGE (s:Client {fullName: $senderFullName})
MERGE (b:Client {fullName: $beneficiaryName})
WITH t, s, b
OPTIONAL MATCH (t)-[old]-(:Client)
DELETE old
WITH DISTINCT t, s, b
MERGE (s)-[:SENT]->(t)
MERGE (t)-[:PAID_TO]->(b)
`

const pruneTransactionsCypher = `
MATCH (t:Transaction)
WHERE t.seq >= $count
DETACH DELETE t
RETURN count(*) AS removed
`
