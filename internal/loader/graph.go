package loader

import (
	"context"
	"fmt"

	"github.com/vanshika/txinsights/internal/domain"
	"github.com/vanshika/txinsights/internal/graph"
)

// GraphLoader reads transaction nodes written by the ingestor, in ingestion
// order.
type GraphLoader struct {
	client graph.Client
}

// NewGraphLoader returns a loader backed by client.
func NewGraphLoader(client graph.Client) *GraphLoader {
	return &GraphLoader{client: client}
}

func (l *GraphLoader) Describe() string { return "graph" }

func (l *GraphLoader) Load(ctx context.Context) ([]domain.Transaction, error) {
	res, err := l.client.ExecuteRead(ctx, loadTransactionsCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: graph query: %w", ErrLoad, err)
	}

	txs := make([]domain.Transaction, 0, len(res.Records))
	for _, record := range res.Records {
		txs = append(txs, domain.Transaction{
			ID:                  toInt64(record["mtn"]),
			Amount:              toFloat64(record["amount"]),
			SenderFullName:      toString(record["senderFullName"]),
			SenderAge:           int(toInt64(record["senderAge"])),
			BeneficiaryFullName: toString(record["beneficiaryFullName"]),
			BeneficiaryAge:      int(toInt64(record["beneficiaryAge"])),
			IssueID:             int(toInt64(record["issueId"])),
			IssueSolved:         toBool(record["issueSolved"]),
			IssueMessage:        toString(record["issueMessage"]),
		})
	}
	return txs, nil
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func toBool(val any) bool {
	v, _ := val.(bool)
	return v
}

const loadTransactionsCypher = `
MATCH (s:Client)-[:SENT]->(t:Transaction)-[:PAID_TO]->(b:Client)
RETURN t.mtn AS mtn,
       t.amount AS amount,
       s.fullName AS senderFullName,
       t.senderAge AS senderAge,
       b.fullName AS beneficiaryFullName,
       t.beneficiaryAge AS beneficiaryAge,
       t.issueId AS issueId,
       t.issueSolved AS issueSolved,
       t.issueMessage AS issueMessage
ORDER BY t.seq ASC
`
