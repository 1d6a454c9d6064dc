package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vanshika/txinsights/internal/domain"
)

// FileLoader reads a JSON array of transaction objects from disk.
type FileLoader struct {
	path string
}

// NewFileLoader returns a loader for the file at path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (l *FileLoader) Describe() string { return "file:" + l.path }

func (l *FileLoader) Load(ctx context.Context) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrLoad, l.path, err)
	}
	defer file.Close()

	txs, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrLoad, l.path, err)
	}
	return txs, nil
}

// Decode parses a JSON array of transaction objects. The identifier may be
// given as "mtn" or "id"; "mtn" wins when both are present.
func Decode(r io.Reader) ([]domain.Transaction, error) {
	decoder := json.NewDecoder(r)

	var rows []transactionRow
	if err := decoder.Decode(&rows); err != nil {
		return nil, err
	}
	if decoder.More() {
		return nil, fmt.Errorf("unexpected data after transaction array")
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, row.toDomain())
	}
	return txs, nil
}

type transactionRow struct {
	MTN                 *int64  `json:"mtn"`
	ID                  *int64  `json:"id"`
	Amount              float64 `json:"amount"`
	SenderFullName      string  `json:"senderFullName"`
	SenderAge           int     `json:"senderAge"`
	BeneficiaryFullName string  `json:"beneficiaryFullName"`
	BeneficiaryAge      int     `json:"beneficiaryAge"`
	IssueID             int     `json:"issueId"`
	IssueSolved         bool    `json:"issueSolved"`
	IssueMessage        string  `json:"issueMessage"`
}

func (r transactionRow) toDomain() domain.Transaction {
	var id int64
	switch {
	case r.MTN != nil:
		id = *r.MTN
	case r.ID != nil:
		id = *r.ID
	}
	return domain.Transaction{
		ID:                  id,
		Amount:              r.Amount,
		SenderFullName:      r.SenderFullName,
		SenderAge:           r.SenderAge,
		BeneficiaryFullName: r.BeneficiaryFullName,
		BeneficiaryAge:      r.BeneficiaryAge,
		IssueID:             r.IssueID,
		IssueSolved:         r.IssueSolved,
		IssueMessage:        r.IssueMessage,
	}
}
