package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanshika/txinsights/internal/domain"
)

// DefaultFileName is the file name written by WriteDataset.
const DefaultFileName = "transactions.json"

// WriteDataset serializes txs as an indented JSON array to path, creating
// parent directories as needed.
func WriteDataset(txs []domain.Transaction, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return writeJSON(path, txs)
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}
