package t212sync

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// EncodeTransactions writes transactions as JSONL, one transaction per line.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	bw := bufio.NewWriter(w)
	for _, tx := range txs {
		b, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("cannot encode transaction %q: %w", tx.ImportedID, err)
		}
		bw.Write(b)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// DecodeTransactions reads transactions from a JSONL stream. Empty lines are skipped.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	txs := make([]Transaction, 0)
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}
		var tx Transaction
		if err := json.Unmarshal(line, &tx); err != nil {
			return nil, fmt.Errorf("line %d: not a valid transaction: %w", i, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}
