// Package export renders ledger history as a CSV statement download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"casino401k-backend/internal/models"
)

// ExportLimit caps how many transactions one statement carries.
const ExportLimit = 200

var header = []string{
	"timestamp",
	"transaction_id",
	"type",
	"amount",
	"running_balance",
	"description",
	"game_id",
}

// Filename names the download after the user and the export date.
func Filename(userID string, now time.Time) string {
	return fmt.Sprintf("transactions-%s-%s.csv", userID, now.UTC().Format("20060102"))
}

// WriteCSV streams transactions in the order given (newest first from the
// ledger). The game_id column is empty for transactions outside a round.
func WriteCSV(w io.Writer, transactions []models.Transaction) error {
	if len(transactions) > ExportLimit {
		transactions = transactions[:ExportLimit]
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %v", err)
	}

	for _, txn := range transactions {
		record := []string{
			txn.CreatedAt.UTC().Format(time.RFC3339),
			txn.ID,
			string(txn.Type),
			strconv.FormatInt(txn.Amount, 10),
			strconv.FormatInt(txn.BalanceAfter, 10),
			txn.Description,
			txn.GameID,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %v", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
