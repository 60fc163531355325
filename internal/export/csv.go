// Package export renders balance exports for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledger"
)

const (
	// Filename is the suggested name of a downloaded balance sheet.
	Filename = "balance_sheet.csv"

	timeLayout = "2006-01-02 15:04:05"
)

// Header is the first line of every balance sheet.
var Header = []string{"Expense ID", "Description", "Total Amount", "Payer", "User ID", "Share", "Created At"}

// WriteCSV writes the header and one line per row. Amounts have two decimals
// and timestamps are UTC.
func WriteCSV(w io.Writer, rows []ledger.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.ExpenseID,
			row.Description,
			formatAmount(row.TotalAmount),
			row.Payer,
			row.UserID,
			formatAmount(row.Share),
			time.Unix(row.CreatedAt, 0).UTC().Format(timeLayout),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row for expense %s: %w", row.ExpenseID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
