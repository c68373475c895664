package export

import (
	"encoding/csv"
	"io"
	"time"
)

// Row is one exported transaction line.
type Row struct {
	ID           string
	Source       string
	Type         string
	Amount       string
	Currency     string
	Status       string
	CreatedAt    time.Time
	CauseName    string
	Counterparty string
	TxHash       string
}

var header = []string{
	"id", "source", "type", "amount", "currency", "status",
	"created_at", "cause", "counterparty", "tx_hash",
}

// WriteCSV writes the rows as CSV with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.ID, row.Source, row.Type, row.Amount, row.Currency, row.Status,
			row.CreatedAt.Format(time.RFC3339), row.CauseName, row.Counterparty, row.TxHash,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
