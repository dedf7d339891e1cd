package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"expensebot/internal/core"
)

// CSV renders entries as a CSV document with the export header the bot
// has always used. An empty entry set still yields the header row.
func CSV(entries []core.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Date", "Amount", "Category", "Username"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			e.OccurredAt.Format("2006-01-02 15:04:05"),
			e.Amount.String(),
			e.Category,
			e.Username,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
