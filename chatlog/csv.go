package chatlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

var csvHeader = []string{"session_id", "turn", "input", "response", "source", "matched", "timestamp"}

// WriteCSV exports the transcript to a CSV file.
func WriteCSV(t *Transcript, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return WriteCSVTo(t, f)
}

// WriteCSVTo exports the transcript as CSV, one row per exchange, sessions
// ordered by ID and exchanges by turn.
func WriteCSVTo(t *Transcript, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, trace := range t.Traces() {
		for _, ex := range trace.Exchanges {
			row := []string{
				ex.SessionID,
				strconv.Itoa(ex.Turn),
				ex.Input,
				ex.Response,
				ex.Source,
				strconv.FormatBool(ex.Matched),
				ex.Timestamp.Format(time.RFC3339),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing exchange: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
