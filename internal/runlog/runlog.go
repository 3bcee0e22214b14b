// Package runlog keeps the append-only CSV record of recurring
// processing runs, one row per attempted template, under
// logs/recurring-runs.csv. The ledger already holds the transactions;
// this log answers "what did the runner try, and when".
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tally-dev/tally/internal/model"
)

// Run outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Entry is one row in the run log. TransactionID is empty when the run
// failed; Details carries the error text then.
type Entry struct {
	Timestamp     time.Time
	RecurringID   string
	ProcessDate   model.Date
	TransactionID string
	Outcome       string
	Details       string
}

// Header is the CSV header for recurring-runs.csv.
const Header = "timestamp,recurring_id,process_date,transaction_id,outcome,details"

const (
	numFields        = 6
	logDir           = "logs"
	logFile          = "logs/recurring-runs.csv"
	colTimestamp     = 0
	colRecurringID   = 1
	colProcessDate   = 2
	colTransactionID = 3
	colOutcome       = 4
	colDetails       = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRecurringID] = e.RecurringID
	row[colProcessDate] = e.ProcessDate.String()
	row[colTransactionID] = e.TransactionID
	row[colOutcome] = e.Outcome
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	processDate, err := model.ParseDate(record[colProcessDate])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing process date: %w", err)
	}

	return Entry{
		Timestamp:     ts,
		RecurringID:   record[colRecurringID],
		ProcessDate:   processDate,
		TransactionID: record[colTransactionID],
		Outcome:       record[colOutcome],
		Details:       record[colDetails],
	}, nil
}

// Append writes entries to <root>/logs/recurring-runs.csv, creating the
// file and header if needed.
func Append(root string, entries []Entry) error {
	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <root>/logs/recurring-runs.csv. Returns
// nil if the file does not exist.
func Read(root string) ([]Entry, error) {
	path := filepath.Join(root, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
