package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/money"
)

// SimpleParser parses the three-column date,description,amount CSV
// format: a header row, ISO dates, and decimal amount strings like
// "12.34". Every row must carry a positive amount.
type SimpleParser struct {
	currency string
}

const (
	simpleNumFields = 3
	simpleColDate   = 0
	simpleColDesc   = 1
	simpleColAmount = 2
)

// NewSimpleParser returns a SimpleParser parsing amounts in the given
// currency.
func NewSimpleParser(currency string) *SimpleParser {
	return &SimpleParser{currency: currency}
}

// Format returns the parser name.
func (p *SimpleParser) Format() string { return "simple" }

// Parse reads the CSV and returns its rows. Any bad row fails the whole
// file; a statement is recorded entirely or not at all.
func (p *SimpleParser) Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = simpleNumFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var rows []Row
	for i, rec := range records[1:] {
		row, err := p.parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (p *SimpleParser) parseRow(rec []string) (Row, error) {
	date, err := model.ParseDate(rec[simpleColDate])
	if err != nil {
		return Row{}, err
	}

	desc := strings.TrimSpace(rec[simpleColDesc])
	if desc == "" {
		return Row{}, fmt.Errorf("empty description")
	}

	amount, err := money.ParseAmount(rec[simpleColAmount], p.currency)
	if err != nil {
		return Row{}, err
	}
	if amount <= 0 {
		return Row{}, fmt.Errorf("amount must be positive, got %q", rec[simpleColAmount])
	}

	return Row{Date: date, Description: desc, Amount: amount}, nil
}
