// Package tabular turns CSV and spreadsheet exports into extracted records.
// Malformed rows are dropped with a diagnostic rather than failing the file;
// everything that survives is structured data and carries high confidence.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/solobooks/solobooks/constants"
	"github.com/solobooks/solobooks/internal/entity"
	"github.com/solobooks/solobooks/internal/normalize"
)

type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseCSV decodes data as UTF-8 CSV and returns one record per accepted row,
// in file order. Rows with mismatched field counts are skipped.
func (p *Parser) ParseCSV(data []byte) []entity.ExtractedRecord {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		p.logger.Debug("tabular.csv.no_header", "error", err)
		return nil
	}

	var out []entity.ExtractedRecord
	line := 1
	for {
		line++
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			p.logger.Debug("tabular.csv.row_skipped", "line", line, "error", err)
			continue
		}
		row := make(rowMap, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		if er, ok := p.buildRecord(row); ok {
			out = append(out, er)
		} else {
			p.logger.Debug("tabular.csv.row_rejected", "line", line)
		}
	}
	return out
}

// ParseSpreadsheet opens data as a workbook and parses the first sheet only.
// Cell values arrive as excelize's formatted strings, which keeps serial-date
// handling in the normalizer.
func (p *Parser) ParseSpreadsheet(data []byte) ([]entity.ExtractedRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			p.logger.Warn("tabular.xlsx.close_error", "error", cerr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	var out []entity.ExtractedRecord
	for i, cells := range rows[1:] {
		row := make(rowMap, len(header))
		for j, h := range header {
			if j < len(cells) {
				row[h] = cells[j]
			}
		}
		if er, ok := p.buildRecord(row); ok {
			out = append(out, er)
		} else {
			p.logger.Debug("tabular.xlsx.row_rejected", "sheet", sheets[0], "row", i+2)
		}
	}
	return out, nil
}

// buildRecord applies the acceptance rule: vendor present, amount positive,
// date normalizes. Anything else is dropped, never surfaced as a record.
func (p *Parser) buildRecord(row rowMap) (entity.ExtractedRecord, bool) {
	vendorCell, _ := row.lookup("vendor")
	vendor := normalize.String(vendorCell)
	if vendor == "" {
		return entity.ExtractedRecord{}, false
	}

	amountCell, _ := row.lookup("amount")
	amount, ok := normalize.Amount(amountCell)
	if !ok {
		return entity.ExtractedRecord{}, false
	}

	dateCell, _ := row.lookup("date")
	date, ok := normalize.Date(dateCell)
	if !ok {
		return entity.ExtractedRecord{}, false
	}

	rec := entity.ExtractedRecord{
		VendorName:      &vendor,
		Amount:          &amount,
		TransactionDate: &date,
		CurrencyCode:    "USD",
		Confidence:      constants.ConfidenceHigh,
	}
	if v, ok := row.lookup("desc"); ok {
		rec.Description = normalize.String(v)
	}
	if v, ok := row.lookup("invoice"); ok {
		rec.InvoiceNumber = normalize.String(v)
	}
	if v, ok := row.lookup("currency"); ok {
		rec.CurrencyCode = normalize.Currency(normalize.String(v))
	}
	if v, ok := row.lookup("notes"); ok {
		rec.Notes = normalize.String(v)
	}
	return rec, true
}
