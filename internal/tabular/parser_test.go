package tabular

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/solobooks/solobooks/constants"
)

func TestParseCSV(t *testing.T) {
	csvData := []byte("Vendor,Amount,Date,Description\n" +
		"Adobe,52.99,2024-03-01,Creative Cloud\n" +
		"AWS,120.00,2024-03-02,Hosting\n")

	p := NewParser(nil)
	recs := p.ParseCSV(csvData)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	first := recs[0]
	if first.VendorName == nil || *first.VendorName != "Adobe" {
		t.Errorf("vendor = %v, want Adobe", first.VendorName)
	}
	if first.Amount == nil || *first.Amount != 52.99 {
		t.Errorf("amount = %v, want 52.99", first.Amount)
	}
	if first.TransactionDate == nil || *first.TransactionDate != "2024-03-01" {
		t.Errorf("date = %v, want 2024-03-01", first.TransactionDate)
	}
	if first.Confidence != constants.ConfidenceHigh {
		t.Errorf("confidence = %q, want high", first.Confidence)
	}
	if first.Description != "Creative Cloud" {
		t.Errorf("description = %q", first.Description)
	}
	// Row order preserved.
	if recs[1].VendorName == nil || *recs[1].VendorName != "AWS" {
		t.Errorf("second vendor = %v, want AWS", recs[1].VendorName)
	}
}

func TestParseCSVHeaderAliases(t *testing.T) {
	csvData := []byte("merchant,total,transaction_date\n" +
		"Staples,15.49,2024-01-10\n")

	recs := NewParser(nil).ParseCSV(csvData)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if *recs[0].VendorName != "Staples" || *recs[0].Amount != 15.49 {
		t.Errorf("aliased headers not resolved: %+v", recs[0])
	}
}

func TestParseCSVRejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		rows string
	}{
		{name: "missing vendor", rows: ",10.00,2024-01-01\n"},
		{name: "negative amount", rows: "Acme,-5.00,2024-01-01\n"},
		{name: "zero amount", rows: "Acme,0,2024-01-01\n"},
		{name: "unparseable amount", rows: "Acme,abc,2024-01-01\n"},
		{name: "unparseable date", rows: "Acme,10.00,someday\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := []byte("Vendor,Amount,Date\n" + tc.rows + "Good Co,20.00,2024-01-02\n")
			recs := NewParser(nil).ParseCSV(data)
			if len(recs) != 1 {
				t.Fatalf("got %d records, want only the good row", len(recs))
			}
			if *recs[0].VendorName != "Good Co" {
				t.Errorf("surviving vendor = %q", *recs[0].VendorName)
			}
		})
	}
}

func TestParseCSVEmptyAndHeaderless(t *testing.T) {
	p := NewParser(nil)
	if recs := p.ParseCSV(nil); len(recs) != 0 {
		t.Errorf("empty input: got %d records", len(recs))
	}
	if recs := p.ParseCSV([]byte("Vendor,Amount,Date\n")); len(recs) != 0 {
		t.Errorf("header only: got %d records", len(recs))
	}
}

func TestParseSpreadsheet(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Vendor", "Amount", "Date"},
		{"Figma", "12.00", "2024-02-20"},
		{"", "99.00", "2024-02-21"}, // rejected: no vendor
		{"Dell", "899.00", "2024-02-22"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	recs, err := NewParser(nil).ParseSpreadsheet(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseSpreadsheet: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if *recs[0].VendorName != "Figma" || *recs[1].VendorName != "Dell" {
		t.Errorf("row order not preserved: %v, %v", *recs[0].VendorName, *recs[1].VendorName)
	}
}

func TestParseSpreadsheetNotAWorkbook(t *testing.T) {
	if _, err := NewParser(nil).ParseSpreadsheet([]byte("definitely not xlsx")); err == nil {
		t.Fatal("expected error for non-workbook input")
	}
}
