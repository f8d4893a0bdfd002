package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/solobooks/solobooks/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	expenses   repository.ExpenseRepository
	categories repository.CategoryRepository
	logger     *slog.Logger
}

func NewService(expenses repository.ExpenseRepository, categories repository.CategoryRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{expenses: expenses, categories: categories, logger: logger}
}

// ExportExpensesXLSX returns an XLSX workbook (as bytes) for the given user and
// date window. If only from is provided -> from..today (inclusive).
// If only to is provided -> beginning..to (inclusive).
// If neither is provided -> all expenses for the user.
func (s *Service) ExportExpensesXLSX(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC)
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		toDate = &t
	}

	recs, err := s.expenses.ListExpenses(ctx, userID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}

	// Category names resolved once; a lookup failure leaves the column blank.
	catNames := map[uuid.UUID]string{}
	if s.categories != nil {
		if cats, err := s.categories.ListCategories(ctx, userID, ""); err == nil {
			for _, c := range cats {
				catNames[c.ID] = c.Name
			}
		}
	}

	f := excelize.NewFile()
	const sheet = "Expenses"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Transaction Date",
		"Vendor",
		"Category",
		"Amount",
		"Currency",
		"Invoice Number",
		"Description/Notes",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if !r.TxDate.IsZero() {
			write(1, r.TxDate.Format("2006-01-02"))
		} else {
			write(1, "")
		}
		write(2, r.VendorName)
		category := ""
		if r.CategoryID != nil {
			category = catNames[*r.CategoryID]
		}
		write(3, category)
		write(4, r.Amount)
		write(5, r.CurrencyCode)
		write(6, r.InvoiceNumber)
		notes := r.Description
		if r.Notes != "" {
			if notes != "" {
				notes += "; "
			}
			notes += r.Notes
		}
		write(7, truncate(notes, 140))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 14) // date
	_ = f.SetColWidth(sheet, "B", "B", 28) // vendor
	_ = f.SetColWidth(sheet, "C", "C", 22) // category
	_ = f.SetColWidth(sheet, "D", "E", 12) // amount, currency
	_ = f.SetColWidth(sheet, "F", "F", 18) // invoice
	_ = f.SetColWidth(sheet, "G", "G", 48) // notes

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"user_id", userID.String(),
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
