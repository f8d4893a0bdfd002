package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/solobooks/solobooks/internal/entity"
	"github.com/solobooks/solobooks/internal/repository"
)

type fakeExpenses struct {
	rows    []entity.Expense
	gotFrom *time.Time
	gotTo   *time.Time
	gotUser uuid.UUID
}

func (f *fakeExpenses) CreateExpense(context.Context, *repository.CreateExpenseRequest) (*entity.Expense, error) {
	panic("not used")
}

func (f *fakeExpenses) ListExpenses(_ context.Context, userID uuid.UUID, from, to *time.Time) ([]entity.Expense, error) {
	f.gotUser = userID
	f.gotFrom = from
	f.gotTo = to
	return f.rows, nil
}

type fakeCategories struct {
	cats []entity.Category
}

func (f *fakeCategories) ListCategories(context.Context, uuid.UUID, string) ([]entity.Category, error) {
	return f.cats, nil
}

func (f *fakeCategories) Exists(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return true, nil
}

func TestExportExpensesXLSX(t *testing.T) {
	software := entity.Category{ID: uuid.New(), Name: "Software", CategoryType: "expense"}
	userID := uuid.New()
	expenses := &fakeExpenses{rows: []entity.Expense{
		{
			UserID:       userID,
			VendorName:   "Adobe",
			Amount:       52.99,
			TxDate:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			CurrencyCode: "USD",
			Description:  "Creative Cloud",
			CategoryID:   &software.ID,
		},
		{
			UserID:       userID,
			VendorName:   "AWS",
			Amount:       120,
			TxDate:       time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			CurrencyCode: "USD",
		},
	}}
	svc := NewService(expenses, &fakeCategories{cats: []entity.Category{software}}, nil)

	data, err := svc.ExportExpensesXLSX(context.Background(), userID, nil, nil)
	if err != nil {
		t.Fatalf("ExportExpensesXLSX: %v", err)
	}
	if expenses.gotUser != userID {
		t.Errorf("queried user = %v", expenses.gotUser)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("opening produced workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Expenses")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "Transaction Date" || rows[0][1] != "Vendor" {
		t.Errorf("header row = %v", rows[0])
	}
	if rows[1][0] != "2024-03-01" || rows[1][1] != "Adobe" || rows[1][2] != "Software" {
		t.Errorf("first data row = %v", rows[1])
	}
	if rows[2][1] != "AWS" {
		t.Errorf("second data row = %v", rows[2])
	}
}

func TestExportDateWindowNormalization(t *testing.T) {
	expenses := &fakeExpenses{}
	svc := NewService(expenses, &fakeCategories{}, nil)

	from := time.Date(2024, 1, 15, 13, 45, 0, 0, time.Local)
	if _, err := svc.ExportExpensesXLSX(context.Background(), uuid.New(), &from, nil); err != nil {
		t.Fatalf("ExportExpensesXLSX: %v", err)
	}
	if expenses.gotFrom == nil || !expenses.gotFrom.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v, want 2024-01-15 UTC midnight", expenses.gotFrom)
	}
	// A from without a to closes the window at today.
	if expenses.gotTo == nil {
		t.Error("to not defaulted when from is set")
	}
}
