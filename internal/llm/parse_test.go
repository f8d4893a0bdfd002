package llm

import (
	"errors"
	"testing"
)

func TestParseExtraction(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ExpenseFields
	}{
		{
			name: "plain object",
			raw:  `{"vendorName":"Adobe","amount":"52.99","transactionDate":"2024-03-01","currency":"usd","confidence":"high"}`,
			want: ExpenseFields{VendorName: "Adobe", Amount: "52.99", TransactionDate: "2024-03-01", Currency: "usd", Confidence: "high"},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"vendorName\":\"AWS\",\"amount\":\"120.00\"}\n```",
			want: ExpenseFields{VendorName: "AWS", Amount: "120.00"},
		},
		{
			name: "fence without language tag",
			raw:  "```\n{\"vendorName\":\"AWS\",\"amount\":\"1.00\"}\n```",
			want: ExpenseFields{VendorName: "AWS", Amount: "1.00"},
		},
		{
			name: "numeric amount coerced",
			raw:  `{"vendorName":"Uber","amount":23.5}`,
			want: ExpenseFields{VendorName: "Uber", Amount: "23.50"},
		},
		{
			name: "line items as array",
			raw:  `{"vendorName":"Staples","amount":"9.99","lineItems":["pens","paper"]}`,
			want: ExpenseFields{VendorName: "Staples", Amount: "9.99", LineItems: "pens, paper"},
		},
		{
			name: "unknown confidence dropped",
			raw:  `{"vendorName":"X","amount":"1.00","confidence":"very sure"}`,
			want: ExpenseFields{VendorName: "X", Amount: "1.00"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseExtraction([]byte(tc.raw))
			if err != nil {
				t.Fatalf("ParseExtraction: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParseExtractionFailure(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "free text", raw: "I could not read this receipt, sorry."},
		{name: "json array", raw: `["vendorName","amount"]`},
		{name: "bare null", raw: `null`},
		{name: "fenced null", raw: "```json\nnull\n```"},
		{name: "empty", raw: ""},
		{name: "truncated object", raw: `{"vendorName":"Ad`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseExtraction([]byte(tc.raw))
			if !errors.Is(err, ErrUnparsable) {
				t.Fatalf("err = %v, want ErrUnparsable", err)
			}
		})
	}
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := BuildExpenseJSONSchema()
	good := []byte(`{"vendorName":"Adobe","amount":"52.99","transactionDate":"2024-03-01"}`)
	if err := ValidateJSONAgainstSchema(schema, good); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}
	bad := []byte(`{"vendorName":"Adobe","amount":"fifty"}`)
	if err := ValidateJSONAgainstSchema(schema, bad); err == nil {
		t.Error("invalid amount accepted")
	}
}
