package llm

import "context"

// ExpenseFields is the normalized shape we want from the extraction service.
// All money and date values arrive as strings and are coerced downstream.
type ExpenseFields struct {
	VendorName      string `json:"vendorName"`
	Amount          string `json:"amount"`          // decimal
	TransactionDate string `json:"transactionDate"` // YYYY-MM-DD
	Description     string `json:"description,omitempty"`
	InvoiceNumber   string `json:"invoiceNumber,omitempty"`
	Currency        string `json:"currency,omitempty"` // ISO 4217
	LineItems       string `json:"lineItems,omitempty"`
	Confidence      string `json:"confidence,omitempty"` // high | medium | low
}

// Extractor is the interface the document pipeline depends on. Both methods
// return the raw model output; transport and auth failures are the only
// errors. Malformed content is still a successful call and is handled by the
// parser.
type Extractor interface {
	ExtractFromText(ctx context.Context, text string) ([]byte, error)
	ExtractFromImage(ctx context.Context, data []byte, mimeType string) ([]byte, error)
}
