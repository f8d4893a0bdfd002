package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/solobooks/solobooks/constants"
)

// ExtractedRecord is one candidate expense pending user review. The same shape
// comes out of every source format; fields the source could not produce are nil.
type ExtractedRecord struct {
	TempID       string `json:"temp_id"`
	FileName     string `json:"file_name"`
	FileSize     int64  `json:"file_size"`
	FileMimeType string `json:"file_mime_type"`

	VendorName      *string  `json:"vendor_name,omitempty"`
	Amount          *float64 `json:"amount,omitempty"`
	TransactionDate *string  `json:"transaction_date,omitempty"` // YYYY-MM-DD
	Description     string   `json:"description,omitempty"`
	InvoiceNumber   string   `json:"invoice_number,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	LineItems       string   `json:"line_items,omitempty"`
	CurrencyCode    string   `json:"currency_code"`

	Confidence      constants.Confidence `json:"confidence"`
	CategoryID      *uuid.UUID           `json:"category_id,omitempty"`
	PaymentMethodID *uuid.UUID           `json:"payment_method_id,omitempty"`

	// Error is set only when processing the source file failed; financial
	// fields are absent and Confidence is low in that case.
	Error string `json:"error,omitempty"`

	// RawResponse keeps the unparsable extraction-service output for manual
	// review. Diagnostic only, never fed into expense creation.
	RawResponse string `json:"raw_response,omitempty"`
}

// Usable reports whether the record can be turned into a permanent expense
// without the caller overriding anything.
func (r *ExtractedRecord) Usable() bool {
	return r.Error == "" &&
		r.VendorName != nil && *r.VendorName != "" &&
		r.Amount != nil && *r.Amount > 0 &&
		r.TransactionDate != nil && *r.TransactionDate != ""
}

// StagedFile holds one original upload inside a staged session. Bytes are
// base64-encoded so the whole session serializes as JSON text.
type StagedFile struct {
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
	Base64Data   string `json:"base64_data"`
}

// IngestionSession is the staged unit of work between upload and confirmation.
// It lives in the staging store under a random handle, namespaced by owner, and
// expires after constants.SessionTTL unless consumed first.
type IngestionSession struct {
	UserID            uuid.UUID         `json:"user_id"`
	ExtractedExpenses []ExtractedRecord `json:"extracted_expenses"`
	Files             []StagedFile      `json:"files"`
	CreatedAt         time.Time         `json:"created_at"`
}

// FindRecord returns the extracted record with the given temp id, or nil.
func (s *IngestionSession) FindRecord(tempID string) *ExtractedRecord {
	for i := range s.ExtractedExpenses {
		if s.ExtractedExpenses[i].TempID == tempID {
			return &s.ExtractedExpenses[i]
		}
	}
	return nil
}

// FindFile returns the staged file with the given original name, or nil.
func (s *IngestionSession) FindFile(name string) *StagedFile {
	for i := range s.Files {
		if s.Files[i].OriginalName == name {
			return &s.Files[i]
		}
	}
	return nil
}
