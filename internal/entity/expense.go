package entity

import (
	"time"

	"github.com/google/uuid"
)

// Expense represents a permanent expense row for data transfer between layers.
type Expense struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	VendorName      string     `json:"vendor_name"`
	Amount          float64    `json:"amount"`
	TxDate          time.Time  `json:"tx_date"`
	CurrencyCode    string     `json:"currency_code"`
	Description     string     `json:"description,omitempty"`
	InvoiceNumber   string     `json:"invoice_number,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CategoryID      *uuid.UUID `json:"category_id,omitempty"`
	PaymentMethodID *uuid.UUID `json:"payment_method_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Attachment links a stored original document to an expense.
type Attachment struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	EntityType string    `json:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	StorageKey string    `json:"storage_key"`
	CreatedAt  time.Time `json:"created_at"`
}
