package entity

import "github.com/google/uuid"

// Category represents a category for data transfer between layers. Reference
// data from this core's perspective: read, never written.
type Category struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	CategoryType string    `json:"category_type"` // expense | revenue
}
