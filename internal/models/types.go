package models

import (
	"time"
)

// Common constants
const (
	// MaxLineItemsPerInvoice bounds a single invoice request
	MaxLineItemsPerInvoice = 200

	// DefaultListLimit is used when a list request does not set a limit
	DefaultListLimit = 50

	// MaxListLimit caps list requests
	MaxListLimit = 500
)

// InvoiceFilters represents search and filter parameters for invoice listings
type InvoiceFilters struct {
	ClientID  string        `json:"client_id,omitempty" form:"client_id"`
	Status    InvoiceStatus `json:"status,omitempty" form:"status"`
	StartDate *time.Time    `json:"start_date,omitempty" form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time    `json:"end_date,omitempty" form:"end_date" time_format:"2006-01-02"`
	Limit     int           `json:"limit,omitempty" form:"limit"`
	Offset    int           `json:"offset,omitempty" form:"offset"`
}

// Normalize applies the default and maximum limit
func (f *InvoiceFilters) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// PaginationResult represents paginated results
type PaginationResult struct {
	Total       int  `json:"total"`
	Limit       int  `json:"limit"`
	Offset      int  `json:"offset"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// NewPaginationResult computes navigation flags for a page
func NewPaginationResult(total, limit, offset int) *PaginationResult {
	return &PaginationResult{
		Total:       total,
		Limit:       limit,
		Offset:      offset,
		HasNext:     offset+limit < total,
		HasPrevious: offset > 0,
	}
}

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return ve.Message
}

// HealthCheck represents system health status
type HealthCheck struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
}
