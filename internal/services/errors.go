package services

import (
	"errors"
	"fmt"
	"strings"

	"lanka-invoice-api/internal/models"
)

var (
	// ErrInvalidRequest is returned when a request fails validation
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvoiceNotDraft is returned when an operation needs a draft invoice
	ErrInvoiceNotDraft = errors.New("invoice is not a draft")

	// ErrInvoiceValidationFailed is returned when an invoice has blocking tax validation errors
	ErrInvoiceValidationFailed = errors.New("invoice failed tax validation")

	// ErrTaxProfileChanged is returned when the tenant's tax settings changed since drafting
	// in a way that changes the invoice amounts
	ErrTaxProfileChanged = errors.New("tenant tax settings changed since the invoice was drafted")

	// ErrInvalidTrackingURL is returned when a click target is not an absolute http(s) URL
	ErrInvalidTrackingURL = errors.New("invalid tracking target URL")

	// ErrDocumentNotFound is returned when an invoice has no issued document
	ErrDocumentNotFound = errors.New("invoice document not found")
)

// FieldError describes one failed request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RequestValidationError lists every failed field of a request
type RequestValidationError struct {
	Fields []FieldError
}

// Error implements the error interface
func (e *RequestValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidRequest, strings.Join(parts, "; "))
}

// Unwrap returns ErrInvalidRequest
func (e *RequestValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// InvoiceValidationError carries the validation result that blocked an operation
type InvoiceValidationError struct {
	Result *models.ValidationResult
}

// Error implements the error interface
func (e *InvoiceValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvoiceValidationFailed, strings.Join(e.Result.Errors, "; "))
}

// Unwrap returns ErrInvoiceValidationFailed
func (e *InvoiceValidationError) Unwrap() error {
	return ErrInvoiceValidationFailed
}
