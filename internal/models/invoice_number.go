package models

import (
	"fmt"
	"strings"
)

const (
	// DefaultInvoicePrefix is used when a tenant has not configured one
	DefaultInvoicePrefix = "INV"

	invoiceSequenceWidth = 6
)

// FormatInvoiceNumber builds a tenant invoice number such as "INV-000001".
// Sequences wider than six digits are kept in full.
func FormatInvoiceNumber(prefix string, seq int64) (string, error) {
	if seq <= 0 {
		return "", fmt.Errorf("invoice sequence must be positive, got %d", seq)
	}

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}

	return fmt.Sprintf("%s-%0*d", prefix, invoiceSequenceWidth, seq), nil
}
