package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxCategory classifies a line for VAT purposes
type TaxCategory string

const (
	TaxCategoryStandard  TaxCategory = "standard"
	TaxCategoryZeroRated TaxCategory = "zero-rated"
	TaxCategoryExempt    TaxCategory = "exempt"
)

// IsValid reports whether the category is one of the known values
func (c TaxCategory) IsValid() bool {
	switch c {
	case TaxCategoryStandard, TaxCategoryZeroRated, TaxCategoryExempt:
		return true
	}
	return false
}

// LineItemInput is one invoice row as supplied by the caller.
// Discount is a fraction: 1.0 means 100%.
type LineItemInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Taxable     bool            `json:"taxable"`
	TaxCategory TaxCategory     `json:"tax_category"`
}

// IsExempt returns true for lines excluded from all tax, including SSCL
func (li LineItemInput) IsExempt() bool {
	return !li.Taxable || li.TaxCategory == TaxCategoryExempt
}

// IsZeroRated returns true for taxable lines charged VAT at 0%
func (li LineItemInput) IsZeroRated() bool {
	return !li.IsExempt() && li.TaxCategory == TaxCategoryZeroRated
}

// Validate enforces the ranges the calculation relies on
func (li LineItemInput) Validate() error {
	if strings.TrimSpace(li.Description) == "" {
		return fmt.Errorf("line item description is required")
	}

	if !li.Quantity.IsPositive() {
		return fmt.Errorf("quantity must be greater than 0")
	}

	if li.UnitPrice.IsNegative() {
		return fmt.Errorf("unit price cannot be negative")
	}

	if li.Discount.IsNegative() || li.Discount.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("discount must be between 0 and 1")
	}

	if !li.TaxCategory.IsValid() {
		return fmt.Errorf("invalid tax category: %s", li.TaxCategory)
	}

	return nil
}

// LineItemResult is a line input together with its computed amounts
type LineItemResult struct {
	LineItemInput
	LineSubtotal   decimal.Decimal `json:"line_subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// InvoiceLineItem is a persisted invoice row
type InvoiceLineItem struct {
	ID        string `json:"id" db:"id"`
	InvoiceID string `json:"invoice_id" db:"invoice_id"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
	LineItemResult
}

// NewInvoiceLineItem creates a persisted row from a calculated line
func NewInvoiceLineItem(invoiceID string, result LineItemResult, sortOrder int) *InvoiceLineItem {
	return &InvoiceLineItem{
		ID:             uuid.New().String(),
		InvoiceID:      invoiceID,
		SortOrder:      sortOrder,
		LineItemResult: result,
	}
}

// GetDisplayText returns the description with quantity for listings
func (li *InvoiceLineItem) GetDisplayText() string {
	return fmt.Sprintf("%s x %s", li.Description, li.Quantity.String())
}
