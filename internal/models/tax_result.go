package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SvatVoucher carries the SVAT amount computed by the caller. The engine only
// adds TaxAmount to the totals; it never recomputes it.
type SvatVoucher struct {
	VoucherID     string          `json:"voucher_id"`
	VoucherNumber string          `json:"voucher_number"`
	VoucherValue  decimal.Decimal `json:"voucher_value"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
}

// TaxCalculationInput is everything one calculation reads
type TaxCalculationInput struct {
	Tenant       TenantTaxProfile `json:"tenant"`
	Client       ClientProfile    `json:"client"`
	LineItems    []LineItemInput  `json:"line_items"`
	DateOfSupply time.Time        `json:"date_of_supply"`
	SvatVoucher  *SvatVoucher     `json:"svat_voucher,omitempty"`
}

// TaxBreakdown holds the aggregate tax amounts
type TaxBreakdown struct {
	VATAmount  decimal.Decimal `json:"vat_amount"`
	SSCLAmount decimal.Decimal `json:"sscl_amount"`
	TotalTax   decimal.Decimal `json:"total_tax"`
}

// Rounded returns the breakdown with each aggregate rounded to the cent on its own
func (b TaxBreakdown) Rounded() TaxBreakdown {
	return TaxBreakdown{
		VATAmount:  b.VATAmount.Round(2),
		SSCLAmount: b.SSCLAmount.Round(2),
		TotalTax:   b.TotalTax.Round(2),
	}
}

// TaxSummary splits the taxable base by category
type TaxSummary struct {
	TaxableSupplies   decimal.Decimal `json:"taxable_supplies"`
	ZeroRatedSupplies decimal.Decimal `json:"zero_rated_supplies"`
	ExemptSupplies    decimal.Decimal `json:"exempt_supplies"`
}

// TaxCalculationResult is the full output of one calculation. Amounts are exact;
// round only for presentation or storage.
type TaxCalculationResult struct {
	Subtotal      decimal.Decimal  `json:"subtotal"`
	TotalDiscount decimal.Decimal  `json:"total_discount"`
	TaxBreakdown  TaxBreakdown     `json:"tax_breakdown"`
	Total         decimal.Decimal  `json:"total"`
	TaxSummary    TaxSummary       `json:"tax_summary"`
	LineItems     []LineItemResult `json:"line_items"`

	Regime       TaxRegime       `json:"regime"`
	VATRate      decimal.Decimal `json:"vat_rate"`
	SSCLRate     decimal.Decimal `json:"sscl_rate"`
	DateOfSupply time.Time       `json:"date_of_supply"`
	FiscalYear   string          `json:"fiscal_year"`
}

// HasTaxableLines returns true if any line is taxable (standard or zero-rated)
func (r *TaxCalculationResult) HasTaxableLines() bool {
	for _, line := range r.LineItems {
		if !line.IsExempt() {
			return true
		}
	}
	return false
}

// ValidationResult is the outcome of a compliance check. Errors block issuance;
// warnings are advisory.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// NewValidationResult returns a passing result with empty, non-nil lists
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}
}

// AddError records a blocking error
func (r *ValidationResult) AddError(message string) {
	r.Errors = append(r.Errors, message)
	r.Valid = false
}

// AddWarning records an advisory message
func (r *ValidationResult) AddWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}
