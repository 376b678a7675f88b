package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceType distinguishes VAT tax invoices from plain commercial invoices
type InvoiceType string

const (
	InvoiceTypeTaxInvoice InvoiceType = "tax_invoice"
	InvoiceTypeInvoice    InvoiceType = "invoice"
)

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusSent          InvoiceStatus = "sent"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusVoid          InvoiceStatus = "void"
)

var (
	// ErrInvalidInvoiceState is returned when a lifecycle transition is not allowed
	ErrInvalidInvoiceState = errors.New("invalid invoice state")

	// ErrPaymentExceedsBalance is returned when a payment is larger than the balance due
	ErrPaymentExceedsBalance = errors.New("payment exceeds balance due")
)

// Invoice represents an issued or draft invoice. Amount fields hold the
// calculation result rounded to the cent.
type Invoice struct {
	ID            string        `json:"id" db:"id" validate:"required,uuid"`
	TenantID      string        `json:"tenant_id" db:"tenant_id" validate:"required"`
	ClientID      string        `json:"client_id" db:"client_id" validate:"required"`
	InvoiceNumber string        `json:"invoice_number" db:"invoice_number"`
	InvoiceType   InvoiceType   `json:"invoice_type" db:"invoice_type" validate:"required,oneof=tax_invoice invoice"`
	Status        InvoiceStatus `json:"status" db:"status"`
	Currency      string        `json:"currency" db:"currency"`
	IssueDate     time.Time     `json:"issue_date" db:"issue_date"`
	DateOfSupply  time.Time     `json:"date_of_supply" db:"date_of_supply"`
	DueDate       *time.Time    `json:"due_date,omitempty" db:"due_date"`
	FiscalYear    string        `json:"fiscal_year" db:"fiscal_year"`

	Subtotal          decimal.Decimal `json:"subtotal" db:"subtotal"`
	TotalDiscount     decimal.Decimal `json:"total_discount" db:"total_discount"`
	VATAmount         decimal.Decimal `json:"vat_amount" db:"vat_amount"`
	SSCLAmount        decimal.Decimal `json:"sscl_amount" db:"sscl_amount"`
	TotalTax          decimal.Decimal `json:"total_tax" db:"total_tax"`
	Total             decimal.Decimal `json:"total" db:"total"`
	TaxableSupplies   decimal.Decimal `json:"taxable_supplies" db:"taxable_supplies"`
	ZeroRatedSupplies decimal.Decimal `json:"zero_rated_supplies" db:"zero_rated_supplies"`
	ExemptSupplies    decimal.Decimal `json:"exempt_supplies" db:"exempt_supplies"`
	AmountPaid        decimal.Decimal `json:"amount_paid" db:"amount_paid"`

	SvatVoucher           *SvatVoucher `json:"svat_voucher,omitempty" db:"-"`
	Notes                 *string      `json:"notes,omitempty" db:"notes"`
	TenantProfileSnapshot string       `json:"tenant_profile_snapshot" db:"tenant_profile_snapshot"`
	ClientProfileSnapshot string       `json:"client_profile_snapshot" db:"client_profile_snapshot"`
	SentAt                *time.Time   `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt             time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at" db:"updated_at"`

	// Associations (not stored in the invoices table, loaded separately)
	LineItems []InvoiceLineItem `json:"line_items,omitempty"`
}

// NewInvoice creates a draft invoice with generated ID and timestamps
func NewInvoice(tenantID, clientID string, invoiceType InvoiceType) *Invoice {
	now := time.Now().UTC()
	return &Invoice{
		ID:                uuid.New().String(),
		TenantID:          tenantID,
		ClientID:          clientID,
		InvoiceType:       invoiceType,
		Status:            InvoiceStatusDraft,
		Currency:          "LKR",
		IssueDate:         now,
		DateOfSupply:      now,
		Subtotal:          decimal.Zero,
		TotalDiscount:     decimal.Zero,
		VATAmount:         decimal.Zero,
		SSCLAmount:        decimal.Zero,
		TotalTax:          decimal.Zero,
		Total:             decimal.Zero,
		TaxableSupplies:   decimal.Zero,
		ZeroRatedSupplies: decimal.Zero,
		ExemptSupplies:    decimal.Zero,
		AmountPaid:        decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Validate validates the invoice data
func (i *Invoice) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("invoice ID is required")
	}

	if i.TenantID == "" {
		return fmt.Errorf("tenant ID is required")
	}

	if i.ClientID == "" {
		return fmt.Errorf("client ID is required")
	}

	if i.InvoiceType != InvoiceTypeTaxInvoice && i.InvoiceType != InvoiceTypeInvoice {
		return fmt.Errorf("invalid invoice type: %s", i.InvoiceType)
	}

	if i.DateOfSupply.IsZero() {
		return fmt.Errorf("date of supply is required")
	}

	if i.Total.IsNegative() {
		return fmt.Errorf("total cannot be negative")
	}

	expected := i.Subtotal.Sub(i.TotalDiscount).Add(i.TotalTax)
	if expected.Sub(i.Total).Abs().GreaterThan(decimal.New(1, -2)) {
		return fmt.Errorf("total does not match subtotal - discount + tax")
	}

	return nil
}

// ApplyCalculation copies a calculation result onto the invoice, rounding the
// aggregates to the cent and replacing the line items
func (i *Invoice) ApplyCalculation(result *TaxCalculationResult) {
	breakdown := result.TaxBreakdown.Rounded()

	i.Subtotal = result.Subtotal.Round(2)
	i.TotalDiscount = result.TotalDiscount.Round(2)
	i.VATAmount = breakdown.VATAmount
	i.SSCLAmount = breakdown.SSCLAmount
	i.TotalTax = breakdown.TotalTax
	i.Total = result.Total.Round(2)
	i.TaxableSupplies = result.TaxSummary.TaxableSupplies.Round(2)
	i.ZeroRatedSupplies = result.TaxSummary.ZeroRatedSupplies.Round(2)
	i.ExemptSupplies = result.TaxSummary.ExemptSupplies.Round(2)
	i.DateOfSupply = result.DateOfSupply
	i.FiscalYear = result.FiscalYear

	i.LineItems = make([]InvoiceLineItem, 0, len(result.LineItems))
	for idx, line := range result.LineItems {
		i.LineItems = append(i.LineItems, *NewInvoiceLineItem(i.ID, line, idx+1))
	}
}

// HasTaxableLines returns true if any line is taxable (standard or zero-rated)
func (i *Invoice) HasTaxableLines() bool {
	for _, line := range i.LineItems {
		if !line.IsExempt() {
			return true
		}
	}
	return false
}

// BalanceDue returns the unpaid remainder
func (i *Invoice) BalanceDue() decimal.Decimal {
	return i.Total.Sub(i.AmountPaid)
}

// IsDraft returns true while the invoice can still be edited
func (i *Invoice) IsDraft() bool {
	return i.Status == InvoiceStatusDraft
}

// MarkSent moves a draft invoice to sent
func (i *Invoice) MarkSent(at time.Time) error {
	if i.Status != InvoiceStatusDraft {
		return fmt.Errorf("%w: only draft invoices can be sent, invoice is %s", ErrInvalidInvoiceState, i.Status)
	}
	i.Status = InvoiceStatusSent
	i.SentAt = &at
	i.UpdatedAt = at
	return nil
}

// ApplyPayment adds a payment to the amount paid and updates the status
func (i *Invoice) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("payment amount must be greater than 0")
	}

	switch i.Status {
	case InvoiceStatusSent, InvoiceStatusPartiallyPaid:
	default:
		return fmt.Errorf("%w: payments can only be recorded against sent invoices, invoice is %s", ErrInvalidInvoiceState, i.Status)
	}

	if amount.GreaterThan(i.BalanceDue()) {
		return fmt.Errorf("%w: payment of %s, balance due %s", ErrPaymentExceedsBalance, amount.StringFixed(2), i.BalanceDue().StringFixed(2))
	}

	i.AmountPaid = i.AmountPaid.Add(amount)
	if i.BalanceDue().IsZero() {
		i.Status = InvoiceStatusPaid
	} else {
		i.Status = InvoiceStatusPartiallyPaid
	}
	i.UpdateTimestamp()
	return nil
}

// Void cancels an invoice that has not received any payment
func (i *Invoice) Void() error {
	if i.Status == InvoiceStatusVoid {
		return fmt.Errorf("%w: invoice is already void", ErrInvalidInvoiceState)
	}
	if i.AmountPaid.IsPositive() {
		return fmt.Errorf("%w: cannot void an invoice with recorded payments", ErrInvalidInvoiceState)
	}
	i.Status = InvoiceStatusVoid
	i.UpdateTimestamp()
	return nil
}

// SetTenantProfileSnapshot stores the tenant tax profile as issued
func (i *Invoice) SetTenantProfileSnapshot(profile TenantTaxProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal tenant profile snapshot: %w", err)
	}
	i.TenantProfileSnapshot = string(data)
	return nil
}

// GetTenantProfileSnapshot returns the tenant tax profile captured at creation
func (i *Invoice) GetTenantProfileSnapshot() (*TenantTaxProfile, error) {
	var profile TenantTaxProfile
	if err := json.Unmarshal([]byte(i.TenantProfileSnapshot), &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tenant profile snapshot: %w", err)
	}
	return &profile, nil
}

// SetClientProfileSnapshot stores the client registration profile as issued
func (i *Invoice) SetClientProfileSnapshot(profile ClientProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal client profile snapshot: %w", err)
	}
	i.ClientProfileSnapshot = string(data)
	return nil
}

// GetClientProfileSnapshot returns the client profile captured at creation
func (i *Invoice) GetClientProfileSnapshot() (*ClientProfile, error) {
	var profile ClientProfile
	if err := json.Unmarshal([]byte(i.ClientProfileSnapshot), &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal client profile snapshot: %w", err)
	}
	return &profile, nil
}

// SetNotes sets the invoice notes
func (i *Invoice) SetNotes(notes string) {
	if strings.TrimSpace(notes) == "" {
		i.Notes = nil
	} else {
		i.Notes = &notes
	}
}

// UpdateTimestamp updates the UpdatedAt timestamp
func (i *Invoice) UpdateTimestamp() {
	i.UpdatedAt = time.Now().UTC()
}

// GetFormattedTotal returns the total for display
func (i *Invoice) GetFormattedTotal() string {
	return FormatLKR(i.Total)
}

// GetTotalInWords returns the total spelled out for the printed invoice
func (i *Invoice) GetTotalInWords() string {
	return AmountInWords(i.Total)
}
