package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was received
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodOther        PaymentMethod = "other"
)

// Payment is a manual payment recorded against an invoice
type Payment struct {
	ID        string          `json:"id" db:"id" validate:"required,uuid"`
	InvoiceID string          `json:"invoice_id" db:"invoice_id" validate:"required"`
	TenantID  string          `json:"tenant_id" db:"tenant_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Method    PaymentMethod   `json:"method" db:"method" validate:"required,oneof=cash card bank_transfer cheque other"`
	Reference *string         `json:"reference,omitempty" db:"reference"`
	PaidAt    time.Time       `json:"paid_at" db:"paid_at"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// NewPayment creates a payment with generated ID and timestamps
func NewPayment(tenantID, invoiceID string, amount decimal.Decimal, method PaymentMethod) *Payment {
	now := time.Now().UTC()
	return &Payment{
		ID:        uuid.New().String(),
		InvoiceID: invoiceID,
		TenantID:  tenantID,
		Amount:    amount,
		Method:    method,
		PaidAt:    now,
		CreatedAt: now,
	}
}

// Validate validates the payment data
func (p *Payment) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("payment ID is required")
	}

	if p.InvoiceID == "" {
		return fmt.Errorf("invoice ID is required")
	}

	if !p.Amount.IsPositive() {
		return fmt.Errorf("payment amount must be greater than 0")
	}

	if !p.Amount.Equal(p.Amount.Round(2)) {
		return fmt.Errorf("payment amount cannot have more than 2 decimal places")
	}

	switch p.Method {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodCheque, PaymentMethodOther:
	default:
		return fmt.Errorf("invalid payment method: %s", p.Method)
	}

	return nil
}

// SetReference sets the bank or cheque reference
func (p *Payment) SetReference(reference string) {
	if strings.TrimSpace(reference) == "" {
		p.Reference = nil
	} else {
		p.Reference = &reference
	}
}
