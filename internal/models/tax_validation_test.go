package models

import (
	"strings"
	"testing"
)

func invoiceWithLines(invoiceType InvoiceType, lines ...LineItemInput) *Invoice {
	invoice := NewInvoice("tenant-1", "client-1", invoiceType)
	invoice.ApplyCalculation(CalculateInvoiceTaxes(TaxCalculationInput{
		Tenant:       vatTenant(),
		LineItems:    lines,
		DateOfSupply: supplyDate,
	}))
	return invoice
}

func TestValidateTaxInvoice(t *testing.T) {
	tin := "123456789"
	withTIN := ClientProfile{RegistrationType: ClientRegistrationNone, TIN: &tin}
	withoutTIN := ClientProfile{RegistrationType: ClientRegistrationNone}

	missingVATNumber := vatTenant()
	missingVATNumber.VATNumber = nil

	blankVATNumber := vatTenant()
	blank := "  "
	blankVATNumber.VATNumber = &blank

	conflicting := vatTenant()
	conflicting.SVATRegistered = true

	exemptLine := LineItemInput{Description: "Exempt", Quantity: dec("1"), UnitPrice: dec("100"), Taxable: true, TaxCategory: TaxCategoryExempt}

	tests := []struct {
		name         string
		invoice      *Invoice
		tenant       TenantTaxProfile
		client       ClientProfile
		wantValid    bool
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:      "compliant tax invoice",
			invoice:   invoiceWithLines(InvoiceTypeTaxInvoice, standardLine("1", "1000", "0")),
			tenant:    vatTenant(),
			client:    withTIN,
			wantValid: true,
		},
		{
			name:       "VAT registered tenant without VAT number",
			invoice:    invoiceWithLines(InvoiceTypeTaxInvoice, standardLine("1", "1000", "0")),
			tenant:     missingVATNumber,
			client:     withTIN,
			wantValid:  false,
			wantErrors: []string{MsgSupplierVATNumberRequired},
		},
		{
			name:       "blank VAT number counts as missing",
			invoice:    invoiceWithLines(InvoiceTypeTaxInvoice, standardLine("1", "1000", "0")),
			tenant:     blankVATNumber,
			client:     withTIN,
			wantValid:  false,
			wantErrors: []string{MsgSupplierVATNumberRequired},
		},
		{
			name:      "plain invoice does not need VAT number",
			invoice:   invoiceWithLines(InvoiceTypeInvoice, standardLine("1", "1000", "0")),
			tenant:    missingVATNumber,
			client:    withTIN,
			wantValid: true,
		},
		{
			name:         "taxable lines without client TIN",
			invoice:      invoiceWithLines(InvoiceTypeTaxInvoice, standardLine("1", "1000", "0")),
			tenant:       vatTenant(),
			client:       withoutTIN,
			wantValid:    true,
			wantWarnings: []string{MsgClientTINMissing},
		},
		{
			name:      "exempt lines only do not need client TIN",
			invoice:   invoiceWithLines(InvoiceTypeTaxInvoice, exemptLine),
			tenant:    vatTenant(),
			client:    withoutTIN,
			wantValid: true,
		},
		{
			name:         "conflicting registration flags warn",
			invoice:      invoiceWithLines(InvoiceTypeTaxInvoice, standardLine("1", "1000", "0")),
			tenant:       conflicting,
			client:       withTIN,
			wantValid:    true,
			wantWarnings: []string{MsgConflictingRegistration},
		},
		{
			name:         "tax invoice from unregistered tenant warns",
			invoice:      invoiceWithLines(InvoiceTypeTaxInvoice, standardLine("1", "1000", "0")),
			tenant:       TenantTaxProfile{},
			client:       withTIN,
			wantValid:    true,
			wantWarnings: []string{MsgUnregisteredTaxInvoice},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateTaxInvoice(tt.invoice, tt.tenant, tt.client)

			if result.Valid != tt.wantValid {
				t.Errorf("Expected valid %v, got %v (errors: %v)", tt.wantValid, result.Valid, result.Errors)
			}
			if result.Errors == nil || result.Warnings == nil {
				t.Fatalf("Expected non-nil errors and warnings, got %#v", result)
			}
			if len(result.Errors) != len(tt.wantErrors) {
				t.Fatalf("Expected errors %v, got %v", tt.wantErrors, result.Errors)
			}
			for i, msg := range tt.wantErrors {
				if result.Errors[i] != msg {
					t.Errorf("Expected error %q, got %q", msg, result.Errors[i])
				}
			}
			if len(result.Warnings) != len(tt.wantWarnings) {
				t.Fatalf("Expected warnings %v, got %v", tt.wantWarnings, result.Warnings)
			}
			for i, msg := range tt.wantWarnings {
				if result.Warnings[i] != msg {
					t.Errorf("Expected warning %q, got %q", msg, result.Warnings[i])
				}
			}
		})
	}
}

func TestValidateTaxInvoice_TINWarningMentionsTIN(t *testing.T) {
	invoice := invoiceWithLines(InvoiceTypeTaxInvoice, standardLine("1", "1000", "0"))

	result := ValidateTaxInvoice(invoice, vatTenant(), ClientProfile{RegistrationType: ClientRegistrationVAT})

	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "TIN") {
		t.Errorf("Expected a single warning mentioning TIN, got %v", result.Warnings)
	}
}

func TestValidateTaxInvoice_DoesNotMutateInputs(t *testing.T) {
	invoice := invoiceWithLines(InvoiceTypeTaxInvoice, standardLine("1", "1000", "0"))
	tenant := vatTenant()
	tenant.VATNumber = nil
	status := invoice.Status
	lines := len(invoice.LineItems)

	ValidateTaxInvoice(invoice, tenant, ClientProfile{})

	if invoice.Status != status || len(invoice.LineItems) != lines {
		t.Errorf("Expected invoice to be unchanged")
	}
	if tenant.VATNumber != nil {
		t.Errorf("Expected tenant profile to be unchanged")
	}
}
