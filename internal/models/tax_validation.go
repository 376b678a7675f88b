package models

// Validation messages surfaced to callers
const (
	MsgSupplierVATNumberRequired = "Supplier VAT number is required for tax invoices"
	MsgClientTINMissing          = "Client TIN is missing; B2B tax invoices should show the purchaser's TIN"
	MsgConflictingRegistration   = "Tenant is flagged as both VAT and SVAT registered; VAT registration takes precedence"
	MsgUnregisteredTaxInvoice    = "Tax invoice issued by a tenant that is not VAT or SVAT registered"
)

// ValidateTaxInvoice checks an invoice against the tax invoice rules. Only a
// missing supplier VAT number on a tax invoice is a blocking error; the rest
// are warnings. The inputs are not modified.
func ValidateTaxInvoice(invoice *Invoice, tenant TenantTaxProfile, client ClientProfile) *ValidationResult {
	result := NewValidationResult()
	if invoice == nil {
		return result
	}

	isTaxInvoice := invoice.InvoiceType == InvoiceTypeTaxInvoice

	if isTaxInvoice && tenant.VATRegistered && !tenant.HasVATNumber() {
		result.AddError(MsgSupplierVATNumberRequired)
	}

	if invoice.HasTaxableLines() && !client.HasTIN() {
		result.AddWarning(MsgClientTINMissing)
	}

	if tenant.VATRegistered && tenant.SVATRegistered {
		result.AddWarning(MsgConflictingRegistration)
	}

	if isTaxInvoice && tenant.Regime() == TaxRegimeNone {
		result.AddWarning(MsgUnregisteredTaxInvoice)
	}

	return result
}
