package models

import (
	"github.com/shopspring/decimal"
)

// CalculateInvoiceTaxes computes per-line and aggregate VAT, SVAT and SSCL using
// the Sri Lankan rates
func CalculateInvoiceTaxes(input TaxCalculationInput) *TaxCalculationResult {
	return CalculateInvoiceTaxesWithConfig(&SriLankaTaxConfig{}, input)
}

// CalculateInvoiceTaxesWithConfig computes the tax breakdown of an invoice.
//
// Per line, in order: subtotal = qty * price, discount = subtotal * discount,
// taxable = subtotal - discount. Exempt and non-taxable lines carry no tax and
// stay out of the SSCL base. Zero-rated lines carry no VAT but count towards the
// SSCL base. Standard lines take the tenant VAT rate under the VAT regime and
// nothing otherwise.
//
// Under SVAT the voucher tax amount is the whole VAT contribution and SSCL is
// suppressed. Nothing is rounded; callers round at presentation.
//
// The function is pure and never fails; input ranges are the caller's concern.
func CalculateInvoiceTaxesWithConfig(config TaxConfig, input TaxCalculationInput) *TaxCalculationResult {
	regime := input.Tenant.Regime()

	vatRate := input.Tenant.EffectiveVATRate(config.GetVATRate())

	ssclRate := decimal.Zero
	if input.Tenant.ChargesSSCL() {
		ssclRate = config.GetSSCLRate()
	}

	result := &TaxCalculationResult{
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		TaxSummary: TaxSummary{
			TaxableSupplies:   decimal.Zero,
			ZeroRatedSupplies: decimal.Zero,
			ExemptSupplies:    decimal.Zero,
		},
		LineItems:    make([]LineItemResult, 0, len(input.LineItems)),
		Regime:       regime,
		VATRate:      vatRate,
		SSCLRate:     ssclRate,
		DateOfSupply: input.DateOfSupply,
		FiscalYear:   input.Tenant.FiscalYear(input.DateOfSupply),
	}

	lineTax := decimal.Zero
	ssclBase := decimal.Zero

	for _, item := range input.LineItems {
		line := calculateLine(item, vatRate)
		result.LineItems = append(result.LineItems, line)

		result.Subtotal = result.Subtotal.Add(line.LineSubtotal)
		result.TotalDiscount = result.TotalDiscount.Add(line.DiscountAmount)
		lineTax = lineTax.Add(line.TaxAmount)

		switch {
		case item.IsExempt():
			result.TaxSummary.ExemptSupplies = result.TaxSummary.ExemptSupplies.Add(line.TaxableAmount)
		case item.IsZeroRated():
			result.TaxSummary.ZeroRatedSupplies = result.TaxSummary.ZeroRatedSupplies.Add(line.TaxableAmount)
			ssclBase = ssclBase.Add(line.TaxableAmount)
		default:
			result.TaxSummary.TaxableSupplies = result.TaxSummary.TaxableSupplies.Add(line.TaxableAmount)
			ssclBase = ssclBase.Add(line.TaxableAmount)
		}
	}

	vatAmount := lineTax
	if regime == TaxRegimeSVAT {
		vatAmount = decimal.Zero
		if input.SvatVoucher != nil {
			vatAmount = input.SvatVoucher.TaxAmount
		}
	}

	ssclAmount := ssclBase.Mul(ssclRate)
	totalTax := vatAmount.Add(ssclAmount)

	result.TaxBreakdown = TaxBreakdown{
		VATAmount:  vatAmount,
		SSCLAmount: ssclAmount,
		TotalTax:   totalTax,
	}
	result.Total = result.Subtotal.Sub(result.TotalDiscount).Add(totalTax)

	return result
}

// calculateLine applies the fixed per-line order. vatRate is zero outside the VAT regime.
func calculateLine(item LineItemInput, vatRate decimal.Decimal) LineItemResult {
	lineSubtotal := item.Quantity.Mul(item.UnitPrice)
	discountAmount := lineSubtotal.Mul(item.Discount)
	taxableAmount := lineSubtotal.Sub(discountAmount)

	rate := decimal.Zero
	if !item.IsExempt() && !item.IsZeroRated() {
		rate = vatRate
	}
	taxAmount := taxableAmount.Mul(rate)

	return LineItemResult{
		LineItemInput:  item,
		LineSubtotal:   lineSubtotal,
		DiscountAmount: discountAmount,
		TaxableAmount:  taxableAmount,
		TaxRate:        rate,
		TaxAmount:      taxAmount,
		LineTotal:      taxableAmount.Add(taxAmount),
	}
}
