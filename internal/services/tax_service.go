package services

import (
	"context"
	"fmt"
	"strings"

	"lanka-invoice-api/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// TaxService handles tax calculation and invoice tax validation
type TaxService struct {
	config          models.TaxConfig
	validator       *validator.Validate
	logger          *logrus.Logger
	validateNumbers bool
}

// NewTaxService creates a new tax service with the specified configuration
func NewTaxService(config models.TaxConfig, logger *logrus.Logger) *TaxService {
	if logger == nil {
		logger = logrus.New()
	}
	return &TaxService{
		config:          config,
		validator:       newValidator(),
		logger:          logger,
		validateNumbers: true,
	}
}

// NewTaxServiceForCountry creates a new tax service for the specified country
func NewTaxServiceForCountry(countryCode string, logger *logrus.Logger) (*TaxService, error) {
	config, err := models.NewTaxConfig(countryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to create tax config for country %s: %w", countryCode, err)
	}
	return NewTaxService(config, logger), nil
}

// SetNumberValidation turns VAT number and TIN format checks on or off
func (s *TaxService) SetNumberValidation(enabled bool) {
	s.validateNumbers = enabled
}

// Config returns the jurisdiction configuration in use
func (s *TaxService) Config() models.TaxConfig {
	return s.config
}

// ValidateBusinessNumber validates a VAT registration number
func (s *TaxService) ValidateBusinessNumber(ctx context.Context, vatNumber string) error {
	if !s.validateNumbers {
		return nil
	}
	return s.config.ValidateBusinessNumber(vatNumber)
}

// ValidateTIN validates a taxpayer identification number
func (s *TaxService) ValidateTIN(ctx context.Context, tin string) error {
	if !s.validateNumbers {
		return nil
	}
	return s.config.ValidateTIN(tin)
}

// Calculate runs the calculation engine with the configured rates
func (s *TaxService) Calculate(ctx context.Context, input models.TaxCalculationInput) *models.TaxCalculationResult {
	result := models.CalculateInvoiceTaxesWithConfig(s.config, input)

	s.logger.WithFields(logrus.Fields{
		"regime":     result.Regime,
		"line_items": len(result.LineItems),
		"vat":        result.TaxBreakdown.VATAmount.String(),
		"sscl":       result.TaxBreakdown.SSCLAmount.String(),
		"total":      result.Total.String(),
	}).Debug("Invoice taxes calculated")

	return result
}

// CalculateInvoiceTaxes validates a calculation request and runs the engine
func (s *TaxService) CalculateInvoiceTaxes(ctx context.Context, req *CalculateInvoiceTaxesRequest) (*models.TaxCalculationResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: calculate request cannot be nil", ErrInvalidRequest)
	}

	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	input, err := req.toInput()
	if err != nil {
		return nil, err
	}

	return s.Calculate(ctx, input), nil
}

// ValidateTaxInvoice calculates the request and checks it against the tax
// invoice rules without persisting anything
func (s *TaxService) ValidateTaxInvoice(ctx context.Context, req *ValidateTaxInvoiceRequest) (*models.ValidationResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: validate request cannot be nil", ErrInvalidRequest)
	}

	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	input, err := req.CalculateInvoiceTaxesRequest.toInput()
	if err != nil {
		return nil, err
	}

	invoice := models.NewInvoice("", "", models.InvoiceType(req.InvoiceType))
	invoice.ApplyCalculation(s.Calculate(ctx, input))

	result := models.ValidateTaxInvoice(invoice, input.Tenant, input.Client)

	s.logger.WithFields(logrus.Fields{
		"invoice_type": req.InvoiceType,
		"valid":        result.Valid,
		"errors":       len(result.Errors),
		"warnings":     len(result.Warnings),
	}).Debug("Tax invoice validated")

	return result, nil
}

// GetTaxInfo returns the rates and identifiers of the configured jurisdiction
func (s *TaxService) GetTaxInfo(ctx context.Context) *TaxInfo {
	return &TaxInfo{
		TaxName:                  s.config.GetTaxName(),
		CountryCode:              s.config.GetCountryCode(),
		CurrencyCode:             s.config.GetCurrencyCode(),
		VATRate:                  s.config.GetVATRate(),
		SSCLRate:                 s.config.GetSSCLRate(),
		SVATEquivalentRate:       s.config.GetSVATEquivalentRate(),
		DefaultFiscalYearStart:   s.config.GetDefaultFiscalYearStart(),
		RequiredTaxInvoiceFields: s.config.GetRequiredTaxInvoiceFields(),
	}
}

// TaxProfileRequest is a tenant tax profile supplied inline
type TaxProfileRequest struct {
	VATRegistered   bool            `json:"vat_registered"`
	VATNumber       string          `json:"vat_number,omitempty"`
	SVATRegistered  bool            `json:"svat_registered"`
	SSCLApplicable  bool            `json:"sscl_applicable"`
	DefaultVATRate  decimal.Decimal `json:"default_vat_rate" validate:"gte=0,lte=1"`
	FiscalYearStart string          `json:"fiscal_year_start,omitempty"`
}

// ClientProfileRequest is a client tax identity supplied inline
type ClientProfileRequest struct {
	RegistrationType string `json:"registration_type,omitempty" validate:"omitempty,oneof=vat svat none"`
	TIN              string `json:"tin,omitempty"`
	VATNumber        string `json:"vat_number,omitempty"`
}

// LineItemRequest is one invoice line. Taxable defaults to true and the
// category to standard.
type LineItemRequest struct {
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Discount    decimal.Decimal `json:"discount" validate:"gte=0,lte=1"`
	Taxable     *bool           `json:"taxable,omitempty"`
	TaxCategory string          `json:"tax_category,omitempty" validate:"omitempty,oneof=standard zero-rated exempt"`
}

// SvatVoucherRequest is the SVAT voucher issued for the supply
type SvatVoucherRequest struct {
	VoucherID     string          `json:"voucher_id" validate:"required"`
	VoucherNumber string          `json:"voucher_number" validate:"required"`
	VoucherValue  decimal.Decimal `json:"voucher_value" validate:"gte=0"`
	TaxAmount     decimal.Decimal `json:"tax_amount" validate:"gte=0"`
}

// CalculateInvoiceTaxesRequest is a stateless calculation request
type CalculateInvoiceTaxesRequest struct {
	Tenant       TaxProfileRequest    `json:"tenant"`
	Client       ClientProfileRequest `json:"client"`
	LineItems    []LineItemRequest    `json:"line_items" validate:"max=200,dive"`
	DateOfSupply string               `json:"date_of_supply,omitempty" validate:"omitempty,datetime=2006-01-02"`
	SvatVoucher  *SvatVoucherRequest  `json:"svat_voucher,omitempty"`
}

// ValidateTaxInvoiceRequest is a calculation request checked against the tax invoice rules
type ValidateTaxInvoiceRequest struct {
	CalculateInvoiceTaxesRequest
	InvoiceType string `json:"invoice_type" validate:"required,oneof=tax_invoice invoice"`
}

// TaxInfo describes the configured jurisdiction
type TaxInfo struct {
	TaxName                  string          `json:"tax_name"`
	CountryCode              string          `json:"country_code"`
	CurrencyCode             string          `json:"currency_code"`
	VATRate                  decimal.Decimal `json:"vat_rate"`
	SSCLRate                 decimal.Decimal `json:"sscl_rate"`
	SVATEquivalentRate       decimal.Decimal `json:"svat_equivalent_rate"`
	DefaultFiscalYearStart   string          `json:"default_fiscal_year_start"`
	RequiredTaxInvoiceFields []string        `json:"required_tax_invoice_fields"`
}

// TaxServiceInterface defines the interface for tax services
type TaxServiceInterface interface {
	ValidateBusinessNumber(ctx context.Context, vatNumber string) error
	ValidateTIN(ctx context.Context, tin string) error
	Calculate(ctx context.Context, input models.TaxCalculationInput) *models.TaxCalculationResult
	CalculateInvoiceTaxes(ctx context.Context, req *CalculateInvoiceTaxesRequest) (*models.TaxCalculationResult, error)
	ValidateTaxInvoice(ctx context.Context, req *ValidateTaxInvoiceRequest) (*models.ValidationResult, error)
	GetTaxInfo(ctx context.Context) *TaxInfo
}

// toProfile converts the inline profile. Both registration flags are passed
// through so the engine can apply its VAT-first resolution.
func (r TaxProfileRequest) toProfile() models.TenantTaxProfile {
	fiscalYearStart := r.FiscalYearStart
	if strings.TrimSpace(fiscalYearStart) == "" {
		fiscalYearStart = models.DefaultFiscalYearStart
	}
	return models.TenantTaxProfile{
		VATRegistered:   r.VATRegistered,
		VATNumber:       optionalString(r.VATNumber),
		SVATRegistered:  r.SVATRegistered,
		SSCLApplicable:  r.SSCLApplicable,
		DefaultVATRate:  r.DefaultVATRate,
		FiscalYearStart: fiscalYearStart,
	}
}

func (r ClientProfileRequest) toProfile() models.ClientProfile {
	registration := models.ClientRegistrationType(r.RegistrationType)
	if registration == "" {
		registration = models.ClientRegistrationNone
	}
	return models.ClientProfile{
		RegistrationType: registration,
		TIN:              optionalString(r.TIN),
		VATNumber:        optionalString(r.VATNumber),
	}
}

func (r LineItemRequest) toInput() models.LineItemInput {
	taxable := true
	if r.Taxable != nil {
		taxable = *r.Taxable
	}
	category := models.TaxCategory(r.TaxCategory)
	if category == "" {
		category = models.TaxCategoryStandard
	}
	return models.LineItemInput{
		Description: strings.TrimSpace(r.Description),
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		Discount:    r.Discount,
		Taxable:     taxable,
		TaxCategory: category,
	}
}

func toLineItemInputs(items []LineItemRequest) []models.LineItemInput {
	inputs := make([]models.LineItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, item.toInput())
	}
	return inputs
}

func (r *SvatVoucherRequest) toVoucher() *models.SvatVoucher {
	if r == nil {
		return nil
	}
	return &models.SvatVoucher{
		VoucherID:     r.VoucherID,
		VoucherNumber: r.VoucherNumber,
		VoucherValue:  r.VoucherValue,
		TaxAmount:     r.TaxAmount,
	}
}

func (r *CalculateInvoiceTaxesRequest) toInput() (models.TaxCalculationInput, error) {
	dateOfSupply, err := parseDate(r.DateOfSupply, today())
	if err != nil {
		return models.TaxCalculationInput{}, err
	}

	return models.TaxCalculationInput{
		Tenant:       r.Tenant.toProfile(),
		Client:       r.Client.toProfile(),
		LineItems:    toLineItemInputs(r.LineItems),
		DateOfSupply: dateOfSupply,
		SvatVoucher:  r.SvatVoucher.toVoucher(),
	}, nil
}
