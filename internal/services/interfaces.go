package services

import (
	"context"

	"lanka-invoice-api/internal/models"

	"github.com/shopspring/decimal"
)

// InvoiceService defines the invoice lifecycle operations. Every call is
// scoped to the tenant taken from the caller's credentials.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, tenantID string, req *CreateInvoiceRequest) (*models.Invoice, *models.ValidationResult, error)
	GetInvoice(ctx context.Context, tenantID, id string) (*models.Invoice, error)
	ListInvoices(ctx context.Context, tenantID string, filters models.InvoiceFilters) ([]*models.Invoice, *models.PaginationResult, error)
	SendInvoice(ctx context.Context, tenantID, id string) (*models.Invoice, *models.ValidationResult, error)
	RecordPayment(ctx context.Context, tenantID, id string, req *RecordPaymentRequest) (*models.Invoice, *models.Payment, error)
	VoidInvoice(ctx context.Context, tenantID, id string) (*models.Invoice, error)
	GetPayments(ctx context.Context, tenantID, id string) ([]*models.Payment, error)
	GetInvoiceDocument(ctx context.Context, tenantID, id string) ([]byte, error)
}

// TenantService manages tenant details and tax settings
type TenantService interface {
	CreateTenant(ctx context.Context, tenantID string, req *CreateTenantRequest) (*models.Tenant, error)
	GetTenant(ctx context.Context, id string) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, id string, req *UpdateTenantRequest) (*models.Tenant, error)
}

// ClientService manages a tenant's invoice recipients
type ClientService interface {
	CreateClient(ctx context.Context, tenantID string, req *CreateClientRequest) (*models.Client, error)
	GetClient(ctx context.Context, tenantID, id string) (*models.Client, error)
	UpdateClient(ctx context.Context, tenantID, id string, req *UpdateClientRequest) (*models.Client, error)
	ListClients(ctx context.Context, tenantID string, filters *ClientFilters) ([]*models.Client, *models.PaginationResult, error)
}

// TrackingService builds tracked delivery links and records engagement
type TrackingService interface {
	BuildLinks(ctx context.Context, tenantID, invoiceID string, channel models.DeliveryChannel, target string) (*TrackingLinks, error)
	RecordOpen(ctx context.Context, token string, channel models.DeliveryChannel, meta RequestMeta) error
	RecordClick(ctx context.Context, token string, channel models.DeliveryChannel, target, targetSig string, meta RequestMeta) (string, error)
	GetEngagement(ctx context.Context, tenantID, invoiceID string) (*models.EngagementSummary, error)
}

// Invoice service types

// CreateInvoiceRequest drafts an invoice for one of the tenant's clients.
// The tax profiles come from the stored tenant and client.
type CreateInvoiceRequest struct {
	ClientID     string              `json:"client_id" validate:"required"`
	InvoiceType  string              `json:"invoice_type" validate:"required,oneof=tax_invoice invoice"`
	IssueDate    string              `json:"issue_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateOfSupply string              `json:"date_of_supply,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DueDate      string              `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	LineItems    []LineItemRequest   `json:"line_items" validate:"required,min=1,max=200,dive"`
	SvatVoucher  *SvatVoucherRequest `json:"svat_voucher,omitempty"`
	Notes        string              `json:"notes,omitempty" validate:"max=2000"`
}

// RecordPaymentRequest records a manual payment against a sent invoice
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
	Method    string          `json:"method" validate:"required,oneof=cash card bank_transfer cheque other"`
	Reference string          `json:"reference,omitempty" validate:"max=255"`
	PaidAt    string          `json:"paid_at,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Tenant service types

// TaxSettingsRequest sets the tenant's registration regime
type TaxSettingsRequest struct {
	Regime          string          `json:"regime" validate:"required,oneof=vat svat none"`
	VATNumber       string          `json:"vat_number,omitempty"`
	SSCLApplicable  bool            `json:"sscl_applicable"`
	DefaultVATRate  decimal.Decimal `json:"default_vat_rate" validate:"gte=0,lte=1"`
	FiscalYearStart string          `json:"fiscal_year_start,omitempty"`
}

type CreateTenantRequest struct {
	Name            string              `json:"name" validate:"required,min=1,max=255"`
	BusinessAddress string              `json:"business_address" validate:"required,min=1,max=500"`
	ContactEmail    string              `json:"contact_email" validate:"required,email"`
	Phone           string              `json:"phone,omitempty"`
	TIN             string              `json:"tin,omitempty"`
	InvoicePrefix   string              `json:"invoice_prefix,omitempty" validate:"max=20"`
	TaxSettings     *TaxSettingsRequest `json:"tax_settings,omitempty"`
}

type UpdateTenantRequest struct {
	Name            *string             `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	BusinessAddress *string             `json:"business_address,omitempty" validate:"omitempty,min=1,max=500"`
	ContactEmail    *string             `json:"contact_email,omitempty" validate:"omitempty,email"`
	Phone           *string             `json:"phone,omitempty"`
	TIN             *string             `json:"tin,omitempty"`
	InvoicePrefix   *string             `json:"invoice_prefix,omitempty" validate:"omitempty,max=20"`
	TaxSettings     *TaxSettingsRequest `json:"tax_settings,omitempty"`
}

// Client service types

type CreateClientRequest struct {
	Name             string `json:"name" validate:"required,min=1,max=255"`
	Email            string `json:"email,omitempty" validate:"omitempty,email"`
	Phone            string `json:"phone,omitempty"`
	Address          string `json:"address,omitempty" validate:"max=500"`
	RegistrationType string `json:"registration_type,omitempty" validate:"omitempty,oneof=vat svat none"`
	TIN              string `json:"tin,omitempty"`
	VATNumber        string `json:"vat_number,omitempty"`
}

type UpdateClientRequest struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email            *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone            *string `json:"phone,omitempty"`
	Address          *string `json:"address,omitempty" validate:"omitempty,max=500"`
	RegistrationType *string `json:"registration_type,omitempty" validate:"omitempty,oneof=vat svat none"`
	TIN              *string `json:"tin,omitempty"`
	VATNumber        *string `json:"vat_number,omitempty"`
}

type ClientFilters struct {
	Search string `json:"search,omitempty" form:"search"`
	Limit  int    `json:"limit,omitempty" form:"limit"`
	Offset int    `json:"offset,omitempty" form:"offset"`
}

// Tracking service types

// TrackingLinks are the URLs embedded in a delivered invoice
type TrackingLinks struct {
	Token    string `json:"token"`
	OpenURL  string `json:"open_url"`
	ClickURL string `json:"click_url,omitempty"`
}

// RequestMeta is the client information recorded with an event
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
