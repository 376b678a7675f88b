package repositories

import (
	"context"

	"lanka-invoice-api/internal/models"
)

// TenantRepository persists tenants and their tax profile
type TenantRepository interface {
	// Create creates a new tenant
	Create(ctx context.Context, tenant *models.Tenant) error

	// GetByID retrieves a tenant by its ID
	GetByID(ctx context.Context, id string) (*models.Tenant, error)

	// Update updates tenant details and tax settings
	Update(ctx context.Context, tenant *models.Tenant) error

	// Exists checks if a tenant with the given ID exists
	Exists(ctx context.Context, id string) (bool, error)
}

// ClientRepository persists invoice recipients. Every read is scoped to a tenant.
type ClientRepository interface {
	// Create creates a new client
	Create(ctx context.Context, client *models.Client) error

	// GetByID retrieves a tenant's client by ID
	GetByID(ctx context.Context, tenantID, id string) (*models.Client, error)

	// Update updates an existing client
	Update(ctx context.Context, client *models.Client) error

	// List retrieves a page of clients, optionally filtered by a name/email/TIN search
	List(ctx context.Context, tenantID, search string, limit, offset int) ([]*models.Client, error)

	// Count returns the number of clients matching the search
	Count(ctx context.Context, tenantID, search string) (int, error)
}

// InvoiceRepository persists invoices together with their line items
type InvoiceRepository interface {
	// Create inserts the invoice header and all of its line items
	Create(ctx context.Context, invoice *models.Invoice) error

	// GetByID retrieves a tenant's invoice with line items loaded
	GetByID(ctx context.Context, tenantID, id string) (*models.Invoice, error)

	// GetByNumber retrieves a tenant's invoice by its invoice number
	GetByNumber(ctx context.Context, tenantID, invoiceNumber string) (*models.Invoice, error)

	// Update updates the mutable lifecycle fields and the profile snapshots
	Update(ctx context.Context, invoice *models.Invoice) error

	// List retrieves invoice headers matching the filters, newest first
	List(ctx context.Context, tenantID string, filters models.InvoiceFilters) ([]*models.Invoice, error)

	// Count returns the number of invoices matching the filters
	Count(ctx context.Context, tenantID string, filters models.InvoiceFilters) (int, error)

	// GetTenantID returns the owning tenant of an invoice, used by unauthenticated tracking
	GetTenantID(ctx context.Context, id string) (string, error)
}

// PaymentRepository persists manual payments
type PaymentRepository interface {
	// Create records a payment
	Create(ctx context.Context, payment *models.Payment) error

	// ListByInvoice retrieves the payments of an invoice in the order they were made
	ListByInvoice(ctx context.Context, tenantID, invoiceID string) ([]*models.Payment, error)
}

// SequenceRepository allocates per-tenant invoice sequence numbers
type SequenceRepository interface {
	// Next atomically increments and returns the tenant's sequence, starting at 1
	Next(ctx context.Context, tenantID string) (int64, error)

	// Current returns the last allocated value, 0 if none
	Current(ctx context.Context, tenantID string) (int64, error)
}

// TrackingEventRepository persists delivery engagement events
type TrackingEventRepository interface {
	// Create records an event
	Create(ctx context.Context, event *models.TrackingEvent) error

	// ListByInvoice retrieves the events of an invoice, oldest first
	ListByInvoice(ctx context.Context, invoiceID string) ([]*models.TrackingEvent, error)
}
