package sqlite

import (
	"context"
	"database/sql"

	"lanka-invoice-api/internal/models"
	"lanka-invoice-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

const tenantColumns = `
	id, name, business_address, contact_email, phone, tin, invoice_prefix,
	vat_registered, vat_number, svat_registered, sscl_applicable,
	default_vat_rate, fiscal_year_start, created_at, updated_at`

// TenantRepository implements the TenantRepository interface for SQLite
type TenantRepository struct {
	*BaseRepository[models.Tenant]
}

// NewTenantRepository creates a new SQLite tenant repository
func NewTenantRepository(db *sql.DB, config *repositories.Config, logger *logrus.Logger) *TenantRepository {
	return &TenantRepository{
		BaseRepository: NewBaseRepository[models.Tenant](db, "tenants", "tenant", config, logger),
	}
}

// Create creates a new tenant
func (r *TenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	if err := tenant.Validate(); err != nil {
		return repositories.ValidationError("tenant", tenant.ID, err)
	}

	query := `INSERT INTO tenants (` + tenantColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	profile := tenant.TaxProfile
	_, err := r.executeExec(ctx, "create", query,
		tenant.ID,
		tenant.Name,
		tenant.BusinessAddress,
		tenant.ContactEmail,
		tenant.Phone,
		tenant.TIN,
		tenant.GetInvoicePrefix(),
		profile.VATRegistered,
		profile.VATNumber,
		profile.SVATRegistered,
		profile.SSCLApplicable,
		profile.DefaultVATRate,
		profile.FiscalYearStart,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)
	return err
}

// GetByID retrieves a tenant by ID
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = ?`

	tenant := &models.Tenant{}
	profile := &tenant.TaxProfile
	err := r.executeQueryRow(ctx, "get_by_id", query, id).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.BusinessAddress,
		&tenant.ContactEmail,
		&tenant.Phone,
		&tenant.TIN,
		&tenant.InvoicePrefix,
		&profile.VATRegistered,
		&profile.VATNumber,
		&profile.SVATRegistered,
		&profile.SSCLApplicable,
		&profile.DefaultVATRate,
		&profile.FiscalYearStart,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		return nil, r.scanError("get_by_id", id, err)
	}

	return tenant, nil
}

// Update updates tenant details and tax settings
func (r *TenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	if err := tenant.Validate(); err != nil {
		return repositories.ValidationError("tenant", tenant.ID, err)
	}

	tenant.UpdateTimestamp()

	query := `
		UPDATE tenants
		SET name = ?, business_address = ?, contact_email = ?, phone = ?, tin = ?,
			invoice_prefix = ?, vat_registered = ?, vat_number = ?, svat_registered = ?,
			sscl_applicable = ?, default_vat_rate = ?, fiscal_year_start = ?, updated_at = ?
		WHERE id = ?`

	profile := tenant.TaxProfile
	result, err := r.executeExec(ctx, "update", query,
		tenant.Name,
		tenant.BusinessAddress,
		tenant.ContactEmail,
		tenant.Phone,
		tenant.TIN,
		tenant.GetInvoicePrefix(),
		profile.VATRegistered,
		profile.VATNumber,
		profile.SVATRegistered,
		profile.SSCLApplicable,
		profile.DefaultVATRate,
		profile.FiscalYearStart,
		tenant.UpdatedAt,
		tenant.ID,
	)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "update", tenant.ID)
}
