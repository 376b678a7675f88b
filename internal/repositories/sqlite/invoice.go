package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"lanka-invoice-api/internal/models"
	"lanka-invoice-api/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const invoiceColumns = `
	id, tenant_id, client_id, invoice_number, invoice_type, status, currency,
	issue_date, date_of_supply, due_date, fiscal_year,
	subtotal, total_discount, vat_amount, sscl_amount, total_tax, total,
	taxable_supplies, zero_rated_supplies, exempt_supplies, amount_paid,
	svat_voucher_id, svat_voucher_number, svat_voucher_value, svat_tax_amount,
	notes, tenant_profile_snapshot, client_profile_snapshot, sent_at, created_at, updated_at`

const lineItemColumns = `
	id, invoice_id, sort_order, description, quantity, unit_price, discount,
	taxable, tax_category, line_subtotal, discount_amount, taxable_amount,
	tax_rate, tax_amount, line_total`

// InvoiceRepository implements the InvoiceRepository interface for SQLite
type InvoiceRepository struct {
	*BaseRepository[models.Invoice]
}

// NewInvoiceRepository creates a new SQLite invoice repository
func NewInvoiceRepository(db *sql.DB, config *repositories.Config, logger *logrus.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		BaseRepository: NewBaseRepository[models.Invoice](db, "invoices", "invoice", config, logger),
	}
}

// Create inserts the invoice header and its line items in one transaction
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return repositories.ValidationError("invoice", invoice.ID, err)
	}

	return r.inTransaction(ctx, func(ctx context.Context) error {
		if err := r.insertHeader(ctx, invoice); err != nil {
			return err
		}

		for idx := range invoice.LineItems {
			line := &invoice.LineItems[idx]
			line.InvoiceID = invoice.ID
			if err := r.insertLineItem(ctx, line); err != nil {
				return err
			}
		}

		r.logger.WithFields(logrus.Fields{
			"invoice_id":     invoice.ID,
			"tenant_id":      invoice.TenantID,
			"invoice_number": invoice.InvoiceNumber,
			"line_items":     len(invoice.LineItems),
		}).Debug("Invoice stored")

		return nil
	})
}

func (r *InvoiceRepository) insertHeader(ctx context.Context, invoice *models.Invoice) error {
	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var voucherID, voucherNumber sql.NullString
	var voucherValue, voucherTax decimal.NullDecimal
	if v := invoice.SvatVoucher; v != nil {
		voucherID = sql.NullString{String: v.VoucherID, Valid: true}
		voucherNumber = sql.NullString{String: v.VoucherNumber, Valid: true}
		voucherValue = decimal.NewNullDecimal(v.VoucherValue)
		voucherTax = decimal.NewNullDecimal(v.TaxAmount)
	}

	_, err := r.executeExec(ctx, "create", query,
		invoice.ID,
		invoice.TenantID,
		invoice.ClientID,
		invoice.InvoiceNumber,
		invoice.InvoiceType,
		invoice.Status,
		invoice.Currency,
		invoice.IssueDate,
		invoice.DateOfSupply,
		invoice.DueDate,
		invoice.FiscalYear,
		invoice.Subtotal,
		invoice.TotalDiscount,
		invoice.VATAmount,
		invoice.SSCLAmount,
		invoice.TotalTax,
		invoice.Total,
		invoice.TaxableSupplies,
		invoice.ZeroRatedSupplies,
		invoice.ExemptSupplies,
		invoice.AmountPaid,
		voucherID,
		voucherNumber,
		voucherValue,
		voucherTax,
		invoice.Notes,
		invoice.TenantProfileSnapshot,
		invoice.ClientProfileSnapshot,
		invoice.SentAt,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
	if repositories.IsDuplicate(err) {
		return repositories.DuplicateError("invoice", "invoice_number", invoice.InvoiceNumber)
	}
	return err
}

func (r *InvoiceRepository) insertLineItem(ctx context.Context, line *models.InvoiceLineItem) error {
	query := `INSERT INTO invoice_line_items (` + lineItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	category := line.TaxCategory
	if category == "" {
		category = models.TaxCategoryStandard
	}

	_, err := r.executeExec(ctx, "create_line_item", query,
		line.ID,
		line.InvoiceID,
		line.SortOrder,
		line.Description,
		line.Quantity,
		line.UnitPrice,
		line.Discount,
		line.Taxable,
		category,
		line.LineSubtotal,
		line.DiscountAmount,
		line.TaxableAmount,
		line.TaxRate,
		line.TaxAmount,
		line.LineTotal,
	)
	return err
}

// GetByID retrieves a tenant's invoice with its line items
func (r *InvoiceRepository) GetByID(ctx context.Context, tenantID, id string) (*models.Invoice, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}
	return r.getOne(ctx, "get_by_id", id, `id = ? AND tenant_id = ?`, id, tenantID)
}

// GetByNumber retrieves a tenant's invoice by invoice number
func (r *InvoiceRepository) GetByNumber(ctx context.Context, tenantID, invoiceNumber string) (*models.Invoice, error) {
	return r.getOne(ctx, "get_by_number", invoiceNumber, `tenant_id = ? AND invoice_number = ?`, tenantID, invoiceNumber)
}

func (r *InvoiceRepository) getOne(ctx context.Context, operation, key, where string, args ...interface{}) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE ` + where

	invoice, err := scanInvoice(r.executeQueryRow(ctx, operation, query, args...))
	if err != nil {
		return nil, r.scanError(operation, key, err)
	}

	lines, err := r.loadLineItems(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	invoice.LineItems = lines

	return invoice, nil
}

func (r *InvoiceRepository) loadLineItems(ctx context.Context, invoiceID string) ([]models.InvoiceLineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM invoice_line_items WHERE invoice_id = ? ORDER BY sort_order`

	rows, err := r.executeQuery(ctx, "list_line_items", query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]models.InvoiceLineItem, 0)
	for rows.Next() {
		var line models.InvoiceLineItem
		err := rows.Scan(
			&line.ID,
			&line.InvoiceID,
			&line.SortOrder,
			&line.Description,
			&line.Quantity,
			&line.UnitPrice,
			&line.Discount,
			&line.Taxable,
			&line.TaxCategory,
			&line.LineSubtotal,
			&line.DiscountAmount,
			&line.TaxableAmount,
			&line.TaxRate,
			&line.TaxAmount,
			&line.LineTotal,
		)
		if err != nil {
			return nil, repositories.NewRepositoryError("list_line_items", "invoice", invoiceID, err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list_line_items", "invoice", invoiceID, err)
	}

	return lines, nil
}

// Update updates the lifecycle fields and profile snapshots. Amounts and line
// items are immutable once stored.
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	if err := r.validateID(invoice.ID); err != nil {
		return err
	}

	query := `
		UPDATE invoices
		SET status = ?, amount_paid = ?, sent_at = ?, notes = ?, due_date = ?,
			tenant_profile_snapshot = ?, client_profile_snapshot = ?, updated_at = ?
		WHERE id = ? AND tenant_id = ?`

	result, err := r.executeExec(ctx, "update", query,
		invoice.Status,
		invoice.AmountPaid,
		invoice.SentAt,
		invoice.Notes,
		invoice.DueDate,
		invoice.TenantProfileSnapshot,
		invoice.ClientProfileSnapshot,
		invoice.UpdatedAt,
		invoice.ID,
		invoice.TenantID,
	)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "update", invoice.ID)
}

// List retrieves invoice headers matching the filters, newest first. Line items are not loaded.
func (r *InvoiceRepository) List(ctx context.Context, tenantID string, filters models.InvoiceFilters) ([]*models.Invoice, error) {
	filters.Normalize()
	where, args := invoiceFilterClause(tenantID, filters)

	query := `SELECT ` + invoiceColumns + ` FROM invoices ` + where +
		` ORDER BY issue_date DESC, invoice_number DESC LIMIT ? OFFSET ?`
	args = append(args, r.config.ClampLimit(filters.Limit), filters.Offset)

	rows, err := r.executeQuery(ctx, "list", query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]*models.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, repositories.NewRepositoryError("list", "invoice", "", err)
		}
		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list", "invoice", "", err)
	}

	return invoices, nil
}

// Count returns the number of invoices matching the filters
func (r *InvoiceRepository) Count(ctx context.Context, tenantID string, filters models.InvoiceFilters) (int, error) {
	where, args := invoiceFilterClause(tenantID, filters)

	var count int
	if err := r.executeQueryRow(ctx, "count", `SELECT COUNT(*) FROM invoices `+where, args...).Scan(&count); err != nil {
		return 0, repositories.NewRepositoryError("count", "invoice", "", err)
	}
	return count, nil
}

// GetTenantID returns the owning tenant of an invoice
func (r *InvoiceRepository) GetTenantID(ctx context.Context, id string) (string, error) {
	if err := r.validateID(id); err != nil {
		return "", err
	}

	var tenantID string
	err := r.executeQueryRow(ctx, "get_tenant_id", `SELECT tenant_id FROM invoices WHERE id = ?`, id).Scan(&tenantID)
	if err != nil {
		return "", r.scanError("get_tenant_id", id, err)
	}
	return tenantID, nil
}

func invoiceFilterClause(tenantID string, filters models.InvoiceFilters) (string, []interface{}) {
	conditions := []string{"tenant_id = ?"}
	args := []interface{}{tenantID}

	if filters.ClientID != "" {
		conditions = append(conditions, "client_id = ?")
		args = append(args, filters.ClientID)
	}
	if filters.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filters.Status)
	}
	if filters.StartDate != nil {
		conditions = append(conditions, "issue_date >= ?")
		args = append(args, filters.StartDate.UTC())
	}
	if filters.EndDate != nil {
		// inclusive end date
		conditions = append(conditions, "issue_date < ?")
		args = append(args, filters.EndDate.UTC().AddDate(0, 0, 1))
	}

	return fmt.Sprintf("WHERE %s", strings.Join(conditions, " AND ")), args
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	invoice := &models.Invoice{}

	var voucherID, voucherNumber sql.NullString
	var voucherValue, voucherTax decimal.NullDecimal

	err := row.Scan(
		&invoice.ID,
		&invoice.TenantID,
		&invoice.ClientID,
		&invoice.InvoiceNumber,
		&invoice.InvoiceType,
		&invoice.Status,
		&invoice.Currency,
		&invoice.IssueDate,
		&invoice.DateOfSupply,
		&invoice.DueDate,
		&invoice.FiscalYear,
		&invoice.Subtotal,
		&invoice.TotalDiscount,
		&invoice.VATAmount,
		&invoice.SSCLAmount,
		&invoice.TotalTax,
		&invoice.Total,
		&invoice.TaxableSupplies,
		&invoice.ZeroRatedSupplies,
		&invoice.ExemptSupplies,
		&invoice.AmountPaid,
		&voucherID,
		&voucherNumber,
		&voucherValue,
		&voucherTax,
		&invoice.Notes,
		&invoice.TenantProfileSnapshot,
		&invoice.ClientProfileSnapshot,
		&invoice.SentAt,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if voucherID.Valid {
		invoice.SvatVoucher = &models.SvatVoucher{
			VoucherID:     voucherID.String,
			VoucherNumber: voucherNumber.String,
			VoucherValue:  voucherValue.Decimal,
			TaxAmount:     voucherTax.Decimal,
		}
	}

	return invoice, nil
}
