package sqlite

import (
	"context"
	"database/sql"

	"lanka-invoice-api/internal/models"
	"lanka-invoice-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// PaymentRepository implements the PaymentRepository interface for SQLite
type PaymentRepository struct {
	*BaseRepository[models.Payment]
}

// NewPaymentRepository creates a new SQLite payment repository
func NewPaymentRepository(db *sql.DB, config *repositories.Config, logger *logrus.Logger) *PaymentRepository {
	return &PaymentRepository{
		BaseRepository: NewBaseRepository[models.Payment](db, "payments", "payment", config, logger),
	}
}

// Create records a payment
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if err := payment.Validate(); err != nil {
		return repositories.ValidationError("payment", payment.ID, err)
	}

	query := `
		INSERT INTO payments (id, invoice_id, tenant_id, amount, method, reference, paid_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		payment.ID,
		payment.InvoiceID,
		payment.TenantID,
		payment.Amount,
		payment.Method,
		payment.Reference,
		payment.PaidAt,
		payment.CreatedAt,
	)
	return err
}

// ListByInvoice retrieves the payments of an invoice in the order they were made
func (r *PaymentRepository) ListByInvoice(ctx context.Context, tenantID, invoiceID string) ([]*models.Payment, error) {
	if err := r.validateID(invoiceID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, invoice_id, tenant_id, amount, method, reference, paid_at, created_at
		FROM payments
		WHERE invoice_id = ? AND tenant_id = ?
		ORDER BY paid_at, created_at`

	rows, err := r.executeQuery(ctx, "list_by_invoice", query, invoiceID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*models.Payment, 0)
	for rows.Next() {
		payment := &models.Payment{}
		err := rows.Scan(
			&payment.ID,
			&payment.InvoiceID,
			&payment.TenantID,
			&payment.Amount,
			&payment.Method,
			&payment.Reference,
			&payment.PaidAt,
			&payment.CreatedAt,
		)
		if err != nil {
			return nil, repositories.NewRepositoryError("list_by_invoice", "payment", invoiceID, err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list_by_invoice", "payment", invoiceID, err)
	}

	return payments, nil
}
