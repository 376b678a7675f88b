package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lanka-invoice-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// invoiceSequence is the row type of invoice_sequences
type invoiceSequence struct {
	TenantID  string
	LastValue int64
	UpdatedAt time.Time
}

// SequenceRepository allocates per-tenant invoice numbers
type SequenceRepository struct {
	*BaseRepository[invoiceSequence]
}

// NewSequenceRepository creates a new SQLite sequence repository
func NewSequenceRepository(db *sql.DB, config *repositories.Config, logger *logrus.Logger) *SequenceRepository {
	return &SequenceRepository{
		BaseRepository: NewBaseRepository[invoiceSequence](db, "invoice_sequences", "invoice_sequence", config, logger),
	}
}

// Next increments the tenant's counter in a single statement and returns the
// new value. The first call for a tenant returns 1.
func (r *SequenceRepository) Next(ctx context.Context, tenantID string) (int64, error) {
	if err := r.validateID(tenantID); err != nil {
		return 0, err
	}

	query := `
		INSERT INTO invoice_sequences (tenant_id, last_value, updated_at)
		VALUES (?, 1, ?)
		ON CONFLICT(tenant_id) DO UPDATE
		SET last_value = last_value + 1, updated_at = excluded.updated_at
		RETURNING last_value`

	var next int64
	if err := r.executeQueryRow(ctx, "next", query, tenantID, time.Now().UTC()).Scan(&next); err != nil {
		return 0, r.wrapError("next", tenantID, err)
	}

	return next, nil
}

// Current returns the last allocated value, 0 if the tenant has none
func (r *SequenceRepository) Current(ctx context.Context, tenantID string) (int64, error) {
	var current int64
	err := r.executeQueryRow(ctx, "current", `SELECT last_value FROM invoice_sequences WHERE tenant_id = ?`, tenantID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, r.wrapError("current", tenantID, err)
	}
	return current, nil
}
