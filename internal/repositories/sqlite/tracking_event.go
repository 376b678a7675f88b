package sqlite

import (
	"context"
	"database/sql"

	"lanka-invoice-api/internal/models"
	"lanka-invoice-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// TrackingEventRepository implements the TrackingEventRepository interface for SQLite
type TrackingEventRepository struct {
	*BaseRepository[models.TrackingEvent]
}

// NewTrackingEventRepository creates a new SQLite tracking event repository
func NewTrackingEventRepository(db *sql.DB, config *repositories.Config, logger *logrus.Logger) *TrackingEventRepository {
	return &TrackingEventRepository{
		BaseRepository: NewBaseRepository[models.TrackingEvent](db, "tracking_events", "tracking_event", config, logger),
	}
}

// Create records an event
func (r *TrackingEventRepository) Create(ctx context.Context, event *models.TrackingEvent) error {
	if err := event.Validate(); err != nil {
		return repositories.ValidationError("tracking_event", event.ID, err)
	}

	query := `
		INSERT INTO tracking_events (id, invoice_id, tenant_id, channel, event_type, url, ip_address, user_agent, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		event.ID,
		event.InvoiceID,
		event.TenantID,
		event.Channel,
		event.EventType,
		event.URL,
		event.IPAddress,
		event.UserAgent,
		event.OccurredAt,
	)
	return err
}

// ListByInvoice retrieves the events of an invoice, oldest first
func (r *TrackingEventRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*models.TrackingEvent, error) {
	if err := r.validateID(invoiceID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, invoice_id, tenant_id, channel, event_type, url,
			COALESCE(ip_address, ''), COALESCE(user_agent, ''), occurred_at
		FROM tracking_events
		WHERE invoice_id = ?
		ORDER BY occurred_at`

	rows, err := r.executeQuery(ctx, "list_by_invoice", query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*models.TrackingEvent, 0)
	for rows.Next() {
		event := &models.TrackingEvent{}
		var url sql.NullString
		err := rows.Scan(
			&event.ID,
			&event.InvoiceID,
			&event.TenantID,
			&event.Channel,
			&event.EventType,
			&url,
			&event.IPAddress,
			&event.UserAgent,
			&event.OccurredAt,
		)
		if err != nil {
			return nil, repositories.NewRepositoryError("list_by_invoice", "tracking_event", invoiceID, err)
		}
		event.URL = stringPtr(url)
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list_by_invoice", "tracking_event", invoiceID, err)
	}

	return events, nil
}
