package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"lanka-invoice-api/internal/models"
	"lanka-invoice-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

const clientColumns = `
	id, tenant_id, name, email, phone, address,
	registration_type, tin, vat_number, created_at, updated_at`

// ClientRepository implements the ClientRepository interface for SQLite
type ClientRepository struct {
	*BaseRepository[models.Client]
}

// NewClientRepository creates a new SQLite client repository
func NewClientRepository(db *sql.DB, config *repositories.Config, logger *logrus.Logger) *ClientRepository {
	return &ClientRepository{
		BaseRepository: NewBaseRepository[models.Client](db, "clients", "client", config, logger),
	}
}

// Create creates a new client
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	if err := client.Validate(); err != nil {
		return repositories.ValidationError("client", client.ID, err)
	}

	query := `INSERT INTO clients (` + clientColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		client.ID,
		client.TenantID,
		client.Name,
		client.Email,
		client.Phone,
		client.Address,
		client.Profile.RegistrationType,
		client.Profile.TIN,
		client.Profile.VATNumber,
		client.CreatedAt,
		client.UpdatedAt,
	)
	return err
}

// GetByID retrieves a tenant's client by ID
func (r *ClientRepository) GetByID(ctx context.Context, tenantID, id string) (*models.Client, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ? AND tenant_id = ?`

	row := r.executeQueryRow(ctx, "get_by_id", query, id, tenantID)
	client, err := scanClient(row)
	if err != nil {
		return nil, r.scanError("get_by_id", id, err)
	}

	return client, nil
}

// Update updates an existing client
func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	if err := client.Validate(); err != nil {
		return repositories.ValidationError("client", client.ID, err)
	}

	client.UpdateTimestamp()

	query := `
		UPDATE clients
		SET name = ?, email = ?, phone = ?, address = ?,
			registration_type = ?, tin = ?, vat_number = ?, updated_at = ?
		WHERE id = ? AND tenant_id = ?`

	result, err := r.executeExec(ctx, "update", query,
		client.Name,
		client.Email,
		client.Phone,
		client.Address,
		client.Profile.RegistrationType,
		client.Profile.TIN,
		client.Profile.VATNumber,
		client.UpdatedAt,
		client.ID,
		client.TenantID,
	)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "update", client.ID)
}

// List retrieves a page of clients ordered by name
func (r *ClientRepository) List(ctx context.Context, tenantID, search string, limit, offset int) ([]*models.Client, error) {
	where, args := clientSearchClause(tenantID, search)
	query := `SELECT ` + clientColumns + ` FROM clients ` + where + ` ORDER BY name COLLATE NOCASE, id LIMIT ? OFFSET ?`
	args = append(args, r.config.ClampLimit(limit), max(offset, 0))

	rows, err := r.executeQuery(ctx, "list", query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]*models.Client, 0)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, repositories.NewRepositoryError("list", "client", "", err)
		}
		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list", "client", "", err)
	}

	return clients, nil
}

// Count returns the number of clients matching the search
func (r *ClientRepository) Count(ctx context.Context, tenantID, search string) (int, error) {
	where, args := clientSearchClause(tenantID, search)

	var count int
	if err := r.executeQueryRow(ctx, "count", `SELECT COUNT(*) FROM clients `+where, args...).Scan(&count); err != nil {
		return 0, repositories.NewRepositoryError("count", "client", "", err)
	}
	return count, nil
}

func clientSearchClause(tenantID, search string) (string, []interface{}) {
	where := "WHERE tenant_id = ?"
	args := []interface{}{tenantID}

	if term := strings.TrimSpace(search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		where += " AND (LOWER(name) LIKE ? OR LOWER(COALESCE(email, '')) LIKE ? OR COALESCE(tin, '') LIKE ?)"
		args = append(args, pattern, pattern, pattern)
	}

	return where, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	client := &models.Client{}
	err := row.Scan(
		&client.ID,
		&client.TenantID,
		&client.Name,
		&client.Email,
		&client.Phone,
		&client.Address,
		&client.Profile.RegistrationType,
		&client.Profile.TIN,
		&client.Profile.VATNumber,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}
