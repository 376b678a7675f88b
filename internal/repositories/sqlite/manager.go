package sqlite

import (
	"context"
	"database/sql"

	"lanka-invoice-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// SQLiteRepositoryManager implements the RepositoryManager interface for SQLite
type SQLiteRepositoryManager struct {
	db                 *sql.DB
	config             *repositories.Config
	logger             *logrus.Logger
	tenantRepo         repositories.TenantRepository
	clientRepo         repositories.ClientRepository
	invoiceRepo        repositories.InvoiceRepository
	paymentRepo        repositories.PaymentRepository
	sequenceRepo       repositories.SequenceRepository
	trackingRepo       repositories.TrackingEventRepository
	transactionManager repositories.TransactionManager
}

// NewSQLiteRepositoryManager creates a repository manager over an open, migrated database
func NewSQLiteRepositoryManager(db *sql.DB, config *repositories.Config, logger *logrus.Logger) *SQLiteRepositoryManager {
	if logger == nil {
		logger = logrus.New()
	}
	if config == nil {
		config = repositories.DefaultConfig()
	}

	return &SQLiteRepositoryManager{
		db:                 db,
		config:             config,
		logger:             logger,
		tenantRepo:         NewTenantRepository(db, config, logger),
		clientRepo:         NewClientRepository(db, config, logger),
		invoiceRepo:        NewInvoiceRepository(db, config, logger),
		paymentRepo:        NewPaymentRepository(db, config, logger),
		sequenceRepo:       NewSequenceRepository(db, config, logger),
		trackingRepo:       NewTrackingEventRepository(db, config, logger),
		transactionManager: NewSQLiteTransactionManager(db, logger),
	}
}

// BeginTransaction starts a new transaction
func (m *SQLiteRepositoryManager) BeginTransaction(ctx context.Context) (repositories.Transaction, error) {
	return m.transactionManager.BeginTransaction(ctx)
}

// WithTransaction executes a function within a transaction
func (m *SQLiteRepositoryManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.transactionManager.WithTransaction(ctx, fn)
}

// Tenants returns the tenant repository
func (m *SQLiteRepositoryManager) Tenants() repositories.TenantRepository {
	return m.tenantRepo
}

// Clients returns the client repository
func (m *SQLiteRepositoryManager) Clients() repositories.ClientRepository {
	return m.clientRepo
}

// Invoices returns the invoice repository
func (m *SQLiteRepositoryManager) Invoices() repositories.InvoiceRepository {
	return m.invoiceRepo
}

// Payments returns the payment repository
func (m *SQLiteRepositoryManager) Payments() repositories.PaymentRepository {
	return m.paymentRepo
}

// Sequences returns the invoice sequence repository
func (m *SQLiteRepositoryManager) Sequences() repositories.SequenceRepository {
	return m.sequenceRepo
}

// TrackingEvents returns the tracking event repository
func (m *SQLiteRepositoryManager) TrackingEvents() repositories.TrackingEventRepository {
	return m.trackingRepo
}

// Close closes the database connection
func (m *SQLiteRepositoryManager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Health checks the health of the repository connections
func (m *SQLiteRepositoryManager) Health(ctx context.Context) error {
	if m.db == nil {
		return repositories.ConnectionError(repositories.ErrConnection)
	}

	if err := m.db.PingContext(ctx); err != nil {
		return repositories.ConnectionError(err)
	}

	var result int
	if err := m.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return repositories.ConnectionError(err)
	}

	return nil
}
