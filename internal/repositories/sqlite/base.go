package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"lanka-invoice-api/internal/repositories"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// executor is the subset of *sql.DB and *sql.Tx the repositories use
type executor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// BaseRepository provides common functionality for all SQLite repositories
type BaseRepository[T any] struct {
	db     *sql.DB
	table  string
	entity string
	config *repositories.Config
	logger *logrus.Logger
}

// NewBaseRepository creates a new base repository
func NewBaseRepository[T any](db *sql.DB, table, entity string, config *repositories.Config, logger *logrus.Logger) *BaseRepository[T] {
	if logger == nil {
		logger = logrus.New()
	}
	if config == nil {
		config = repositories.DefaultConfig()
	}
	return &BaseRepository[T]{
		db:     db,
		table:  table,
		entity: entity,
		config: config,
		logger: logger,
	}
}

// conn returns the transaction carried by ctx, or the database
func (r *BaseRepository[T]) conn(ctx context.Context) executor {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// inTransaction runs fn in the transaction carried by ctx, starting one if needed
func (r *BaseRepository[T]) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	return NewSQLiteTransactionManager(r.db, r.logger).WithTransaction(ctx, fn)
}

// Exists checks if an entity with the given ID exists
func (r *BaseRepository[T]) Exists(ctx context.Context, id string) (bool, error) {
	if err := r.validateID(id); err != nil {
		return false, err
	}

	query := fmt.Sprintf("SELECT 1 FROM %s WHERE id = ? LIMIT 1", r.table)

	var exists int
	err := r.executeQueryRow(ctx, "exists", query, id).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, repositories.NewRepositoryError("exists", r.entity, id, err)
	}

	return exists == 1, nil
}

// logQuery logs a query with its execution time
func (r *BaseRepository[T]) logQuery(operation string, query string, args []interface{}, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation": operation,
		"table":     r.table,
		"duration":  duration,
	}

	switch {
	case err != nil:
		fields["query"] = compactQuery(query)
		fields["error"] = err.Error()
		r.logger.WithFields(fields).Error("Query failed")
	case r.config.SlowQueryThreshold > 0 && duration > r.config.SlowQueryThreshold:
		fields["query"] = compactQuery(query)
		r.logger.WithFields(fields).Warn("Slow query")
	case r.config.EnableQueryLogging:
		fields["query"] = compactQuery(query)
		fields["args"] = len(args)
		r.logger.WithFields(fields).Debug("Query executed")
	}
}

// executeQuery executes a query and logs the result
func (r *BaseRepository[T]) executeQuery(ctx context.Context, operation, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	r.logQuery(operation, query, args, time.Since(start), err)

	if err != nil {
		return nil, r.wrapError(operation, "", err)
	}

	return rows, nil
}

// executeQueryRow executes a single-row query and logs the result
func (r *BaseRepository[T]) executeQueryRow(ctx context.Context, operation, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := r.conn(ctx).QueryRowContext(ctx, query, args...)
	r.logQuery(operation, query, args, time.Since(start), row.Err())

	return row
}

// executeExec executes a non-query statement and logs the result
func (r *BaseRepository[T]) executeExec(ctx context.Context, operation, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := r.conn(ctx).ExecContext(ctx, query, args...)
	r.logQuery(operation, query, args, time.Since(start), err)

	if err != nil {
		return nil, r.wrapError(operation, "", err)
	}

	return result, nil
}

// checkRowsAffected checks if the expected number of rows were affected
func (r *BaseRepository[T]) checkRowsAffected(result sql.Result, operation, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return repositories.NewRepositoryError(operation, r.entity, id, err)
	}

	if rowsAffected == 0 {
		return repositories.NotFoundError(r.entity, id)
	}

	return nil
}

// validateID validates that an ID is not empty
func (r *BaseRepository[T]) validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return repositories.NewRepositoryError("validate", r.entity, id, repositories.ErrInvalidID)
	}
	return nil
}

// wrapError maps SQLite constraint failures onto repository sentinels
func (r *BaseRepository[T]) wrapError(operation, id string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &repositories.RepositoryError{
				Op:      operation,
				Entity:  r.entity,
				ID:      id,
				Err:     repositories.ErrDuplicateEntry,
				Message: fmt.Sprintf("%s already exists: %v", r.entity, err),
			}
		case sqlite3.ErrConstraintForeignKey:
			return repositories.ForeignKeyError(r.entity, err)
		default:
			return repositories.ConstraintError(r.entity, err)
		}
	}

	return repositories.NewRepositoryError(operation, r.entity, id, err)
}

// scanError converts a single-row scan error
func (r *BaseRepository[T]) scanError(operation, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repositories.NotFoundError(r.entity, id)
	}
	return r.wrapError(operation, id, err)
}

func compactQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
