package server

import (
	"context"
	"fmt"

	"lanka-invoice-api/internal/adapters/storage"
	"lanka-invoice-api/internal/config"
	"lanka-invoice-api/internal/database"
	"lanka-invoice-api/internal/middleware"
	"lanka-invoice-api/internal/repositories/sqlite"
	"lanka-invoice-api/internal/services"

	"github.com/sirupsen/logrus"
)

// Development fallbacks, rejected by config validation in production
const (
	devJWTSecret      = "dev-jwt-secret"
	devTrackingSecret = "dev-tracking-secret"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logrus.Logger
	Services    *services.ServiceContainer
	AuthService *middleware.AuthService

	// Internal dependencies
	db *database.ConnectionManager
}

// NewContainer opens the database, runs migrations when enabled and wires
// the repositories and services
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := cfg.Logging.NewLogger()

	if err := cfg.Database.EnsureDirectories(); err != nil {
		return nil, err
	}

	db := database.NewConnectionManager(cfg.Database.ToConnectionConfig(logger))
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	container, err := newContainer(cfg, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"mode":        config.GetDeploymentMode(),
		"db_path":     cfg.Database.Path,
		"archive":     cfg.Archive.Backend,
	}).Info("Container initialized")

	return container, nil
}

func newContainer(cfg *config.Config, db *database.ConnectionManager, logger *logrus.Logger) (*Container, error) {
	taxConfig := cfg.Tax
	if taxConfig == nil {
		var err error
		if taxConfig, err = config.LoadTaxSystemConfig(); err != nil {
			return nil, err
		}
	}

	taxService, err := taxConfig.CreateTaxService(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create tax service: %w", err)
	}

	trackingSecret := cfg.Tracking.Secret
	if trackingSecret == "" {
		logger.Warn("TRACKING_SECRET not set, using development secret")
		trackingSecret = devTrackingSecret
	}

	archive, err := storage.New(cfg.Archive.ToStorageConfig(), storage.DefaultRetryConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice archive: %w", err)
	}
	if archive == nil {
		logger.Warn("Invoice archive disabled, issued documents will not be stored")
	}

	repos := sqlite.NewSQLiteRepositoryManager(db.GetDB(), nil, logger)
	serviceContainer, err := services.NewServiceContainer(repos, &services.ServiceConfig{
		TaxService:     taxService,
		TrackingSecret: trackingSecret,
		PublicBaseURL:  cfg.Tracking.PublicBaseURL,
		CountryCode:    taxConfig.CountryCode,
		Archive:        archive,
	}, logger)
	if err != nil {
		if archive != nil {
			archive.Close()
		}
		return nil, fmt.Errorf("failed to create service container: %w", err)
	}

	if err := serviceContainer.Validate(); err != nil {
		serviceContainer.Close()
		return nil, fmt.Errorf("invalid service container: %w", err)
	}

	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		logger.Warn("JWT_SECRET not set, using development secret")
		jwtSecret = devJWTSecret
	}

	authService := middleware.NewAuthService(&middleware.AuthConfig{
		JWTSecret: jwtSecret,
		Issuer:    cfg.JWT.Issuer,
	}, logger)

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Services:    serviceContainer,
		AuthService: authService,
		db:          db,
	}, nil
}

// HealthCheck checks the database connection
func (c *Container) HealthCheck(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("container is closed")
	}
	return c.db.HealthCheck(ctx)
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.Services != nil {
		if err := c.Services.Close(); err != nil {
			return fmt.Errorf("failed to close services: %w", err)
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		c.db = nil
	}

	return nil
}
