package services

import (
	"fmt"

	"lanka-invoice-api/internal/adapters/storage"
	"lanka-invoice-api/internal/repositories"
	"lanka-invoice-api/internal/tracking"

	"github.com/sirupsen/logrus"
)

// ServiceContainer holds all service instances
type ServiceContainer struct {
	TaxService      TaxServiceInterface
	InvoiceService  InvoiceService
	TenantService   TenantService
	ClientService   ClientService
	TrackingService TrackingService

	archive *DocumentArchive
}

// ServiceConfig holds configuration for services
type ServiceConfig struct {
	// TaxService overrides the jurisdiction default, e.g. with configured rates
	TaxService     TaxServiceInterface
	TrackingSecret string
	PublicBaseURL  string
	CountryCode    string
	// Archive stores issued invoice documents; nil disables archiving
	Archive        storage.DocumentStore
}

// NewServiceContainer creates a new service container with all services
func NewServiceContainer(repos repositories.RepositoryManager, config *ServiceConfig, logger *logrus.Logger) (*ServiceContainer, error) {
	if repos == nil {
		return nil, fmt.Errorf("repository manager cannot be nil")
	}

	if config == nil {
		config = &ServiceConfig{}
	}
	if config.CountryCode == "" {
		config.CountryCode = "LK"
	}

	if logger == nil {
		logger = logrus.New()
	}

	taxService := config.TaxService
	if taxService == nil {
		svc, err := NewTaxServiceForCountry(config.CountryCode, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create tax service: %w", err)
		}
		taxService = svc
	}

	codec, err := tracking.NewCodec(config.TrackingSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracking codec: %w", err)
	}

	archive := NewDocumentArchive(config.Archive, logger)

	return &ServiceContainer{
		TaxService:      taxService,
		InvoiceService:  NewInvoiceService(repos, taxService, archive, logger),
		TenantService:   NewTenantService(repos.Tenants(), taxService, logger),
		ClientService:   NewClientService(repos.Clients(), taxService, logger),
		TrackingService: NewTrackingService(repos, codec, config.PublicBaseURL, logger),
		archive:         archive,
	}, nil
}

// Validate validates that all services are properly initialized
func (sc *ServiceContainer) Validate() error {
	if sc.TaxService == nil {
		return fmt.Errorf("tax service is nil")
	}
	if sc.InvoiceService == nil {
		return fmt.Errorf("invoice service is nil")
	}
	if sc.TenantService == nil {
		return fmt.Errorf("tenant service is nil")
	}
	if sc.ClientService == nil {
		return fmt.Errorf("client service is nil")
	}
	if sc.TrackingService == nil {
		return fmt.Errorf("tracking service is nil")
	}

	return nil
}

// Close performs cleanup for all services
func (sc *ServiceContainer) Close() error {
	return sc.archive.Close()
}
