package services

import (
	"context"
	"fmt"
	"strings"

	"lanka-invoice-api/internal/models"
	"lanka-invoice-api/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// clientService implements ClientService
type clientService struct {
	clientRepo repositories.ClientRepository
	taxService TaxServiceInterface
	validator  *validator.Validate
	logger     *logrus.Logger
}

// NewClientService creates a new client service
func NewClientService(clientRepo repositories.ClientRepository, taxService TaxServiceInterface, logger *logrus.Logger) ClientService {
	if logger == nil {
		logger = logrus.New()
	}
	return &clientService{
		clientRepo: clientRepo,
		taxService: taxService,
		validator:  newValidator(),
		logger:     logger,
	}
}

// CreateClient creates a client for the tenant
func (s *clientService) CreateClient(ctx context.Context, tenantID string, req *CreateClientRequest) (*models.Client, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: create client request cannot be nil", ErrInvalidRequest)
	}

	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	client := models.NewClient(tenantID, models.SanitizeString(req.Name))
	client.Email = optionalString(req.Email)
	client.Phone = optionalString(req.Phone)
	client.Address = optionalString(req.Address)
	if req.RegistrationType != "" {
		client.Profile.RegistrationType = models.ClientRegistrationType(req.RegistrationType)
	}
	client.Profile.TIN = optionalString(req.TIN)
	client.Profile.VATNumber = optionalString(req.VATNumber)

	if err := s.validateProfile(ctx, client); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		s.logger.WithError(err).WithField("tenant_id", tenantID).Error("Failed to create client")
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":         tenantID,
		"client_id":         client.ID,
		"registration_type": client.Profile.RegistrationType,
	}).Info("Client created")

	return client, nil
}

// GetClient retrieves a tenant's client
func (s *clientService) GetClient(ctx context.Context, tenantID, id string) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// UpdateClient applies the fields present in the request
func (s *clientService) UpdateClient(ctx context.Context, tenantID, id string, req *UpdateClientRequest) (*models.Client, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: update client request cannot be nil", ErrInvalidRequest)
	}

	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	if req.Name != nil {
		client.Name = models.SanitizeString(*req.Name)
	}
	if req.Email != nil {
		client.Email = optionalString(*req.Email)
	}
	if req.Phone != nil {
		client.Phone = optionalString(*req.Phone)
	}
	if req.Address != nil {
		client.Address = optionalString(*req.Address)
	}
	if req.RegistrationType != nil {
		client.Profile.RegistrationType = models.ClientRegistrationType(*req.RegistrationType)
	}
	if req.TIN != nil {
		client.Profile.TIN = optionalString(*req.TIN)
	}
	if req.VATNumber != nil {
		client.Profile.VATNumber = optionalString(*req.VATNumber)
	}

	if err := s.validateProfile(ctx, client); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	return client, nil
}

// ListClients returns one page of the tenant's clients
func (s *clientService) ListClients(ctx context.Context, tenantID string, filters *ClientFilters) ([]*models.Client, *models.PaginationResult, error) {
	if filters == nil {
		filters = &ClientFilters{}
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = models.DefaultListLimit
	}
	if limit > models.MaxListLimit {
		limit = models.MaxListLimit
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}
	search := strings.TrimSpace(filters.Search)

	clients, err := s.clientRepo.List(ctx, tenantID, search, limit, offset)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list clients: %w", err)
	}

	total, err := s.clientRepo.Count(ctx, tenantID, search)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count clients: %w", err)
	}

	return clients, models.NewPaginationResult(total, limit, offset), nil
}

func (s *clientService) validateProfile(ctx context.Context, client *models.Client) error {
	if err := client.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if client.Profile.VATNumber != nil {
		if err := s.taxService.ValidateBusinessNumber(ctx, *client.Profile.VATNumber); err != nil {
			return &RequestValidationError{Fields: []FieldError{{Field: "vat_number", Message: err.Error()}}}
		}
	}
	if client.Profile.TIN != nil {
		if err := s.taxService.ValidateTIN(ctx, *client.Profile.TIN); err != nil {
			return &RequestValidationError{Fields: []FieldError{{Field: "tin", Message: err.Error()}}}
		}
	}
	return nil
}
