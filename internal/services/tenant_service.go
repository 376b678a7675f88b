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

// tenantService implements TenantService
type tenantService struct {
	tenantRepo repositories.TenantRepository
	taxService TaxServiceInterface
	validator  *validator.Validate
	logger     *logrus.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(tenantRepo repositories.TenantRepository, taxService TaxServiceInterface, logger *logrus.Logger) TenantService {
	if logger == nil {
		logger = logrus.New()
	}
	return &tenantService{
		tenantRepo: tenantRepo,
		taxService: taxService,
		validator:  newValidator(),
		logger:     logger,
	}
}

// CreateTenant registers a tenant. tenantID is the identity issued by the
// auth service; a new ID is generated when it is empty.
func (s *tenantService) CreateTenant(ctx context.Context, tenantID string, req *CreateTenantRequest) (*models.Tenant, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: create tenant request cannot be nil", ErrInvalidRequest)
	}

	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	tenant := models.NewTenant(models.SanitizeString(req.Name), models.SanitizeString(req.BusinessAddress), strings.TrimSpace(req.ContactEmail))
	if tenantID != "" {
		tenant.ID = tenantID
	}
	tenant.SetPhone(req.Phone)
	tenant.SetTIN(strings.TrimSpace(req.TIN))
	if prefix := strings.TrimSpace(req.InvoicePrefix); prefix != "" {
		tenant.InvoicePrefix = prefix
	}

	if err := s.validateTIN(ctx, tenant.TIN); err != nil {
		return nil, err
	}

	if req.TaxSettings != nil {
		if err := s.applyTaxSettings(ctx, tenant, req.TaxSettings); err != nil {
			return nil, err
		}
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		s.logger.WithError(err).WithField("tenant_id", tenant.ID).Error("Failed to create tenant")
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenant.ID,
		"regime":    tenant.TaxProfile.Regime(),
	}).Info("Tenant created")

	return tenant, nil
}

// GetTenant retrieves a tenant by ID
func (s *tenantService) GetTenant(ctx context.Context, id string) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

// UpdateTenant applies the fields present in the request. Tax settings are
// replaced as a whole so the regime flags stay consistent.
func (s *tenantService) UpdateTenant(ctx context.Context, id string, req *UpdateTenantRequest) (*models.Tenant, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: update tenant request cannot be nil", ErrInvalidRequest)
	}

	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	if req.Name != nil {
		tenant.Name = models.SanitizeString(*req.Name)
	}
	if req.BusinessAddress != nil {
		tenant.BusinessAddress = strings.TrimSpace(*req.BusinessAddress)
	}
	if req.ContactEmail != nil {
		tenant.ContactEmail = strings.TrimSpace(*req.ContactEmail)
	}
	if req.Phone != nil {
		tenant.SetPhone(*req.Phone)
	}
	if req.TIN != nil {
		tenant.SetTIN(strings.TrimSpace(*req.TIN))
		if err := s.validateTIN(ctx, tenant.TIN); err != nil {
			return nil, err
		}
	}
	if req.InvoicePrefix != nil {
		tenant.InvoicePrefix = strings.TrimSpace(*req.InvoicePrefix)
	}

	if req.TaxSettings != nil {
		if err := s.applyTaxSettings(ctx, tenant, req.TaxSettings); err != nil {
			return nil, err
		}
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenant.ID,
		"regime":    tenant.TaxProfile.Regime(),
	}).Info("Tenant updated")

	return tenant, nil
}

func (s *tenantService) applyTaxSettings(ctx context.Context, tenant *models.Tenant, settings *TaxSettingsRequest) error {
	vatNumber := strings.TrimSpace(settings.VATNumber)
	if vatNumber != "" {
		if err := s.taxService.ValidateBusinessNumber(ctx, vatNumber); err != nil {
			return &RequestValidationError{Fields: []FieldError{{Field: "tax_settings.vat_number", Message: err.Error()}}}
		}
	}

	profile, err := models.NewTenantTaxProfile(
		models.TaxRegime(settings.Regime),
		vatNumber,
		settings.SSCLApplicable,
		settings.DefaultVATRate,
		settings.FiscalYearStart,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	tenant.TaxProfile = *profile
	return nil
}

func (s *tenantService) validateTIN(ctx context.Context, tin *string) error {
	if tin == nil {
		return nil
	}
	if err := s.taxService.ValidateTIN(ctx, *tin); err != nil {
		return &RequestValidationError{Fields: []FieldError{{Field: "tin", Message: err.Error()}}}
	}
	return nil
}
