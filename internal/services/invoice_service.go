package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lanka-invoice-api/internal/models"
	"lanka-invoice-api/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// invoiceService implements InvoiceService
type invoiceService struct {
	repos      repositories.RepositoryManager
	taxService TaxServiceInterface
	archive    *DocumentArchive
	validator  *validator.Validate
	logger     *logrus.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(repos repositories.RepositoryManager, taxService TaxServiceInterface, archive *DocumentArchive, logger *logrus.Logger) InvoiceService {
	if logger == nil {
		logger = logrus.New()
	}
	return &invoiceService{
		repos:      repos,
		taxService: taxService,
		archive:    archive,
		validator:  newValidator(),
		logger:     logger,
	}
}

// CreateInvoice calculates and stores a draft invoice. The tenant and client
// profiles are snapshotted so later profile edits do not change what was
// drafted. The number is allocated in the same transaction that inserts the
// invoice, so a failed insert never burns a sequence value.
func (s *invoiceService) CreateInvoice(ctx context.Context, tenantID string, req *CreateInvoiceRequest) (*models.Invoice, *models.ValidationResult, error) {
	if req == nil {
		return nil, nil, fmt.Errorf("%w: create invoice request cannot be nil", ErrInvalidRequest)
	}

	if err := validateRequest(s.validator, req); err != nil {
		return nil, nil, err
	}

	tenant, err := s.repos.Tenants().GetByID(ctx, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	client, err := s.repos.Clients().GetByID(ctx, tenantID, req.ClientID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get client: %w", err)
	}

	invoice, err := s.buildInvoice(ctx, tenant, client, req)
	if err != nil {
		return nil, nil, err
	}

	result := models.ValidateTaxInvoice(invoice, tenant.TaxProfile, client.Profile)

	err = s.repos.WithTransaction(ctx, func(txCtx context.Context) error {
		seq, err := s.repos.Sequences().Next(txCtx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", err)
		}

		number, err := models.FormatInvoiceNumber(tenant.GetInvoicePrefix(), seq)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number

		return s.repos.Invoices().Create(txCtx, invoice)
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"tenant_id": tenantID,
			"client_id": req.ClientID,
		}).Error("Failed to create invoice")
		return nil, nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":      tenantID,
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
		"total":          invoice.Total.StringFixed(2),
		"warnings":       len(result.Warnings),
	}).Info("Invoice created")

	return invoice, result, nil
}

func (s *invoiceService) buildInvoice(ctx context.Context, tenant *models.Tenant, client *models.Client, req *CreateInvoiceRequest) (*models.Invoice, error) {
	issueDate, err := parseDate(req.IssueDate, today())
	if err != nil {
		return nil, err
	}

	dateOfSupply, err := parseDate(req.DateOfSupply, issueDate)
	if err != nil {
		return nil, err
	}

	invoice := models.NewInvoice(tenant.ID, client.ID, models.InvoiceType(req.InvoiceType))
	invoice.IssueDate = issueDate
	invoice.SetNotes(req.Notes)

	if req.DueDate != "" {
		dueDate, err := parseDate(req.DueDate, time.Time{})
		if err != nil {
			return nil, err
		}
		if dueDate.Before(issueDate) {
			return nil, &RequestValidationError{Fields: []FieldError{{Field: "due_date", Message: "must not be before the issue date"}}}
		}
		invoice.DueDate = &dueDate
	}

	voucher := req.SvatVoucher.toVoucher()
	calculation := s.taxService.Calculate(ctx, models.TaxCalculationInput{
		Tenant:       tenant.TaxProfile,
		Client:       client.Profile,
		LineItems:    toLineItemInputs(req.LineItems),
		DateOfSupply: dateOfSupply,
		SvatVoucher:  voucher,
	})
	invoice.ApplyCalculation(calculation)
	if calculation.Regime == models.TaxRegimeSVAT {
		invoice.SvatVoucher = voucher
	}

	if err := invoice.SetTenantProfileSnapshot(tenant.TaxProfile); err != nil {
		return nil, err
	}
	if err := invoice.SetClientProfileSnapshot(client.Profile); err != nil {
		return nil, err
	}

	if err := invoice.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	return invoice, nil
}

// GetInvoice retrieves a tenant's invoice with its line items
func (s *invoiceService) GetInvoice(ctx context.Context, tenantID, id string) (*models.Invoice, error) {
	invoice, err := s.repos.Invoices().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// ListInvoices returns one page of the tenant's invoices
func (s *invoiceService) ListInvoices(ctx context.Context, tenantID string, filters models.InvoiceFilters) ([]*models.Invoice, *models.PaginationResult, error) {
	filters.Normalize()

	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		return nil, nil, &RequestValidationError{Fields: []FieldError{{Field: "end_date", Message: "must not be before start_date"}}}
	}

	invoices, err := s.repos.Invoices().List(ctx, tenantID, filters)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	total, err := s.repos.Invoices().Count(ctx, tenantID, filters)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	return invoices, models.NewPaginationResult(total, filters.Limit, filters.Offset), nil
}

// SendInvoice re-validates a draft against the tenant and client as they are
// now and marks it sent. Blocking validation errors leave it a draft. The
// stored profile snapshots are refreshed to what was validated.
func (s *invoiceService) SendInvoice(ctx context.Context, tenantID, id string) (*models.Invoice, *models.ValidationResult, error) {
	var (
		invoice *models.Invoice
		result  *models.ValidationResult
	)

	err := s.repos.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		invoice, err = s.repos.Invoices().GetByID(txCtx, tenantID, id)
		if err != nil {
			return err
		}

		if !invoice.IsDraft() {
			return fmt.Errorf("%w: invoice %s is %s", ErrInvoiceNotDraft, invoice.InvoiceNumber, invoice.Status)
		}

		tenant, err := s.repos.Tenants().GetByID(txCtx, tenantID)
		if err != nil {
			return err
		}
		client, err := s.repos.Clients().GetByID(txCtx, tenantID, invoice.ClientID)
		if err != nil {
			return err
		}

		drafted, err := invoice.GetTenantProfileSnapshot()
		if err != nil {
			return err
		}
		changes := drafted.TaxBasisChanges(tenant.TaxProfile, s.taxService.GetTaxInfo(txCtx).VATRate)
		if len(changes) > 0 {
			return fmt.Errorf("%w: %s", ErrTaxProfileChanged, strings.Join(changes, ", "))
		}

		result = models.ValidateTaxInvoice(invoice, tenant.TaxProfile, client.Profile)
		if !result.Valid {
			return &InvoiceValidationError{Result: result}
		}

		if err := invoice.SetTenantProfileSnapshot(tenant.TaxProfile); err != nil {
			return err
		}
		if err := invoice.SetClientProfileSnapshot(client.Profile); err != nil {
			return err
		}
		if err := invoice.MarkSent(time.Now().UTC()); err != nil {
			return err
		}

		if err := s.repos.Invoices().Update(txCtx, invoice); err != nil {
			return err
		}

		return s.archive.Archive(txCtx, invoice, tenant, client)
	})
	if err != nil {
		var validationErr *InvoiceValidationError
		if errors.As(err, &validationErr) {
			s.logger.WithFields(logrus.Fields{
				"tenant_id":  tenantID,
				"invoice_id": id,
				"errors":     validationErr.Result.Errors,
			}).Warn("Invoice send blocked by tax validation")
			return nil, validationErr.Result, err
		}
		return nil, nil, fmt.Errorf("failed to send invoice: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":      tenantID,
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
	}).Info("Invoice sent")

	return invoice, result, nil
}

// RecordPayment records a manual payment and moves the invoice to
// partially_paid or paid in one transaction
func (s *invoiceService) RecordPayment(ctx context.Context, tenantID, id string, req *RecordPaymentRequest) (*models.Invoice, *models.Payment, error) {
	if req == nil {
		return nil, nil, fmt.Errorf("%w: payment request cannot be nil", ErrInvalidRequest)
	}

	if err := validateRequest(s.validator, req); err != nil {
		return nil, nil, err
	}

	paidAt, err := parseDate(req.PaidAt, time.Now().UTC())
	if err != nil {
		return nil, nil, err
	}

	payment := models.NewPayment(tenantID, id, req.Amount, models.PaymentMethod(req.Method))
	payment.SetReference(req.Reference)
	payment.PaidAt = paidAt

	if err := payment.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	var invoice *models.Invoice
	err = s.repos.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		invoice, err = s.repos.Invoices().GetByID(txCtx, tenantID, id)
		if err != nil {
			return err
		}

		if err := invoice.ApplyPayment(payment.Amount); err != nil {
			return err
		}

		if err := s.repos.Payments().Create(txCtx, payment); err != nil {
			return err
		}
		return s.repos.Invoices().Update(txCtx, invoice)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"invoice_id": invoice.ID,
		"payment_id": payment.ID,
		"amount":     payment.Amount.StringFixed(2),
		"status":     invoice.Status,
	}).Info("Payment recorded")

	return invoice, payment, nil
}

// VoidInvoice cancels an invoice with no recorded payments
func (s *invoiceService) VoidInvoice(ctx context.Context, tenantID, id string) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := s.repos.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		invoice, err = s.repos.Invoices().GetByID(txCtx, tenantID, id)
		if err != nil {
			return err
		}

		if err := invoice.Void(); err != nil {
			return err
		}
		return s.repos.Invoices().Update(txCtx, invoice)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to void invoice: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"invoice_id": invoice.ID,
	}).Info("Invoice voided")

	return invoice, nil
}

// GetPayments lists the payments recorded against an invoice
func (s *invoiceService) GetPayments(ctx context.Context, tenantID, id string) ([]*models.Payment, error) {
	if _, err := s.repos.Invoices().GetByID(ctx, tenantID, id); err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	payments, err := s.repos.Payments().ListByInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// GetInvoiceDocument returns the document archived when the invoice was sent
func (s *invoiceService) GetInvoiceDocument(ctx context.Context, tenantID, id string) ([]byte, error) {
	invoice, err := s.repos.Invoices().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if invoice.IsDraft() {
		return nil, fmt.Errorf("%w: invoice %s has not been sent", ErrDocumentNotFound, invoice.InvoiceNumber)
	}

	return s.archive.Fetch(ctx, invoice)
}
