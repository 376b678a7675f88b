package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"lanka-invoice-api/internal/models"
	"lanka-invoice-api/internal/repositories"
	"lanka-invoice-api/internal/tracking"

	"github.com/sirupsen/logrus"
)

const (
	openPath  = "/t/o/"
	clickPath = "/t/c/"
)

// trackingService implements TrackingService
type trackingService struct {
	repos         repositories.Repositories
	codec         *tracking.Codec
	publicBaseURL string
	logger        *logrus.Logger
}

// NewTrackingService creates a new tracking service. publicBaseURL is the
// externally reachable origin the tracking routes are served from.
func NewTrackingService(repos repositories.Repositories, codec *tracking.Codec, publicBaseURL string, logger *logrus.Logger) TrackingService {
	if logger == nil {
		logger = logrus.New()
	}
	return &trackingService{
		repos:         repos,
		codec:         codec,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// BuildLinks returns the open pixel URL and, when target is set, a click-through
// URL redirecting to it
func (s *trackingService) BuildLinks(ctx context.Context, tenantID, invoiceID string, channel models.DeliveryChannel, target string) (*TrackingLinks, error) {
	if !channel.IsValid() {
		return nil, &RequestValidationError{Fields: []FieldError{{Field: "channel", Message: "must be one of: email whatsapp"}}}
	}

	if _, err := s.repos.Invoices().GetByID(ctx, tenantID, invoiceID); err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	token := s.codec.Encode(invoiceID)
	query := url.Values{"ch": {string(channel)}}

	links := &TrackingLinks{
		Token:   token,
		OpenURL: s.publicBaseURL + openPath + token + "?" + query.Encode(),
	}

	if target != "" {
		if err := validateTarget(target); err != nil {
			return nil, err
		}
		query.Set("u", target)
		query.Set("us", s.codec.SignTarget(invoiceID, target))
		links.ClickURL = s.publicBaseURL + clickPath + token + "?" + query.Encode()
	}

	return links, nil
}

// RecordOpen records an open of the invoice the token refers to
func (s *trackingService) RecordOpen(ctx context.Context, token string, channel models.DeliveryChannel, meta RequestMeta) error {
	invoiceID, err := s.decode(token, models.TrackingEventOpen)
	if err != nil {
		return err
	}

	_, err = s.record(ctx, invoiceID, channel, models.TrackingEventOpen, nil, meta)
	return err
}

// RecordClick records a click and returns the URL to redirect to. The target
// must carry the signature issued with the link.
func (s *trackingService) RecordClick(ctx context.Context, token string, channel models.DeliveryChannel, target, targetSig string, meta RequestMeta) (string, error) {
	if err := validateTarget(target); err != nil {
		return "", err
	}

	invoiceID, err := s.decode(token, models.TrackingEventClick)
	if err != nil {
		return "", err
	}

	if err := s.codec.VerifyTarget(invoiceID, target, targetSig); err != nil {
		s.logger.WithFields(logrus.Fields{
			"invoice_id": invoiceID,
			"target":     target,
		}).Warn("Rejected click-through target")
		return "", err
	}

	if _, err := s.record(ctx, invoiceID, channel, models.TrackingEventClick, &target, meta); err != nil {
		return "", err
	}
	return target, nil
}

func (s *trackingService) decode(token string, eventType models.TrackingEventType) (string, error) {
	invoiceID, err := s.codec.Decode(token)
	if err != nil {
		s.logger.WithError(err).WithField("event_type", eventType).Warn("Rejected tracking token")
		return "", err
	}
	return invoiceID, nil
}

func (s *trackingService) record(ctx context.Context, invoiceID string, channel models.DeliveryChannel, eventType models.TrackingEventType, target *string, meta RequestMeta) (*models.TrackingEvent, error) {
	tenantID, err := s.repos.Invoices().GetTenantID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve invoice: %w", err)
	}

	if channel == "" || !channel.IsValid() {
		channel = models.DeliveryChannelEmail
	}

	event := models.NewTrackingEvent(invoiceID, channel, eventType)
	event.TenantID = tenantID
	event.URL = target
	event.IPAddress = meta.IPAddress
	event.UserAgent = meta.UserAgent

	if err := s.repos.TrackingEvents().Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record tracking event: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"invoice_id": invoiceID,
		"channel":    channel,
		"event_type": eventType,
	}).Debug("Tracking event recorded")

	return event, nil
}

// GetEngagement summarizes the opens and clicks of a tenant's invoice
func (s *trackingService) GetEngagement(ctx context.Context, tenantID, invoiceID string) (*models.EngagementSummary, error) {
	if _, err := s.repos.Invoices().GetByID(ctx, tenantID, invoiceID); err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	events, err := s.repos.TrackingEvents().ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking events: %w", err)
	}

	return models.SummarizeEngagement(invoiceID, events), nil
}

// validateTarget accepts only absolute http(s) URLs
func validateTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidTrackingURL, target)
	}
	return nil
}
