package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DeliveryChannel is the channel an invoice was delivered through
type DeliveryChannel string

const (
	DeliveryChannelEmail    DeliveryChannel = "email"
	DeliveryChannelWhatsApp DeliveryChannel = "whatsapp"
)

// IsValid reports whether the channel is one of the known values
func (c DeliveryChannel) IsValid() bool {
	return c == DeliveryChannelEmail || c == DeliveryChannelWhatsApp
}

// TrackingEventType is the kind of engagement recorded
type TrackingEventType string

const (
	TrackingEventOpen  TrackingEventType = "open"
	TrackingEventClick TrackingEventType = "click"
)

// TrackingEvent records an open or click on a delivered invoice
type TrackingEvent struct {
	ID         string            `json:"id" db:"id" validate:"required,uuid"`
	InvoiceID  string            `json:"invoice_id" db:"invoice_id" validate:"required"`
	TenantID   string            `json:"tenant_id" db:"tenant_id"`
	Channel    DeliveryChannel   `json:"channel" db:"channel" validate:"required,oneof=email whatsapp"`
	EventType  TrackingEventType `json:"event_type" db:"event_type" validate:"required,oneof=open click"`
	URL        *string           `json:"url,omitempty" db:"url"`
	IPAddress  string            `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  string            `json:"user_agent,omitempty" db:"user_agent"`
	OccurredAt time.Time         `json:"occurred_at" db:"occurred_at"`
}

// NewTrackingEvent creates an event with generated ID and timestamp
func NewTrackingEvent(invoiceID string, channel DeliveryChannel, eventType TrackingEventType) *TrackingEvent {
	return &TrackingEvent{
		ID:         uuid.New().String(),
		InvoiceID:  invoiceID,
		Channel:    channel,
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
	}
}

// Validate validates the tracking event data
func (e *TrackingEvent) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("tracking event ID is required")
	}

	if e.InvoiceID == "" {
		return fmt.Errorf("invoice ID is required")
	}

	if !e.Channel.IsValid() {
		return fmt.Errorf("invalid delivery channel: %s", e.Channel)
	}

	if e.EventType != TrackingEventOpen && e.EventType != TrackingEventClick {
		return fmt.Errorf("invalid tracking event type: %s", e.EventType)
	}

	if e.EventType == TrackingEventClick && (e.URL == nil || *e.URL == "") {
		return fmt.Errorf("click events require a URL")
	}

	return nil
}

// EngagementSummary aggregates tracking events for one invoice
type EngagementSummary struct {
	InvoiceID   string     `json:"invoice_id"`
	Opens       int        `json:"opens"`
	Clicks      int        `json:"clicks"`
	FirstOpenAt *time.Time `json:"first_open_at,omitempty"`
	LastEventAt *time.Time `json:"last_event_at,omitempty"`
}

// SummarizeEngagement folds events into counts and first/last timestamps
func SummarizeEngagement(invoiceID string, events []*TrackingEvent) *EngagementSummary {
	summary := &EngagementSummary{InvoiceID: invoiceID}
	for _, e := range events {
		switch e.EventType {
		case TrackingEventOpen:
			summary.Opens++
			if summary.FirstOpenAt == nil || e.OccurredAt.Before(*summary.FirstOpenAt) {
				at := e.OccurredAt
				summary.FirstOpenAt = &at
			}
		case TrackingEventClick:
			summary.Clicks++
		}
		if summary.LastEventAt == nil || e.OccurredAt.After(*summary.LastEventAt) {
			at := e.OccurredAt
			summary.LastEventAt = &at
		}
	}
	return summary
}
