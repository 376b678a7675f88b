package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client represents an invoice recipient belonging to a tenant
type Client struct {
	ID        string        `json:"id" db:"id" validate:"required,uuid"`
	TenantID  string        `json:"tenant_id" db:"tenant_id" validate:"required"`
	Name      string        `json:"name" db:"name" validate:"required,min=1,max=255"`
	Email     *string       `json:"email,omitempty" db:"email" validate:"omitempty,email"`
	Phone     *string       `json:"phone,omitempty" db:"phone"`
	Address   *string       `json:"address,omitempty" db:"address"`
	Profile   ClientProfile `json:"profile"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// NewClient creates an unregistered client with generated ID and timestamps
func NewClient(tenantID, name string) *Client {
	now := time.Now().UTC()
	return &Client{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		Name:     name,
		Profile: ClientProfile{
			RegistrationType: ClientRegistrationNone,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the client data
func (c *Client) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("client ID is required")
	}

	if c.TenantID == "" {
		return fmt.Errorf("tenant ID is required")
	}

	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("client name is required")
	}

	if len(c.Name) > 255 {
		return fmt.Errorf("client name cannot exceed 255 characters")
	}

	if c.Email != nil && *c.Email != "" {
		if !isValidEmail(*c.Email) {
			return fmt.Errorf("invalid email format: %s", *c.Email)
		}
	}

	if c.Phone != nil && !IsValidPhone(*c.Phone) {
		return fmt.Errorf("invalid phone number: %s", *c.Phone)
	}

	return c.Profile.Validate()
}

// IsBusiness returns true if the client is VAT/SVAT registered or has a TIN
func (c *Client) IsBusiness() bool {
	return c.Profile.IsRegistered() || c.Profile.HasTIN()
}

// UpdateTimestamp updates the UpdatedAt timestamp
func (c *Client) UpdateTimestamp() {
	c.UpdatedAt = time.Now().UTC()
}

// isValidEmail performs basic email validation
func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
