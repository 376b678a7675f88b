package repositories

import (
	"errors"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"default config", func(c *Config) {}, false},
		{"zero default limit", func(c *Config) { c.DefaultLimit = 0 }, true},
		{"zero max limit", func(c *Config) { c.MaxLimit = 0 }, true},
		{"default above max", func(c *Config) { c.DefaultLimit = c.MaxLimit + 1 }, true},
		{"negative slow query threshold", func(c *Config) { c.SlowQueryThreshold = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ClampLimit(t *testing.T) {
	cfg := &Config{DefaultLimit: 50, MaxLimit: 500}

	tests := []struct {
		limit int
		want  int
	}{
		{0, 50},
		{-1, 50},
		{10, 10},
		{500, 500},
		{501, 500},
	}

	for _, tt := range tests {
		if got := cfg.ClampLimit(tt.limit); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.limit, got, tt.want)
		}
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NotFoundError("invoice", "abc"), IsNotFound},
		{"duplicate", DuplicateError("invoice", "invoice_number", "INV-000001"), IsDuplicate},
		{"validation", ValidationError("client", "abc", errors.New("name is required")), IsValidation},
		{"constraint", ConstraintError("tenant", errors.New("CHECK failed")), IsConstraint},
		{"foreign key", ForeignKeyError("invoice", errors.New("FOREIGN KEY failed")), IsConstraint},
		{"transaction", TransactionError("commit", errors.New("busy")), IsTransaction},
		{"connection", ConnectionError(errors.New("closed")), IsConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("Expected helper to match %v", tt.err)
			}

			wrapped := errors.Join(errors.New("outer"), tt.err)
			if !tt.check(wrapped) {
				t.Errorf("Expected helper to match wrapped error %v", wrapped)
			}
		})
	}

	if IsNotFound(DuplicateError("invoice", "id", "1")) {
		t.Error("Expected duplicate error not to be reported as not found")
	}
}

func TestRepositoryError_Message(t *testing.T) {
	err := NewRepositoryError("update", "invoice", "abc", errors.New("disk I/O error"))
	want := "invoice update operation failed for ID abc: disk I/O error"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}

	notFound := NotFoundError("client", "xyz")
	if notFound.Error() != "client with ID xyz not found" {
		t.Errorf("Expected not found message, got %q", notFound.Error())
	}
}
