package services

import (
	"context"
	"errors"
	"testing"

	"lanka-invoice-api/internal/models"
	"lanka-invoice-api/internal/repositories"
)

func TestTenantService_CreateTenant(t *testing.T) {
	sc, _ := setupServices(t)
	ctx := context.Background()

	tenant, err := sc.TenantService.CreateTenant(ctx, "tenant-from-token", &CreateTenantRequest{
		Name:            "  Ceylon Spice Traders ",
		BusinessAddress: "12 Galle Road, Colombo 03",
		ContactEmail:    "accounts@ceylonspice.lk",
		Phone:           "+94 11 234 5678",
		TaxSettings: &TaxSettingsRequest{
			Regime:          "svat",
			SSCLApplicable:  true,
			FiscalYearStart: "01-01",
		},
	})
	if err != nil {
		t.Fatalf("CreateTenant() failed: %v", err)
	}

	if tenant.ID != "tenant-from-token" {
		t.Errorf("Expected ID from token, got %s", tenant.ID)
	}
	if tenant.Name != "Ceylon Spice Traders" {
		t.Errorf("Expected trimmed name, got %q", tenant.Name)
	}
	if tenant.GetInvoicePrefix() != models.DefaultInvoicePrefix {
		t.Errorf("Expected default prefix, got %s", tenant.GetInvoicePrefix())
	}

	stored, err := sc.TenantService.GetTenant(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("GetTenant() failed: %v", err)
	}
	if stored.TaxProfile.Regime() != models.TaxRegimeSVAT {
		t.Errorf("Expected regime svat, got %s", stored.TaxProfile.Regime())
	}
	if stored.TaxProfile.FiscalYearStart != "01-01" {
		t.Errorf("Expected fiscal year start 01-01, got %s", stored.TaxProfile.FiscalYearStart)
	}

	_, err = sc.TenantService.CreateTenant(ctx, "tenant-from-token", &CreateTenantRequest{
		Name:            "Duplicate",
		BusinessAddress: "Somewhere",
		ContactEmail:    "dup@example.lk",
	})
	if !repositories.IsDuplicate(err) {
		t.Errorf("Expected duplicate error, got %v", err)
	}
}

func TestTenantService_CreateTenant_Validation(t *testing.T) {
	sc, _ := setupServices(t)
	ctx := context.Background()

	base := func() *CreateTenantRequest {
		return &CreateTenantRequest{
			Name:            "Ceylon Spice Traders",
			BusinessAddress: "12 Galle Road, Colombo 03",
			ContactEmail:    "accounts@ceylonspice.lk",
		}
	}

	tests := []struct {
		name   string
		mutate func(r *CreateTenantRequest)
	}{
		{"missing name", func(r *CreateTenantRequest) { r.Name = "" }},
		{"bad email", func(r *CreateTenantRequest) { r.ContactEmail = "not-an-email" }},
		{"bad TIN", func(r *CreateTenantRequest) { r.TIN = "12AB" }},
		{"VAT without number", func(r *CreateTenantRequest) {
			r.TaxSettings = &TaxSettingsRequest{Regime: "vat"}
		}},
		{"malformed VAT number", func(r *CreateTenantRequest) {
			r.TaxSettings = &TaxSettingsRequest{Regime: "vat", VATNumber: "114512345-9999"}
		}},
		{"unknown regime", func(r *CreateTenantRequest) {
			r.TaxSettings = &TaxSettingsRequest{Regime: "gst"}
		}},
		{"VAT rate above one", func(r *CreateTenantRequest) {
			r.TaxSettings = &TaxSettingsRequest{Regime: "vat", VATNumber: "114512345-7000", DefaultVATRate: dec("18")}
		}},
		{"bad fiscal year start", func(r *CreateTenantRequest) {
			r.TaxSettings = &TaxSettingsRequest{Regime: "none", FiscalYearStart: "13-40"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(req)

			if _, err := sc.TenantService.CreateTenant(ctx, "", req); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestTenantService_UpdateTenant(t *testing.T) {
	sc, _ := setupServices(t)
	ctx := context.Background()

	tenant := createVATTenant(t, sc)

	updated, err := sc.TenantService.UpdateTenant(ctx, tenant.ID, &UpdateTenantRequest{
		Name:          stringPtr("Ceylon Spice Traders (Pvt) Ltd"),
		InvoicePrefix: stringPtr("CST"),
		TaxSettings: &TaxSettingsRequest{
			Regime:         "vat",
			VATNumber:      "114512345-7000",
			SSCLApplicable: false,
			DefaultVATRate: dec("0.18"),
		},
	})
	if err != nil {
		t.Fatalf("UpdateTenant() failed: %v", err)
	}

	if updated.ContactEmail != tenant.ContactEmail {
		t.Errorf("Expected contact email unchanged, got %s", updated.ContactEmail)
	}

	stored, err := sc.TenantService.GetTenant(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("GetTenant() failed: %v", err)
	}
	if stored.Name != "Ceylon Spice Traders (Pvt) Ltd" {
		t.Errorf("Expected updated name, got %s", stored.Name)
	}
	if stored.GetInvoicePrefix() != "CST" {
		t.Errorf("Expected prefix CST, got %s", stored.GetInvoicePrefix())
	}
	if stored.TaxProfile.SSCLApplicable {
		t.Error("Expected SSCL to be disabled")
	}
	assertDecimal(t, "default VAT rate", stored.TaxProfile.DefaultVATRate, "0.18")

	if _, err := sc.TenantService.UpdateTenant(ctx, "missing", &UpdateTenantRequest{Name: stringPtr("x")}); !repositories.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestTenantService_GetTenant_NotFound(t *testing.T) {
	sc, _ := setupServices(t)

	if _, err := sc.TenantService.GetTenant(context.Background(), "missing"); !repositories.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
}
