package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"lanka-invoice-api/internal/adapters/storage"
	"lanka-invoice-api/internal/database"
	"lanka-invoice-api/internal/models"
	"lanka-invoice-api/internal/repositories/sqlite"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const testBaseURL = "https://invoices.example.lk"

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func boolPtr(b bool) *bool {
	return &b
}

func stringPtr(s string) *string {
	return &s
}

func setupServices(t *testing.T) (*ServiceContainer, *sqlite.SQLiteRepositoryManager) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "services_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	config := database.DefaultConnectionConfig()
	config.DatabasePath = filepath.Join(tempDir, "test.db")
	config.Logger = testLogger()

	cm := database.NewConnectionManager(config)
	if err := cm.Connect(context.Background()); err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to open database: %v", err)
	}

	t.Cleanup(func() {
		cm.Close()
		os.RemoveAll(tempDir)
	})

	repos := sqlite.NewSQLiteRepositoryManager(cm.GetDB(), nil, testLogger())
	container, err := NewServiceContainer(repos, &ServiceConfig{
		TrackingSecret: "test-secret",
		PublicBaseURL:  testBaseURL + "/",
		Archive:        storage.NewMemoryStore(),
	}, testLogger())
	if err != nil {
		t.Fatalf("NewServiceContainer() failed: %v", err)
	}

	return container, repos
}

func createVATTenant(t *testing.T, sc *ServiceContainer) *models.Tenant {
	t.Helper()

	tenant, err := sc.TenantService.CreateTenant(context.Background(), "", &CreateTenantRequest{
		Name:            "Ceylon Spice Traders",
		BusinessAddress: "12 Galle Road, Colombo 03",
		ContactEmail:    "accounts@ceylonspice.lk",
		TIN:             "114512345",
		TaxSettings: &TaxSettingsRequest{
			Regime:         "vat",
			VATNumber:      "114512345-7000",
			SSCLApplicable: true,
			DefaultVATRate: dec("0.15"),
		},
	})
	if err != nil {
		t.Fatalf("CreateTenant() failed: %v", err)
	}
	return tenant
}

func createVATClient(t *testing.T, sc *ServiceContainer, tenantID string) *models.Client {
	t.Helper()

	client, err := sc.ClientService.CreateClient(context.Background(), tenantID, &CreateClientRequest{
		Name:             "Kandy Hotels PLC",
		Email:            "finance@kandyhotels.lk",
		RegistrationType: "vat",
		TIN:              "987654321",
		VATNumber:        "987654321-7000",
	})
	if err != nil {
		t.Fatalf("CreateClient() failed: %v", err)
	}
	return client
}

// standardLines totals 105,000 before tax: 100,000 standard rated and 5,000 zero-rated
func standardLines() []LineItemRequest {
	return []LineItemRequest{
		{
			Description: "Cinnamon sticks 1kg",
			Quantity:    dec("10"),
			UnitPrice:   dec("10000"),
		},
		{
			Description: "Export freight",
			Quantity:    dec("1"),
			UnitPrice:   dec("5000"),
			TaxCategory: "zero-rated",
		},
	}
}

func createDraftInvoice(t *testing.T, sc *ServiceContainer, tenantID, clientID string) *models.Invoice {
	t.Helper()

	invoice, _, err := sc.InvoiceService.CreateInvoice(context.Background(), tenantID, &CreateInvoiceRequest{
		ClientID:     clientID,
		InvoiceType:  "tax_invoice",
		IssueDate:    "2024-06-15",
		DateOfSupply: "2024-06-14",
		LineItems:    standardLines(),
	})
	if err != nil {
		t.Fatalf("CreateInvoice() failed: %v", err)
	}
	return invoice
}

func assertDecimal(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("Expected %s %s, got %s", field, want, got.String())
	}
}
