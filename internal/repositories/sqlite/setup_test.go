package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lanka-invoice-api/internal/database"
	"lanka-invoice-api/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	tempDir, err := os.MkdirTemp("", "sqlite_test_*")
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

	cleanup := func() {
		cm.Close()
		os.RemoveAll(tempDir)
	}

	return cm.GetDB(), cleanup
}

func setupManager(t *testing.T) (*SQLiteRepositoryManager, func()) {
	db, cleanup := setupTestDB(t)
	return NewSQLiteRepositoryManager(db, nil, testLogger()), cleanup
}

func stringPtrOf(s string) *string {
	return &s
}

func createTestTenant(t *testing.T, m *SQLiteRepositoryManager) *models.Tenant {
	t.Helper()

	tenant := models.NewTenant("Ceylon Spice Traders", "12 Galle Road\nColombo 03", "accounts@ceylonspice.lk")
	profile, err := models.NewTenantTaxProfile(models.TaxRegimeVAT, "123456789-7000", true, decimal.RequireFromString("0.15"), "")
	if err != nil {
		t.Fatalf("NewTenantTaxProfile() failed: %v", err)
	}
	tenant.TaxProfile = *profile

	if err := m.Tenants().Create(context.Background(), tenant); err != nil {
		t.Fatalf("Failed to create tenant: %v", err)
	}
	return tenant
}

func createTestClient(t *testing.T, m *SQLiteRepositoryManager, tenantID, name string) *models.Client {
	t.Helper()

	client := models.NewClient(tenantID, name)
	client.Profile = models.ClientProfile{
		RegistrationType: models.ClientRegistrationVAT,
		TIN:              stringPtrOf("987654321"),
		VATNumber:        stringPtrOf("987654321-7000"),
	}

	if err := m.Clients().Create(context.Background(), client); err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func buildTestInvoice(t *testing.T, tenant *models.Tenant, client *models.Client, number string) *models.Invoice {
	t.Helper()

	input := models.TaxCalculationInput{
		Tenant: tenant.TaxProfile,
		Client: client.Profile,
		LineItems: []models.LineItemInput{
			{
				Description: "Cinnamon sticks 1kg",
				Quantity:    decimal.NewFromInt(10),
				UnitPrice:   decimal.NewFromInt(10000),
				Discount:    decimal.Zero,
				Taxable:     true,
				TaxCategory: models.TaxCategoryStandard,
			},
			{
				Description: "Export freight",
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   decimal.NewFromInt(5000),
				Discount:    decimal.Zero,
				Taxable:     true,
				TaxCategory: models.TaxCategoryZeroRated,
			},
		},
		DateOfSupply: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
	}

	invoice := models.NewInvoice(tenant.ID, client.ID, models.InvoiceTypeTaxInvoice)
	invoice.InvoiceNumber = number
	invoice.ApplyCalculation(models.CalculateInvoiceTaxes(input))
	if err := invoice.SetTenantProfileSnapshot(tenant.TaxProfile); err != nil {
		t.Fatalf("SetTenantProfileSnapshot() failed: %v", err)
	}
	if err := invoice.SetClientProfileSnapshot(client.Profile); err != nil {
		t.Fatalf("SetClientProfileSnapshot() failed: %v", err)
	}
	return invoice
}
