package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"lanka-invoice-api/internal/models"
	"lanka-invoice-api/internal/repositories"
)

func TestInvoiceService_CreateInvoice(t *testing.T) {
	sc, repos := setupServices(t)
	ctx := context.Background()

	tenant := createVATTenant(t, sc)
	client := createVATClient(t, sc, tenant.ID)

	invoice, result, err := sc.InvoiceService.CreateInvoice(ctx, tenant.ID, &CreateInvoiceRequest{
		ClientID:     client.ID,
		InvoiceType:  "tax_invoice",
		IssueDate:    "2024-06-15",
		DateOfSupply: "2024-06-14",
		DueDate:      "2024-07-15",
		LineItems:    standardLines(),
		Notes:        "Payment within 30 days",
	})
	if err != nil {
		t.Fatalf("CreateInvoice() failed: %v", err)
	}

	if invoice.InvoiceNumber != "INV-000001" {
		t.Errorf("Expected invoice number INV-000001, got %s", invoice.InvoiceNumber)
	}
	if invoice.Status != models.InvoiceStatusDraft {
		t.Errorf("Expected status draft, got %s", invoice.Status)
	}
	if invoice.FiscalYear != "2024/2025" {
		t.Errorf("Expected fiscal year 2024/2025, got %s", invoice.FiscalYear)
	}
	assertDecimal(t, "subtotal", invoice.Subtotal, "105000")
	assertDecimal(t, "VAT", invoice.VATAmount, "15000")
	assertDecimal(t, "SSCL", invoice.SSCLAmount, "2625")
	assertDecimal(t, "total", invoice.Total, "122625")

	if !result.Valid || len(result.Warnings) != 0 {
		t.Errorf("Expected clean validation, got %+v", result)
	}

	stored, err := repos.Invoices().GetByID(ctx, tenant.ID, invoice.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if len(stored.LineItems) != 2 {
		t.Errorf("Expected 2 stored line items, got %d", len(stored.LineItems))
	}
	if stored.DueDate == nil || !stored.DueDate.Equal(time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected due date 2024-07-15, got %v", stored.DueDate)
	}
	if !stored.DateOfSupply.Equal(time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected date of supply 2024-06-14, got %v", stored.DateOfSupply)
	}

	snapshot, err := stored.GetTenantProfileSnapshot()
	if err != nil {
		t.Fatalf("GetTenantProfileSnapshot() failed: %v", err)
	}
	if snapshot.GetVATNumber() != "114512345-7000" {
		t.Errorf("Expected snapshot VAT number 114512345-7000, got %s", snapshot.GetVATNumber())
	}

	second := createDraftInvoice(t, sc, tenant.ID, client.ID)
	if second.InvoiceNumber != "INV-000002" {
		t.Errorf("Expected invoice number INV-000002, got %s", second.InvoiceNumber)
	}
}

func TestInvoiceService_CreateInvoice_TenantPrefix(t *testing.T) {
	sc, _ := setupServices(t)
	ctx := context.Background()

	tenant, err := sc.TenantService.CreateTenant(ctx, "", &CreateTenantRequest{
		Name:            "Lanka Tea Exports",
		BusinessAddress: "45 Temple Road, Kandy",
		ContactEmail:    "billing@lankatea.lk",
		InvoicePrefix:   "LTE",
	})
	if err != nil {
		t.Fatalf("CreateTenant() failed: %v", err)
	}
	client := createVATClient(t, sc, tenant.ID)

	invoice, result, err := sc.InvoiceService.CreateInvoice(ctx, tenant.ID, &CreateInvoiceRequest{
		ClientID:    client.ID,
		InvoiceType: "invoice",
		LineItems:   standardLines(),
	})
	if err != nil {
		t.Fatalf("CreateInvoice() failed: %v", err)
	}

	if invoice.InvoiceNumber != "LTE-000001" {
		t.Errorf("Expected invoice number LTE-000001, got %s", invoice.InvoiceNumber)
	}
	// unregistered tenants charge no VAT or SSCL
	assertDecimal(t, "total tax", invoice.TotalTax, "0")
	assertDecimal(t, "total", invoice.Total, "105000")
	if !result.Valid {
		t.Errorf("Expected valid result, got %v", result.Errors)
	}
}

func TestInvoiceService_CreateInvoice_Errors(t *testing.T) {
	sc, _ := setupServices(t)
	ctx := context.Background()

	tenant := createVATTenant(t, sc)
	client := createVATClient(t, sc, tenant.ID)

	other, err := sc.TenantService.CreateTenant(ctx, "", &CreateTenantRequest{
		Name:            "Other Co",
		BusinessAddress: "1 Main Street, Galle",
		ContactEmail:    "other@example.lk",
	})
	if err != nil {
		t.Fatalf("CreateTenant() failed: %v", err)
	}

	tests := []struct {
		name     string
		tenantID string
		req      *CreateInvoiceRequest
		check    func(err error) bool
	}{
		{
			name:     "nil request",
			tenantID: tenant.ID,
			req:      nil,
			check:    func(err error) bool { return errors.Is(err, ErrInvalidRequest) },
		},
		{
			name:     "no line items",
			tenantID: tenant.ID,
			req:      &CreateInvoiceRequest{ClientID: client.ID, InvoiceType: "tax_invoice"},
			check:    func(err error) bool { return errors.Is(err, ErrInvalidRequest) },
		},
		{
			name:     "unknown invoice type",
			tenantID: tenant.ID,
			req:      &CreateInvoiceRequest{ClientID: client.ID, InvoiceType: "receipt", LineItems: standardLines()},
			check:    func(err error) bool { return errors.Is(err, ErrInvalidRequest) },
		},
		{
			name:     "due date before issue date",
			tenantID: tenant.ID,
			req: &CreateInvoiceRequest{
				ClientID: client.ID, InvoiceType: "tax_invoice", LineItems: standardLines(),
				IssueDate: "2024-06-15", DueDate: "2024-06-01",
			},
			check: func(err error) bool { return errors.Is(err, ErrInvalidRequest) },
		},
		{
			name:     "unknown client",
			tenantID: tenant.ID,
			req:      &CreateInvoiceRequest{ClientID: "missing", InvoiceType: "tax_invoice", LineItems: standardLines()},
			check:    repositories.IsNotFound,
		},
		{
			name:     "client of another tenant",
			tenantID: other.ID,
			req:      &CreateInvoiceRequest{ClientID: client.ID, InvoiceType: "tax_invoice", LineItems: standardLines()},
			check:    repositories.IsNotFound,
		},
		{
			name:     "unknown tenant",
			tenantID: "no-such-tenant",
			req:      &CreateInvoiceRequest{ClientID: client.ID, InvoiceType: "tax_invoice", LineItems: standardLines()},
			check:    repositories.IsNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := sc.InvoiceService.CreateInvoice(ctx, tt.tenantID, tt.req)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !tt.check(err) {
				t.Errorf("Unexpected error type: %v", err)
			}
		})
	}
}

func TestInvoiceService_CreateInvoice_UnknownClientAllocatesNoNumber(t *testing.T) {
	sc, repos := setupServices(t)
	ctx := context.Background()

	tenant := createVATTenant(t, sc)

	_, _, err := sc.InvoiceService.CreateInvoice(ctx, tenant.ID, &CreateInvoiceRequest{
		ClientID: "missing", InvoiceType: "tax_invoice", LineItems: standardLines(),
	})
	if err == nil {
		t.Fatal("Expected error for unknown client")
	}

	current, err := repos.Sequences().Current(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("Current() failed: %v", err)
	}
	if current != 0 {
		t.Errorf("Expected sequence 0, got %d", current)
	}
}

func TestInvoiceService_SendInvoice(t *testing.T) {
	sc, _ := setupServices(t)
	ctx := context.Background()

	tenant := createVATTenant(t, sc)
	client := createVATClient(t, sc, tenant.ID)
	draft := createDraftInvoice(t, sc, tenant.ID, client.ID)

	sent, result, err := sc.InvoiceService.SendInvoice(ctx, tenant.ID, draft.ID)
	if err != nil {
		t.Fatalf("SendInvoice() failed: %v", err)
	}
	if sent.Status != models.InvoiceStatusSent {
		t.Errorf("Expected status sent, got %s", sent.Status)
	}
	if sent.SentAt == nil {
		t.Error("Expected SentAt to be set")
	}
	if !result.Valid {
		t.Errorf("Expected valid result, got %v", result.Errors)
	}

	_, _, err = sc.InvoiceService.SendInvoice(ctx, tenant.ID, draft.ID)
	if !errors.Is(err, ErrInvoiceNotDraft) {
		t.Errorf("Expected ErrInvoiceNotDraft on second send, got %v", err)
	}
}

func TestInvoiceService_SendInvoice_TaxProfileChanged(t *testing.T) {
	sc, _ := setupServices(t)
	ctx := context.Background()

	tenant := createVATTenant(t, sc)
	client := createVATClient(t, sc, tenant.ID)
	draft := createDraftInvoice(t, sc, tenant.ID, client.ID)

	_, err := sc.TenantService.UpdateTenant(ctx, tenant.ID, &UpdateTenantRequest{
		TaxSettings: &TaxSettingsRequest{Regime: "none"},
	})
	if err != nil {
		t.Fatalf("UpdateTenant() failed: %v", err)
	}

	_, _, err = sc.InvoiceService.SendInvoice(ctx, tenant.ID, draft.ID)
	if !errors.Is(err, ErrTaxProfileChanged) {
		t.Errorf("Expected ErrTaxProfileChanged, got %v", err)
	}

	invoice, err := sc.InvoiceService.GetInvoice(ctx, tenant.ID, draft.ID)
	if err != nil {
		t.Fatalf("GetInvoice() failed: %v", err)
	}
	if invoice.Status != models.InvoiceStatusDraft {
		t.Errorf("Expected invoice to stay draft, got %s", invoice.Status)
	}
}

func TestInvoiceService_SendInvoice_TaxSettingsChanged(t *testing.T) {
	tests := []struct {
		name     string
		settings *TaxSettingsRequest
		wantErr  bool
	}{
		{
			name:     "sscl and rate changed",
			settings: &TaxSettingsRequest{Regime: "vat", VATNumber: "114512345-7000", SSCLApplicable: false, DefaultVATRate: dec("0.18")},
			wantErr:  true,
		},
		{
			name:     "sscl dropped",
			settings: &TaxSettingsRequest{Regime: "vat", VATNumber: "114512345-7000", SSCLApplicable: false, DefaultVATRate: dec("0.15")},
			wantErr:  true,
		},
		{
			name:     "rate changed",
			settings: &TaxSettingsRequest{Regime: "vat", VATNumber: "114512345-7000", SSCLApplicable: true, DefaultVATRate: dec("0.18")},
			wantErr:  true,
		},
		{
			name:     "zero rate falls back to the same jurisdiction rate",
			settings: &TaxSettingsRequest{Regime: "vat", VATNumber: "114512345-7000", SSCLApplicable: true},
			wantErr:  false,
		},
		{
			name:     "fiscal year start only",
			settings: &TaxSettingsRequest{Regime: "vat", VATNumber: "114512345-7000", SSCLApplicable: true, DefaultVATRate: dec("0.15"), FiscalYearStart: "01-01"},
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, _ := setupServices(t)
			ctx := context.Background()

			tenant := createVATTenant(t, sc)
			client := createVATClient(t, sc, tenant.ID)
			draft := createDraftInvoice(t, sc, tenant.ID, client.ID)

			if _, err := sc.TenantService.UpdateTenant(ctx, tenant.ID, &UpdateTenantRequest{TaxSettings: tt.settings}); err != nil {
				t.Fatalf("UpdateTenant() failed: %v", err)
			}

			sent, _, err := sc.InvoiceService.SendInvoice(ctx, tenant.ID, draft.ID)
			if tt.wantErr {
				if !errors.Is(err, ErrTaxProfileChanged) {
					t.Fatalf("Expected ErrTaxProfileChanged, got %v", err)
				}
				invoice, err := sc.InvoiceService.GetInvoice(ctx, tenant.ID, draft.ID)
				if err != nil {
					t.Fatalf("GetInvoice() failed: %v", err)
				}
				if invoice.Status != models.InvoiceStatusDraft {
					t.Errorf("Expected invoice to stay draft, got %s", invoice.Status)
				}
				return
			}

			if err != nil {
				t.Fatalf("SendInvoice() failed: %v", err)
			}
			assertDecimal(t, "total", sent.Total, "122625")

			snapshot, err := sent.GetTenantProfileSnapshot()
			if err != nil {
				t.Fatalf("GetTenantProfileSnapshot() failed: %v", err)
			}
			if !snapshot.ChargesSSCL() {
				t.Error("Expected sent snapshot to charge SSCL like the totals")
			}
		})
	}
}

func TestInvoiceService_RecordPayment(t *testing.T) {
	sc, _ := setupServices(t)
	ctx := context.Background()

	tenant := createVATTenant(t, sc)
	client := createVATClient(t, sc, tenant.ID)
	draft := createDraftInvoice(t, sc, tenant.ID, client.ID)

	_, _, err := sc.InvoiceService.RecordPayment(ctx, tenant.ID, draft.ID, &RecordPaymentRequest{
		Amount: dec("1000"), Method: "cash",
	})
	if !errors.Is(err, models.ErrInvalidInvoiceState) {
		t.Errorf("Expected ErrInvalidInvoiceState for draft, got %v", err)
	}

	if _, _, err := sc.InvoiceService.SendInvoice(ctx, tenant.ID, draft.ID); err != nil {
		t.Fatalf("SendInvoice() failed: %v", err)
	}

	invoice, payment, err := sc.InvoiceService.RecordPayment(ctx, tenant.ID, draft.ID, &RecordPaymentRequest{
		Amount:    dec("50000"),
		Method:    "bank_transfer",
		Reference: "BOC-778812",
		PaidAt:    "2024-06-20",
	})
	if err != nil {
		t.Fatalf("RecordPayment() failed: %v", err)
	}
	if invoice.Status != models.InvoiceStatusPartiallyPaid {
		t.Errorf("Expected status partially_paid, got %s", invoice.Status)
	}
	assertDecimal(t, "balance due", invoice.BalanceDue(), "72625")
	if payment.Reference == nil || *payment.Reference != "BOC-778812" {
		t.Errorf("Expected reference BOC-778812, got %v", payment.Reference)
	}

	_, _, err = sc.InvoiceService.RecordPayment(ctx, tenant.ID, draft.ID, &RecordPaymentRequest{
		Amount: dec("80000"), Method: "cash",
	})
	if !errors.Is(err, models.ErrPaymentExceedsBalance) {
		t.Errorf("Expected ErrPaymentExceedsBalance, got %v", err)
	}

	invoice, _, err = sc.InvoiceService.RecordPayment(ctx, tenant.ID, draft.ID, &RecordPaymentRequest{
		Amount: dec("72625"), Method: "cheque",
	})
	if err != nil {
		t.Fatalf("RecordPayment() failed: %v", err)
	}
	if invoice.Status != models.InvoiceStatusPaid {
		t.Errorf("Expected status paid, got %s", invoice.Status)
	}

	payments, err := sc.InvoiceService.GetPayments(ctx, tenant.ID, draft.ID)
	if err != nil {
		t.Fatalf("GetPayments() failed: %v", err)
	}
	if len(payments) != 2 {
		t.Errorf("Expected 2 payments, got %d", len(payments))
	}

	stored, err := sc.InvoiceService.GetInvoice(ctx, tenant.ID, draft.ID)
	if err != nil {
		t.Fatalf("GetInvoice() failed: %v", err)
	}
	assertDecimal(t, "amount paid", stored.AmountPaid, "122625")
}

func TestInvoiceService_RecordPayment_Validation(t *testing.T) {
	sc, _ := setupServices(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *RecordPaymentRequest
	}{
		{"nil", nil},
		{"zero amount", &RecordPaymentRequest{Amount: dec("0"), Method: "cash"}},
		{"unknown method", &RecordPaymentRequest{Amount: dec("10"), Method: "crypto"}},
		{"fractional cents", &RecordPaymentRequest{Amount: dec("10.005"), Method: "cash"}},
		{"bad date", &RecordPaymentRequest{Amount: dec("10"), Method: "cash", PaidAt: "yesterday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := sc.InvoiceService.RecordPayment(ctx, "tenant", "invoice", tt.req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestInvoiceService_VoidInvoice(t *testing.T) {
	sc, _ := setupServices(t)
	ctx := context.Background()

	tenant := createVATTenant(t, sc)
	client := createVATClient(t, sc, tenant.ID)

	draft := createDraftInvoice(t, sc, tenant.ID, client.ID)
	voided, err := sc.InvoiceService.VoidInvoice(ctx, tenant.ID, draft.ID)
	if err != nil {
		t.Fatalf("VoidInvoice() failed: %v", err)
	}
	if voided.Status != models.InvoiceStatusVoid {
		t.Errorf("Expected status void, got %s", voided.Status)
	}

	if _, err := sc.InvoiceService.VoidInvoice(ctx, tenant.ID, draft.ID); !errors.Is(err, models.ErrInvalidInvoiceState) {
		t.Errorf("Expected ErrInvalidInvoiceState voiding twice, got %v", err)
	}

	paid := createDraftInvoice(t, sc, tenant.ID, client.ID)
	if _, _, err := sc.InvoiceService.SendInvoice(ctx, tenant.ID, paid.ID); err != nil {
		t.Fatalf("SendInvoice() failed: %v", err)
	}
	if _, _, err := sc.InvoiceService.RecordPayment(ctx, tenant.ID, paid.ID, &RecordPaymentRequest{Amount: dec("100"), Method: "card"}); err != nil {
		t.Fatalf("RecordPayment() failed: %v", err)
	}
	if _, err := sc.InvoiceService.VoidInvoice(ctx, tenant.ID, paid.ID); !errors.Is(err, models.ErrInvalidInvoiceState) {
		t.Errorf("Expected ErrInvalidInvoiceState voiding a paid invoice, got %v", err)
	}
}

func TestInvoiceService_ListInvoices(t *testing.T) {
	sc, _ := setupServices(t)
	ctx := context.Background()

	tenant := createVATTenant(t, sc)
	client := createVATClient(t, sc, tenant.ID)

	first := createDraftInvoice(t, sc, tenant.ID, client.ID)
	createDraftInvoice(t, sc, tenant.ID, client.ID)
	createDraftInvoice(t, sc, tenant.ID, client.ID)

	if _, _, err := sc.InvoiceService.SendInvoice(ctx, tenant.ID, first.ID); err != nil {
		t.Fatalf("SendInvoice() failed: %v", err)
	}

	invoices, page, err := sc.InvoiceService.ListInvoices(ctx, tenant.ID, models.InvoiceFilters{Limit: 2})
	if err != nil {
		t.Fatalf("ListInvoices() failed: %v", err)
	}
	if len(invoices) != 2 {
		t.Errorf("Expected 2 invoices, got %d", len(invoices))
	}
	if page.Total != 3 || !page.HasNext || page.HasPrevious {
		t.Errorf("Unexpected pagination: %+v", page)
	}

	sent, page, err := sc.InvoiceService.ListInvoices(ctx, tenant.ID, models.InvoiceFilters{Status: models.InvoiceStatusSent})
	if err != nil {
		t.Fatalf("ListInvoices() failed: %v", err)
	}
	if len(sent) != 1 || sent[0].ID != first.ID {
		t.Errorf("Expected only the sent invoice, got %d invoices", len(sent))
	}
	if page.Limit != models.DefaultListLimit {
		t.Errorf("Expected default limit %d, got %d", models.DefaultListLimit, page.Limit)
	}

	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, _, err = sc.InvoiceService.ListInvoices(ctx, tenant.ID, models.InvoiceFilters{StartDate: &start, EndDate: &end})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest for inverted range, got %v", err)
	}
}
