package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lanka-invoice-api/internal/adapters/storage"
	"lanka-invoice-api/internal/models"

	"github.com/sirupsen/logrus"
)

// InvoiceDocument is the issued form of an invoice as it stood when sent
type InvoiceDocument struct {
	Invoice        *models.Invoice `json:"invoice"`
	Supplier       *models.Tenant  `json:"supplier"`
	Recipient      *models.Client  `json:"recipient"`
	FormattedTotal string          `json:"formatted_total"`
	TotalInWords   string          `json:"total_in_words"`
	ArchivedAt     time.Time       `json:"archived_at"`
}

// DocumentArchive keeps the issued document of every sent invoice
type DocumentArchive struct {
	store  storage.DocumentStore
	logger *logrus.Logger
}

// NewDocumentArchive creates an archive. A nil store disables archiving.
func NewDocumentArchive(store storage.DocumentStore, logger *logrus.Logger) *DocumentArchive {
	if logger == nil {
		logger = logrus.New()
	}
	return &DocumentArchive{store: store, logger: logger}
}

// Enabled reports whether documents are stored
func (a *DocumentArchive) Enabled() bool {
	return a != nil && a.store != nil
}

func documentKey(tenantID, invoiceNumber string) string {
	return fmt.Sprintf("tenants/%s/invoices/%s.json", tenantID, invoiceNumber)
}

// Archive stores the issued document. An existing document for the same
// number is replaced, which covers a send whose transaction did not commit.
func (a *DocumentArchive) Archive(ctx context.Context, invoice *models.Invoice, tenant *models.Tenant, client *models.Client) error {
	if !a.Enabled() {
		return nil
	}

	data, err := json.Marshal(InvoiceDocument{
		Invoice:        invoice,
		Supplier:       tenant,
		Recipient:      client,
		FormattedTotal: invoice.GetFormattedTotal(),
		TotalInWords:   invoice.GetTotalInWords(),
		ArchivedAt:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode invoice document: %w", err)
	}

	key := documentKey(invoice.TenantID, invoice.InvoiceNumber)
	err = a.store.Put(ctx, key, data, &storage.PutOptions{
		ContentType: "application/json",
		Metadata: map[string]string{
			"invoice_id": invoice.ID,
			"client_id":  invoice.ClientID,
		},
		Overwrite: true,
	})
	if err != nil {
		return fmt.Errorf("failed to archive invoice %s: %w", invoice.InvoiceNumber, err)
	}

	a.logger.WithFields(logrus.Fields{
		"tenant_id": invoice.TenantID,
		"key":       key,
		"size":      len(data),
	}).Debug("Invoice document archived")

	return nil
}

// Fetch returns the stored document of an issued invoice
func (a *DocumentArchive) Fetch(ctx context.Context, invoice *models.Invoice) ([]byte, error) {
	if !a.Enabled() {
		return nil, fmt.Errorf("%w: archiving is disabled", ErrDocumentNotFound)
	}

	data, err := a.store.Get(ctx, documentKey(invoice.TenantID, invoice.InvoiceNumber))
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, fmt.Errorf("%w: invoice %s", ErrDocumentNotFound, invoice.InvoiceNumber)
		}
		return nil, fmt.Errorf("failed to read invoice document: %w", err)
	}
	return data, nil
}

// Close releases the underlying store
func (a *DocumentArchive) Close() error {
	if !a.Enabled() {
		return nil
	}
	return a.store.Close()
}
