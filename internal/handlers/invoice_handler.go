package handlers

import (
	"net/http"

	"lanka-invoice-api/internal/models"
	"lanka-invoice-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// InvoiceHandler handles the invoice lifecycle
type InvoiceHandler struct {
	invoiceService  services.InvoiceService
	trackingService services.TrackingService
	logger          *logrus.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService services.InvoiceService, trackingService services.TrackingService, logger *logrus.Logger) *InvoiceHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &InvoiceHandler{
		invoiceService:  invoiceService,
		trackingService: trackingService,
		logger:          logger,
	}
}

// InvoiceResponse is an invoice with its display values and, after create
// or send, the tax invoice validation result
type InvoiceResponse struct {
	*models.Invoice
	BalanceDue     string                   `json:"balance_due"`
	FormattedTotal string                   `json:"formatted_total"`
	TotalInWords   string                   `json:"total_in_words"`
	Validation     *models.ValidationResult `json:"validation,omitempty"`
}

func newInvoiceResponse(invoice *models.Invoice, validation *models.ValidationResult) *InvoiceResponse {
	return &InvoiceResponse{
		Invoice:        invoice,
		BalanceDue:     invoice.BalanceDue().StringFixed(2),
		FormattedTotal: invoice.GetFormattedTotal(),
		TotalInWords:   invoice.GetTotalInWords(),
		Validation:     validation,
	}
}

// PaymentResponse is a recorded payment with the updated invoice
type PaymentResponse struct {
	Payment *models.Payment  `json:"payment"`
	Invoice *InvoiceResponse `json:"invoice"`
}

// TrackingLinksRequest asks for delivery links of an invoice
type TrackingLinksRequest struct {
	Channel string `json:"channel" binding:"required"`
	Target  string `json:"target,omitempty"`
}

// @Summary Create an invoice
// @Description Draft an invoice for a client. The draft is stored even when tax validation reports errors; those block sending.
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invoice body services.CreateInvoiceRequest true "Invoice data"
// @Success 201 {object} InvoiceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	var req services.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	invoice, validation, err := h.invoiceService.CreateInvoice(c.Request.Context(), tenantID, &req)
	if err != nil {
		writeError(c, h.logger, err, "Failed to create invoice")
		return
	}

	c.JSON(http.StatusCreated, newInvoiceResponse(invoice, validation))
}

// @Summary List invoices
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param client_id query string false "Filter by client"
// @Param status query string false "Filter by status" Enums(draft, sent, partially_paid, paid, void)
// @Param start_date query string false "Issued on or after (YYYY-MM-DD)"
// @Param end_date query string false "Issued on or before (YYYY-MM-DD)"
// @Param limit query int false "Limit number of results" default(50)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} ListResponse
// @Failure 400 {object} ErrorResponse
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	var filters models.InvoiceFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid query parameters",
			Message: err.Error(),
		})
		return
	}

	invoices, pagination, err := h.invoiceService.ListInvoices(c.Request.Context(), tenantID, filters)
	if err != nil {
		writeError(c, h.logger, err, "Failed to list invoices")
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: invoices, Pagination: pagination})
}

// @Summary Get an invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param invoice_id path string true "Invoice ID"
// @Success 200 {object} InvoiceResponse
// @Failure 404 {object} ErrorResponse
// @Router /invoices/{invoice_id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), tenantID, c.Param("invoice_id"))
	if err != nil {
		writeError(c, h.logger, err, "Failed to get invoice")
		return
	}

	c.JSON(http.StatusOK, newInvoiceResponse(invoice, nil))
}

// @Summary Send an invoice
// @Description Re-validate a draft against the current tax profiles and mark it sent
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param invoice_id path string true "Invoice ID"
// @Success 200 {object} InvoiceResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /invoices/{invoice_id}/send [post]
func (h *InvoiceHandler) SendInvoice(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	invoice, validation, err := h.invoiceService.SendInvoice(c.Request.Context(), tenantID, c.Param("invoice_id"))
	if err != nil {
		writeError(c, h.logger, err, "Failed to send invoice")
		return
	}

	c.JSON(http.StatusOK, newInvoiceResponse(invoice, validation))
}

// @Summary Record a payment
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invoice_id path string true "Invoice ID"
// @Param payment body services.RecordPaymentRequest true "Payment data"
// @Success 201 {object} PaymentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /invoices/{invoice_id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	var req services.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	invoice, payment, err := h.invoiceService.RecordPayment(c.Request.Context(), tenantID, c.Param("invoice_id"), &req)
	if err != nil {
		writeError(c, h.logger, err, "Failed to record payment")
		return
	}

	c.JSON(http.StatusCreated, PaymentResponse{
		Payment: payment,
		Invoice: newInvoiceResponse(invoice, nil),
	})
}

// @Summary List payments
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param invoice_id path string true "Invoice ID"
// @Success 200 {array} models.Payment
// @Failure 404 {object} ErrorResponse
// @Router /invoices/{invoice_id}/payments [get]
func (h *InvoiceHandler) GetPayments(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	payments, err := h.invoiceService.GetPayments(c.Request.Context(), tenantID, c.Param("invoice_id"))
	if err != nil {
		writeError(c, h.logger, err, "Failed to list payments")
		return
	}

	c.JSON(http.StatusOK, payments)
}

// @Summary Get the issued document
// @Description The invoice as archived when it was sent, with supplier and recipient details
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param invoice_id path string true "Invoice ID"
// @Success 200 {object} services.InvoiceDocument
// @Failure 404 {object} ErrorResponse
// @Router /invoices/{invoice_id}/document [get]
func (h *InvoiceHandler) GetInvoiceDocument(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	document, err := h.invoiceService.GetInvoiceDocument(c.Request.Context(), tenantID, c.Param("invoice_id"))
	if err != nil {
		writeError(c, h.logger, err, "Failed to get invoice document")
		return
	}

	c.Data(http.StatusOK, "application/json", document)
}

// @Summary Void an invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param invoice_id path string true "Invoice ID"
// @Success 200 {object} InvoiceResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /invoices/{invoice_id}/void [post]
func (h *InvoiceHandler) VoidInvoice(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.VoidInvoice(c.Request.Context(), tenantID, c.Param("invoice_id"))
	if err != nil {
		writeError(c, h.logger, err, "Failed to void invoice")
		return
	}

	c.JSON(http.StatusOK, newInvoiceResponse(invoice, nil))
}

// @Summary Create delivery links
// @Description Open-pixel and click-through URLs to embed in an email or WhatsApp message
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invoice_id path string true "Invoice ID"
// @Param request body TrackingLinksRequest true "Channel and optional click target"
// @Success 200 {object} services.TrackingLinks
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /invoices/{invoice_id}/links [post]
func (h *InvoiceHandler) CreateLinks(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	var req TrackingLinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	links, err := h.trackingService.BuildLinks(c.Request.Context(), tenantID, c.Param("invoice_id"),
		models.DeliveryChannel(req.Channel), req.Target)
	if err != nil {
		writeError(c, h.logger, err, "Failed to create links")
		return
	}

	c.JSON(http.StatusOK, links)
}

// @Summary Get engagement
// @Description Opens and clicks recorded for an invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param invoice_id path string true "Invoice ID"
// @Success 200 {object} models.EngagementSummary
// @Failure 404 {object} ErrorResponse
// @Router /invoices/{invoice_id}/engagement [get]
func (h *InvoiceHandler) GetEngagement(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	summary, err := h.trackingService.GetEngagement(c.Request.Context(), tenantID, c.Param("invoice_id"))
	if err != nil {
		writeError(c, h.logger, err, "Failed to get engagement")
		return
	}

	c.JSON(http.StatusOK, summary)
}
