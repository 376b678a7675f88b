package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"lanka-invoice-api/internal/models"
	"lanka-invoice-api/internal/services"
	"lanka-invoice-api/pkg/lambda"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TaxHandler serves the stateless tax endpoints
type TaxHandler struct {
	taxService services.TaxServiceInterface
	logger     *logrus.Logger
}

// NewTaxHandler creates a new tax handler
func NewTaxHandler(taxService services.TaxServiceInterface, logger *logrus.Logger) *TaxHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &TaxHandler{taxService: taxService, logger: logger}
}

// CalculationResponse is a calculation result with its display values
type CalculationResponse struct {
	*models.TaxCalculationResult
	FormattedTotal string `json:"formatted_total"`
	TotalInWords   string `json:"total_in_words"`
}

func newCalculationResponse(result *models.TaxCalculationResult) *CalculationResponse {
	return &CalculationResponse{
		TaxCalculationResult: result,
		FormattedTotal:       models.FormatLKR(result.Total),
		TotalInWords:         models.AmountInWords(result.Total),
	}
}

// @Summary Calculate invoice taxes
// @Description Calculate VAT, SVAT and SSCL for a set of line items without storing anything
// @Tags tax
// @Accept json
// @Produce json
// @Param request body services.CalculateInvoiceTaxesRequest true "Tax profiles and line items"
// @Success 200 {object} CalculationResponse
// @Failure 400 {object} ErrorResponse
// @Router /tax/calculate [post]
func (h *TaxHandler) CalculateTaxes(c *gin.Context) {
	var req services.CalculateInvoiceTaxesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.taxService.CalculateInvoiceTaxes(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.logger, err, "Failed to calculate taxes")
		return
	}

	c.JSON(http.StatusOK, newCalculationResponse(result))
}

// @Summary Validate a tax invoice
// @Description Calculate an invoice and check it against the tax invoice rules
// @Tags tax
// @Accept json
// @Produce json
// @Param request body services.ValidateTaxInvoiceRequest true "Invoice to validate"
// @Success 200 {object} models.ValidationResult
// @Failure 400 {object} ErrorResponse
// @Router /tax/validate [post]
func (h *TaxHandler) ValidateInvoice(c *gin.Context) {
	var req services.ValidateTaxInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.taxService.ValidateTaxInvoice(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.logger, err, "Failed to validate invoice")
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Get tax information
// @Description Rates and identifiers of the configured jurisdiction
// @Tags tax
// @Produce json
// @Success 200 {object} services.TaxInfo
// @Router /tax/info [get]
func (h *TaxHandler) GetTaxInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.taxService.GetTaxInfo(c.Request.Context()))
}

// Lambda handler methods

// HandleCalculate is the serverless form of CalculateTaxes
func (h *TaxHandler) HandleCalculate(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var body services.CalculateInvoiceTaxesRequest
	if err := json.Unmarshal(req.Body, &body); err != nil {
		return lambdaBadRequest(err)
	}

	result, err := h.taxService.CalculateInvoiceTaxes(ctx, &body)
	if err != nil {
		return lambdaError(err, "Failed to calculate taxes")
	}

	return lambdaJSON(http.StatusOK, newCalculationResponse(result))
}

// HandleValidate is the serverless form of ValidateInvoice
func (h *TaxHandler) HandleValidate(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var body services.ValidateTaxInvoiceRequest
	if err := json.Unmarshal(req.Body, &body); err != nil {
		return lambdaBadRequest(err)
	}

	result, err := h.taxService.ValidateTaxInvoice(ctx, &body)
	if err != nil {
		return lambdaError(err, "Failed to validate invoice")
	}

	return lambdaJSON(http.StatusOK, result)
}

// HandleInfo is the serverless form of GetTaxInfo
func (h *TaxHandler) HandleInfo(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return lambdaJSON(http.StatusOK, h.taxService.GetTaxInfo(ctx))
}
