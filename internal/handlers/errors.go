package handlers

import (
	"errors"
	"net/http"

	"lanka-invoice-api/internal/middleware"
	"lanka-invoice-api/internal/models"
	"lanka-invoice-api/internal/repositories"
	"lanka-invoice-api/internal/services"
	"lanka-invoice-api/internal/tracking"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error      string                   `json:"error"`
	Message    string                   `json:"message"`
	Fields     []services.FieldError    `json:"fields,omitempty"`
	Validation *models.ValidationResult `json:"validation,omitempty"`
}

// errorResponse maps a service error to a status code and body. title is
// used for unexpected failures, e.g. "Failed to create invoice".
func errorResponse(err error, title string) (int, ErrorResponse) {
	var requestErr *services.RequestValidationError
	var invoiceErr *services.InvoiceValidationError

	switch {
	case errors.As(err, &requestErr):
		return http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
			Fields:  requestErr.Fields,
		}

	case errors.As(err, &invoiceErr):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error:      "Invoice failed tax validation",
			Message:    err.Error(),
			Validation: invoiceErr.Result,
		}

	case errors.Is(err, services.ErrInvalidRequest),
		errors.Is(err, services.ErrInvalidTrackingURL),
		errors.Is(err, repositories.ErrValidation),
		errors.Is(err, repositories.ErrForeignKey):
		return http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: err.Error()}

	case errors.Is(err, tracking.ErrMalformedToken),
		errors.Is(err, tracking.ErrInvalidSignature),
		errors.Is(err, services.ErrDocumentNotFound),
		errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "Not found", Message: err.Error()}

	case errors.Is(err, repositories.ErrDuplicateEntry):
		return http.StatusConflict, ErrorResponse{Error: "Already exists", Message: err.Error()}

	case errors.Is(err, services.ErrInvoiceNotDraft),
		errors.Is(err, services.ErrTaxProfileChanged),
		errors.Is(err, models.ErrInvalidInvoiceState),
		errors.Is(err, models.ErrPaymentExceedsBalance),
		errors.Is(err, repositories.ErrConstraint):
		return http.StatusConflict, ErrorResponse{Error: "Conflict", Message: err.Error()}

	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:   title,
			Message: "An internal error occurred",
		}
	}
}

// writeError writes the mapped error response and logs server errors
func writeError(c *gin.Context, logger *logrus.Logger, err error, title string) {
	status, body := errorResponse(err, title)
	if status >= http.StatusInternalServerError {
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.RequestIDKey),
			"path":       c.Request.URL.Path,
		}).WithError(err).Error(title)
	}
	c.JSON(status, body)
}

// badRequest writes a 400 for a body that could not be decoded
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request body",
		Message: err.Error(),
	})
}
