package handlers

import (
	"encoding/json"
	"net/http"

	"lanka-invoice-api/internal/middleware"
	"lanka-invoice-api/internal/services"
	"lanka-invoice-api/pkg/lambda"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handlers bundles the HTTP handlers of the API
type Handlers struct {
	Tax      *TaxHandler
	Tenants  *TenantHandler
	Clients  *ClientHandler
	Invoices *InvoiceHandler
	Tracking *TrackingHandler
}

// NewHandlers creates all handlers from a service container
func NewHandlers(container *services.ServiceContainer, logger *logrus.Logger) *Handlers {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handlers{
		Tax:      NewTaxHandler(container.TaxService, logger),
		Tenants:  NewTenantHandler(container.TenantService, logger),
		Clients:  NewClientHandler(container.ClientService, logger),
		Invoices: NewInvoiceHandler(container.InvoiceService, container.TrackingService, logger),
		Tracking: NewTrackingHandler(container.TrackingService, logger),
	}
}

// requireTenant returns the authenticated tenant. Routes using it sit behind
// the Authentication middleware, so an empty value is a wiring error.
func requireTenant(c *gin.Context) (string, bool) {
	id := middleware.GetTenantID(c)
	if id == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Unauthorized",
			Message: "Request is not scoped to a tenant",
		})
		return "", false
	}
	return id, true
}

// ListResponse wraps a page of results
type ListResponse struct {
	Data       interface{} `json:"data"`
	Pagination interface{} `json:"pagination"`
}

// Lambda helpers

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func lambdaJSON(status int, body interface{}) (*lambda.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return &lambda.Response{StatusCode: status, Headers: jsonHeaders, Body: data}, nil
}

func lambdaError(err error, title string) (*lambda.Response, error) {
	status, body := errorResponse(err, title)
	return lambdaJSON(status, body)
}

func lambdaBadRequest(err error) (*lambda.Response, error) {
	return lambdaJSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request body",
		Message: err.Error(),
	})
}
