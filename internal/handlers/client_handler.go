package handlers

import (
	"net/http"

	"lanka-invoice-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ClientHandler handles client-related HTTP requests
type ClientHandler struct {
	clientService services.ClientService
	logger        *logrus.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService services.ClientService, logger *logrus.Logger) *ClientHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &ClientHandler{clientService: clientService, logger: logger}
}

// @Summary Create a client
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param client body services.CreateClientRequest true "Client data"
// @Success 201 {object} models.Client
// @Failure 400 {object} ErrorResponse
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	var req services.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), tenantID, &req)
	if err != nil {
		writeError(c, h.logger, err, "Failed to create client")
		return
	}

	c.JSON(http.StatusCreated, client)
}

// @Summary List clients
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param search query string false "Match on name or email"
// @Param limit query int false "Limit number of results" default(50)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} ListResponse
// @Failure 400 {object} ErrorResponse
// @Router /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	var filters services.ClientFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid query parameters",
			Message: err.Error(),
		})
		return
	}

	clients, pagination, err := h.clientService.ListClients(c.Request.Context(), tenantID, &filters)
	if err != nil {
		writeError(c, h.logger, err, "Failed to list clients")
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: clients, Pagination: pagination})
}

// @Summary Get a client
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param client_id path string true "Client ID"
// @Success 200 {object} models.Client
// @Failure 404 {object} ErrorResponse
// @Router /clients/{client_id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), tenantID, c.Param("client_id"))
	if err != nil {
		writeError(c, h.logger, err, "Failed to get client")
		return
	}

	c.JSON(http.StatusOK, client)
}

// @Summary Update a client
// @Description Partially update a client and its registration profile
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param client_id path string true "Client ID"
// @Param client body services.UpdateClientRequest true "Fields to change"
// @Success 200 {object} models.Client
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /clients/{client_id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	var req services.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), tenantID, c.Param("client_id"), &req)
	if err != nil {
		writeError(c, h.logger, err, "Failed to update client")
		return
	}

	c.JSON(http.StatusOK, client)
}
