package handlers

import (
	"net/http"

	"lanka-invoice-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TenantHandler handles the tenant's own business details and tax settings
type TenantHandler struct {
	tenantService services.TenantService
	logger        *logrus.Logger
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService services.TenantService, logger *logrus.Logger) *TenantHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &TenantHandler{tenantService: tenantService, logger: logger}
}

// @Summary Register the tenant
// @Description Create the business profile for the tenant in the bearer token
// @Tags tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenant body services.CreateTenantRequest true "Tenant data"
// @Success 201 {object} models.Tenant
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tenants [post]
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	var req services.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tenant, err := h.tenantService.CreateTenant(c.Request.Context(), tenantID, &req)
	if err != nil {
		writeError(c, h.logger, err, "Failed to create tenant")
		return
	}

	c.JSON(http.StatusCreated, tenant)
}

// @Summary Get the tenant
// @Tags tenants
// @Produce json
// @Security BearerAuth
// @Param tenant_id path string true "Tenant ID"
// @Success 200 {object} models.Tenant
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tenants/{tenant_id} [get]
func (h *TenantHandler) GetTenant(c *gin.Context) {
	id, ok := h.ownTenant(c)
	if !ok {
		return
	}

	tenant, err := h.tenantService.GetTenant(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err, "Failed to get tenant")
		return
	}

	c.JSON(http.StatusOK, tenant)
}

// @Summary Update the tenant
// @Description Partially update business details; tax_settings replaces the tax profile
// @Tags tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenant_id path string true "Tenant ID"
// @Param tenant body services.UpdateTenantRequest true "Fields to change"
// @Success 200 {object} models.Tenant
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tenants/{tenant_id} [put]
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	id, ok := h.ownTenant(c)
	if !ok {
		return
	}

	var req services.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tenant, err := h.tenantService.UpdateTenant(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, h.logger, err, "Failed to update tenant")
		return
	}

	c.JSON(http.StatusOK, tenant)
}

// ownTenant checks the path tenant is the authenticated one
func (h *TenantHandler) ownTenant(c *gin.Context) (string, bool) {
	current, ok := requireTenant(c)
	if !ok {
		return "", false
	}

	if c.Param("tenant_id") != current {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "Forbidden",
			Message: "Tokens can only access their own tenant",
		})
		return "", false
	}
	return current, true
}
