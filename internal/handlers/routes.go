package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"lanka-invoice-api/internal/middleware"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	Handlers    *Handlers
	AuthService *middleware.AuthService
	Logger      *logrus.Logger

	RequestsPerSecond float64
	Burst             int
	AllowedOrigins    []string
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	h := config.Handlers

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "lanka-invoice-api",
			"version": "1.0.0",
		})
	})

	// Public tracking endpoints embedded in delivered invoices
	t := router.Group("/t")
	{
		t.GET("/o/:token", h.Tracking.TrackOpen)
		t.GET("/c/:token", h.Tracking.TrackClick)
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Authentication(config.AuthService))
	{
		writers := middleware.Authorization(middleware.RoleAdmin, middleware.RoleAccountant)

		tax := v1.Group("/tax")
		{
			tax.POST("/calculate", h.Tax.CalculateTaxes)
			tax.POST("/validate", h.Tax.ValidateInvoice)
			tax.GET("/info", h.Tax.GetTaxInfo)
		}

		tenants := v1.Group("/tenants")
		{
			tenants.POST("", middleware.Authorization(middleware.RoleAdmin), h.Tenants.CreateTenant)
			tenants.GET("/:tenant_id", h.Tenants.GetTenant)
			tenants.PUT("/:tenant_id", middleware.Authorization(middleware.RoleAdmin), h.Tenants.UpdateTenant)
		}

		clients := v1.Group("/clients")
		{
			clients.POST("", writers, h.Clients.CreateClient)
			clients.GET("", h.Clients.ListClients)
			clients.GET("/:client_id", h.Clients.GetClient)
			clients.PUT("/:client_id", writers, h.Clients.UpdateClient)
		}

		invoices := v1.Group("/invoices")
		{
			invoices.POST("", writers, h.Invoices.CreateInvoice)
			invoices.GET("", h.Invoices.ListInvoices)
			invoices.GET("/:invoice_id", h.Invoices.GetInvoice)
			invoices.POST("/:invoice_id/send", writers, h.Invoices.SendInvoice)
			invoices.POST("/:invoice_id/payments", writers, h.Invoices.RecordPayment)
			invoices.GET("/:invoice_id/payments", h.Invoices.GetPayments)
			invoices.GET("/:invoice_id/document", h.Invoices.GetInvoiceDocument)
			invoices.POST("/:invoice_id/void", writers, h.Invoices.VoidInvoice)
			invoices.POST("/:invoice_id/links", writers, h.Invoices.CreateLinks)
			invoices.GET("/:invoice_id/engagement", h.Invoices.GetEngagement)
		}
	}
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, config *RouterConfig) {
	logger := config.Logger

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(config.AllowedOrigins...))
	router.Use(middleware.SecurityHeaders())

	// Request size limit (1MB)
	router.Use(middleware.RequestSizeLimit(1 << 20))
	router.Use(middleware.ContentTypeValidation("application/json"))
	router.Use(middleware.RequestValidation())

	if config.RequestsPerSecond > 0 {
		router.Use(middleware.RateLimiter(config.RequestsPerSecond, config.Burst))
	}

	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.PerformanceMonitor(logger, time.Second))
	router.Use(middleware.AuditLogger(logger))
	router.Use(middleware.ErrorHandler(logger))
}

// SetupDevelopmentRoutes adds development-only routes
func SetupDevelopmentRoutes(router *gin.Engine, config *RouterConfig) {
	dev := router.Group("/dev")
	{
		// Issue a token for a tenant, e.g. POST /dev/token?tenant_id=acme
		dev.POST("/token", func(c *gin.Context) {
			tenantID := c.DefaultQuery("tenant_id", "dev-tenant")
			token, err := config.AuthService.GenerateToken(
				tenantID,
				"dev-user",
				"dev@example.lk",
				[]string{string(middleware.RoleAdmin)},
			)
			if err != nil {
				c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token", Message: err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"token": token, "tenant_id": tenantID})
		})
	}
}
