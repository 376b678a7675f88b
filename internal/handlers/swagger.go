package handlers

// @title Lanka Invoice API
// @version 1.0
// @description Multi-tenant invoicing for Sri Lankan businesses with VAT, SVAT and SSCL calculation

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8081
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name tax
// @tag.description Stateless tax calculation and validation

// @tag.name tenants
// @tag.description Tenant business details and tax registration

// @tag.name clients
// @tag.description Invoice recipients

// @tag.name invoices
// @tag.description Invoice lifecycle, payments and delivery links

// @tag.name tracking
// @tag.description Public open and click tracking endpoints
