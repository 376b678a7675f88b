package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// UserRole represents user roles within a tenant
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleAccountant UserRole = "accountant"
	RoleViewer     UserRole = "viewer"
)

// Context keys set by Authentication
const (
	TenantIDKey = "tenant_id"
	UserIDKey   = "user_id"
	RolesKey    = "roles"
	ClaimsKey   = "claims"
)

// Claims represents JWT claims issued by the auth service
type Claims struct {
	TenantID string   `json:"tenant_id"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
	Issuer        string
}

// AuthService validates bearer tokens
type AuthService struct {
	config *AuthConfig
	logger *logrus.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(config *AuthConfig, logger *logrus.Logger) *AuthService {
	if logger == nil {
		logger = logrus.New()
	}
	if config.TokenDuration == 0 {
		config.TokenDuration = time.Hour
	}
	return &AuthService{config: config, logger: logger}
}

// GenerateToken signs a token for a tenant user. Production tokens come from
// the auth service; this is used by tests and the development token route.
func (a *AuthService) GenerateToken(tenantID, userID, email string, roles []string) (string, error) {
	now := time.Now()
	claims := &Claims{
		TenantID: tenantID,
		Email:    email,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    a.config.Issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(a.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims
func (a *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(a.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(a.config.JWTSecret), nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if strings.TrimSpace(claims.TenantID) == "" {
		return nil, fmt.Errorf("token has no tenant_id claim")
	}

	return claims, nil
}

// Authentication middleware that validates JWT tokens and scopes the request
// to the token's tenant
func Authentication(authService *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Unauthorized", "Authorization header is required")
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
			abortWithError(c, http.StatusUnauthorized, "Unauthorized", "Invalid authorization header format. Expected: Bearer <token>")
			return
		}

		claims, err := authService.ValidateToken(strings.TrimSpace(tokenParts[1]))
		if err != nil {
			authService.logger.WithFields(logrus.Fields{
				"error":      err.Error(),
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(RequestIDKey),
			}).Warn("Token validation failed")

			abortWithError(c, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token")
			return
		}

		c.Set(TenantIDKey, claims.TenantID)
		c.Set(UserIDKey, claims.Subject)
		c.Set(RolesKey, claims.Roles)
		c.Set(ClaimsKey, claims)

		authService.logger.WithFields(logrus.Fields{
			"tenant_id": claims.TenantID,
			"user_id":   claims.Subject,
			"path":      c.Request.URL.Path,
		}).Debug("Request authenticated")

		c.Next()
	}
}

// Authorization middleware that requires any one of the given roles
func Authorization(requiredRoles ...UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(requiredRoles) == 0 {
			c.Next()
			return
		}

		for _, role := range requiredRoles {
			if HasRole(c, role) {
				c.Next()
				return
			}
		}

		logrus.WithFields(logrus.Fields{
			"tenant_id":      GetTenantID(c),
			"user_id":        c.GetString(UserIDKey),
			"required_roles": requiredRoles,
			"path":           c.Request.URL.Path,
		}).Warn("Authorization failed - insufficient permissions")

		abortWithError(c, http.StatusForbidden, "Forbidden", "Insufficient permissions")
	}
}

// GetTenantID returns the tenant the request is scoped to, or "" when
// the request is unauthenticated
func GetTenantID(c *gin.Context) string {
	return c.GetString(TenantIDKey)
}

// GetClaims returns the validated token claims
func GetClaims(c *gin.Context) (*Claims, bool) {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*Claims)
	return claims, ok
}

// HasRole checks if the current user has a specific role
func HasRole(c *gin.Context, role UserRole) bool {
	roles, ok := c.Get(RolesKey)
	if !ok {
		return false
	}

	userRoles, ok := roles.([]string)
	if !ok {
		return false
	}

	for _, userRole := range userRoles {
		if userRole == string(role) {
			return true
		}
	}
	return false
}

// IsAdmin checks if the current user has admin role
func IsAdmin(c *gin.Context) bool {
	return HasRole(c, RoleAdmin)
}
