package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDKey is the key used to store request ID in context
const RequestIDKey = "request_id"

// maxLoggedBody caps request and response bodies logged in debug mode
const maxLoggedBody = 4 * 1024

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.body.Len() < maxLoggedBody {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger logs every request with its tenant and request ID
func StructuredLogger(logger *logrus.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logrus.New()
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		debug := logger.IsLevelEnabled(logrus.DebugLevel)

		var requestBody []byte
		var capture *responseWriter
		if debug {
			if c.Request.Body != nil && c.Request.ContentLength > 0 && c.Request.ContentLength < maxLoggedBody {
				requestBody, _ = io.ReadAll(c.Request.Body)
				c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			}
			capture = &responseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
			c.Writer = capture
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := logrus.Fields{
			"request_id":    c.GetString(RequestIDKey),
			"method":        c.Request.Method,
			"path":          path,
			"status_code":   status,
			"latency_ms":    float64(latency.Nanoseconds()) / 1e6,
			"client_ip":     c.ClientIP(),
			"user_agent":    c.Request.UserAgent(),
			"response_size": c.Writer.Size(),
		}

		if raw := c.Request.URL.RawQuery; raw != "" {
			fields["query"] = raw
		}

		if tenantID := GetTenantID(c); tenantID != "" {
			fields["tenant_id"] = tenantID
		}

		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		if debug {
			if len(requestBody) > 0 {
				fields["request_body"] = string(requestBody)
			}
			if status >= http.StatusBadRequest && capture.body.Len() > 0 {
				fields["response_body"] = capture.body.String()
			}
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("Server error")
		case status >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request completed")
		}
	}
}

// AuditLogger logs state-changing operations with the resource they touch
func AuditLogger(logger *logrus.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logrus.New()
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// stateless tax endpoints change nothing
		resourceType, resourceID := auditResource(c.Request.URL.Path)
		if resourceType == "" {
			return
		}

		fields := logrus.Fields{
			"audit":          true,
			"request_id":     c.GetString(RequestIDKey),
			"tenant_id":      GetTenantID(c),
			"user_id":        c.GetString(UserIDKey),
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"status_code":    c.Writer.Status(),
			"resource_type":  resourceType,
			"operation_time": time.Since(start).Milliseconds(),
		}
		if resourceID != "" {
			fields["resource_id"] = resourceID
		}

		logger.WithFields(fields).Info("Audit log")
	}
}

// auditResource maps "/api/v1/invoices/<id>/payments" to ("invoice", "<id>")
func auditResource(path string) (string, string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		var resourceType string
		switch part {
		case "tenants":
			resourceType = "tenant"
		case "clients":
			resourceType = "client"
		case "invoices":
			resourceType = "invoice"
		default:
			continue
		}

		if i+1 < len(parts) {
			return resourceType, parts[i+1]
		}
		return resourceType, ""
	}
	return "", ""
}

// PerformanceMonitor logs requests slower than the threshold
func PerformanceMonitor(logger *logrus.Logger, slowThreshold time.Duration) gin.HandlerFunc {
	if logger == nil {
		logger = logrus.New()
	}
	if slowThreshold <= 0 {
		slowThreshold = time.Second
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		if latency > slowThreshold {
			logger.WithFields(logrus.Fields{
				"performance_alert": true,
				"request_id":        c.GetString(RequestIDKey),
				"tenant_id":         GetTenantID(c),
				"method":            c.Request.Method,
				"path":              c.Request.URL.Path,
				"latency_ms":        float64(latency.Nanoseconds()) / 1e6,
				"threshold_ms":      float64(slowThreshold.Nanoseconds()) / 1e6,
				"status_code":       c.Writer.Status(),
			}).Warn("Slow request detected")
		}
	}
}
