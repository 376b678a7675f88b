package handlers

import (
	"context"
	"net/http"

	"lanka-invoice-api/internal/models"
	"lanka-invoice-api/internal/services"
	"lanka-invoice-api/pkg/lambda"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// transparentGIF is a 1x1 transparent GIF
var transparentGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

var pixelHeaders = map[string]string{
	"Content-Type":  "image/gif",
	"Cache-Control": "no-store, no-cache, must-revalidate, max-age=0",
	"Pragma":        "no-cache",
}

// TrackingHandler serves the public open-pixel and click-through endpoints
type TrackingHandler struct {
	trackingService services.TrackingService
	logger          *logrus.Logger
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(trackingService services.TrackingService, logger *logrus.Logger) *TrackingHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &TrackingHandler{trackingService: trackingService, logger: logger}
}

// @Summary Open pixel
// @Description Records an invoice open and returns a 1x1 GIF. The pixel is served even when the token is rejected.
// @Tags tracking
// @Produce image/gif
// @Param token path string true "Tracking token"
// @Param ch query string false "Delivery channel" Enums(email, whatsapp)
// @Success 200 {file} binary
// @Router /t/o/{token} [get]
func (h *TrackingHandler) TrackOpen(c *gin.Context) {
	err := h.trackingService.RecordOpen(c.Request.Context(), c.Param("token"),
		models.DeliveryChannel(c.Query("ch")), requestMeta(c.ClientIP(), c.Request.UserAgent()))
	if err != nil {
		h.logger.WithError(err).Debug("Open not recorded")
	}

	for key, value := range pixelHeaders {
		c.Header(key, value)
	}
	c.Data(http.StatusOK, "image/gif", transparentGIF)
}

// @Summary Click-through
// @Description Records a click and redirects to the target URL
// @Tags tracking
// @Param token path string true "Tracking token"
// @Param u query string true "Absolute http(s) target URL"
// @Param us query string true "Target signature issued with the link"
// @Param ch query string false "Delivery channel" Enums(email, whatsapp)
// @Success 302
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /t/c/{token} [get]
func (h *TrackingHandler) TrackClick(c *gin.Context) {
	target, err := h.trackingService.RecordClick(c.Request.Context(), c.Param("token"),
		models.DeliveryChannel(c.Query("ch")), c.Query("u"), c.Query("us"), requestMeta(c.ClientIP(), c.Request.UserAgent()))
	if err != nil {
		writeError(c, h.logger, err, "Failed to record click")
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, target)
}

// Lambda handler methods

// HandleOpen is the serverless form of TrackOpen
func (h *TrackingHandler) HandleOpen(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	err := h.trackingService.RecordOpen(ctx, req.PathParams["token"],
		models.DeliveryChannel(req.QueryParams["ch"]), requestMeta(req.Headers["X-Forwarded-For"], req.Headers["User-Agent"]))
	if err != nil {
		h.logger.WithError(err).Debug("Open not recorded")
	}

	return &lambda.Response{StatusCode: http.StatusOK, Headers: pixelHeaders, Body: transparentGIF}, nil
}

// HandleClick is the serverless form of TrackClick
func (h *TrackingHandler) HandleClick(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	target, err := h.trackingService.RecordClick(ctx, req.PathParams["token"],
		models.DeliveryChannel(req.QueryParams["ch"]), req.QueryParams["u"], req.QueryParams["us"],
		requestMeta(req.Headers["X-Forwarded-For"], req.Headers["User-Agent"]))
	if err != nil {
		return lambdaError(err, "Failed to record click")
	}

	return &lambda.Response{
		StatusCode: http.StatusFound,
		Headers:    map[string]string{"Location": target, "Cache-Control": "no-store"},
	}, nil
}

func requestMeta(ip, userAgent string) services.RequestMeta {
	return services.RequestMeta{IPAddress: ip, UserAgent: userAgent}
}
