package rest

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/simaogato/assetflow-backend/internal/auth"
	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/logger"
)

// RequestIDHeader carries the per-request id back to the client
const RequestIDHeader = "X-Request-Id"

func (h *ApiHandler) logRequestMiddleware(c *gin.Context) {
	requestID := ulid.Make().String()
	reqLog := h.Logger.With(
		"request_id", requestID,
		"method", c.Request.Method,
		"route", c.FullPath(),
	)
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), reqLog))
	c.Header(RequestIDHeader, requestID)

	start := time.Now()
	c.Next()

	status := c.Writer.Status()
	fields := []interface{}{
		"status", status,
		"latency", time.Since(start),
		"client_ip", c.ClientIP(),
	}
	switch {
	case status >= 500:
		reqLog.Errorw("request failed", append(fields, "errors", c.Errors.String())...)
	case status >= 400:
		reqLog.Warnw("request rejected", fields...)
	default:
		reqLog.Infow("request completed", fields...)
	}
}

func (h *ApiHandler) authMiddleware(c *gin.Context) {
	ownerID, err := h.Verifier.Verify(c.GetHeader("Authorization"))
	if err != nil {
		returnErrorJson(c, domain.ErrUnauthenticated)
		return
	}
	c.Request = c.Request.WithContext(auth.WithOwner(c.Request.Context(), ownerID))
	c.Next()
}
