package handlers

import (
	"net/http"
	"strings"
	"time"

	"user_management/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-Id"

	ctxRequestID = "request_id"
	ctxIdentity  = "identity"
)

// Gate decision labels for metrics.
const (
	checkAuthenticate = "authenticate"
	checkVerifyAdmin  = "verify_admin"
	resultAllowed     = "allowed"
	resultDenied      = "denied"
	resultError       = "error"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Set(ctxRequestID, id)
		c.Next()
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path // fallback (e.g. 404)
		}
		method := c.Request.Method

		c.Next()

		if h.log == nil {
			return
		}
		reqID, _ := c.Get(ctxRequestID)
		h.log.Infow("http_request",
			"method", method,
			"route", route,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", reqID,
		)
	}
}

// authenticate verifies the bearer token and stores the decoded identity.
func (h *Handler) authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		h.deny(c, checkAuthenticate, http.StatusUnauthorized, "missing Authorization header")
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		h.deny(c, checkAuthenticate, http.StatusUnauthorized, "invalid Authorization header format")
		return
	}

	identity, err := h.services.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_token_rejected", "err", err)
		}
		h.deny(c, checkAuthenticate, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	h.opts.Metrics.ObserveAuth(checkAuthenticate, resultAllowed)
	c.Set(ctxIdentity, identity)
	c.Next()
}

// verifyAdmin lets only ADMIN identities through. It must run after authenticate;
// a missing identity is a wiring fault and answers 500.
func (h *Handler) verifyAdmin(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		if h.log != nil {
			h.log.Errorw("auth_identity_missing", "route", c.FullPath())
		}
		h.opts.Metrics.ObserveAuth(checkVerifyAdmin, resultError)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "identity claim unavailable"})
		return
	}
	if !identity.IsAdmin() {
		h.deny(c, checkVerifyAdmin, http.StatusForbidden, "admin role required")
		return
	}

	h.opts.Metrics.ObserveAuth(checkVerifyAdmin, resultAllowed)
	c.Next()
}

func (h *Handler) deny(c *gin.Context, check string, code int, msg string) {
	h.opts.Metrics.ObserveAuth(check, resultDenied)
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

func identityFromContext(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}
