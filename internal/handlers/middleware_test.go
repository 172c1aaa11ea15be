package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"user_management/internal/service"

	"github.com/gin-gonic/gin"
)

// minimal router wiring only the gates + protected endpoints
func newMiddlewareOnlyRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/secure", h.authenticate, func(c *gin.Context) {
		id, _ := identityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "role": id.Role})
	})
	r.GET("/admin", h.authenticate, h.verifyAdmin, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	// verifyAdmin wired without authenticate
	r.GET("/miswired", h.verifyAdmin, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestAuthenticate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		header string
		errMsg string
	}{
		{"missing header", "", "missing Authorization header"},
		{"invalid scheme", "Token abc", "invalid Authorization header format"},
		{"bearer without token", "Bearer", "invalid Authorization header format"},
		{"bearer with blank token", "Bearer   ", "invalid Authorization header format"},
		{"expired/invalid token", "Bearer expired", "invalid or expired token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newMiddlewareOnlyRouter(&service.Service{Authorization: newMockAuth()})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status: got %d, want 401 (body=%s)", w.Code, w.Body.String())
			}
			if got := errorOf(t, w); got != tc.errMsg {
				t.Fatalf("error: got %q, want %q", got, tc.errMsg)
			}
		})
	}
}

func TestAuthenticate_StoresIdentity(t *testing.T) {
	auth := newMockAuth()
	r := newMiddlewareOnlyRouter(&service.Service{Authorization: auth})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if auth.lastParseToken != userToken {
		t.Fatalf("expected token %q to be parsed, got %q", userToken, auth.lastParseToken)
	}
	if body := w.Body.String(); body != `{"role":"USER","user_id":2}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestVerifyAdmin(t *testing.T) {
	cases := []struct {
		name     string
		path     string
		token    string
		wantCode int
	}{
		{"admin allowed", "/admin", adminToken, http.StatusOK},
		{"user forbidden", "/admin", userToken, http.StatusForbidden},
		{"unauthenticated stops at first gate", "/admin", "", http.StatusUnauthorized},
		{"missing identity is a server error", "/miswired", adminToken, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newMiddlewareOnlyRouter(&service.Service{Authorization: newMockAuth()})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			for k, v := range authHeader(tc.token) {
				req.Header[k] = v
			}
			r.ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Fatalf("status=%d, want %d (body=%s)", w.Code, tc.wantCode, w.Body.String())
			}
		})
	}
}

func TestVerifyAdmin_WrongIdentityType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&service.Service{}, nil)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		c.Set(ctxIdentity, "ADMIN") // not a models.Identity
		c.Next()
	}, h.verifyAdmin, func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestRequestID_EchoesIncomingHeader(t *testing.T) {
	r := newTestRouter(&service.Service{Health: &mockHealth{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if got := w.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}
