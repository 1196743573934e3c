package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	handlershared "github.com/aptechmall/ordercore/internal/http/handlers/shared"
	"github.com/aptechmall/ordercore/internal/identity"
	"github.com/aptechmall/ordercore/internal/service"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

type stubResolver struct {
	claims       *service.TokenClaims
	principal    *identity.Principal
	parseErr     error
	resolveErr   error
	parsedTokens []string
}

func (s *stubResolver) ParseAccessToken(_ context.Context, token string) (*service.TokenClaims, error) {
	s.parsedTokens = append(s.parsedTokens, token)
	if s.parseErr != nil {
		return nil, s.parseErr
	}
	return s.claims, nil
}

func (s *stubResolver) ResolvePrincipal(_ context.Context, _ *service.TokenClaims) (*identity.Principal, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.principal, nil
}

type stubEnforcer struct {
	allowed bool
	err     error
	calls   []string
}

func (s *stubEnforcer) EnforceRole(role, obj, act string) (bool, error) {
	s.calls = append(s.calls, role+" "+act+" "+obj)
	return s.allowed, s.err
}

type envelope struct {
	StatusCode int                    `json:"status_code"`
	Data       map[string]interface{} `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func newAuthEngine(resolver PrincipalResolver, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{UserJWTAuthMiddleware(resolver)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		principal, ok := handlershared.GetPrincipal(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"status_code": 0, "data": gin.H{"user_id": principal.UserID, "role": string(principal.Role)}})
	})
	r.GET("/api/v1/admin/orders", handlers...)
	return r
}

func TestUserJWTAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	resolver := &stubResolver{}
	r := newAuthEngine(resolver)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil))

	if resp := decodeEnvelope(t, w); resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
	if len(resolver.parsedTokens) != 0 {
		t.Fatalf("resolver should not be called without header")
	}
}

func TestUserJWTAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	r := newAuthEngine(&stubResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	if resp := decodeEnvelope(t, w); resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
}

func TestUserJWTAuthMiddlewareMapsTokenErrors(t *testing.T) {
	cases := []struct {
		name      string
		resolver  *stubResolver
		wantCode  int
		retryable bool
	}{
		{name: "invalid", resolver: &stubResolver{parseErr: service.ErrTokenInvalid}, wantCode: 401},
		{name: "revoked", resolver: &stubResolver{parseErr: service.ErrTokenRevoked}, wantCode: 401},
		{name: "store down", resolver: &stubResolver{parseErr: errors.Join(service.ErrStoreUnavailable, errors.New("dial tcp"))}, wantCode: 503, retryable: true},
		{name: "disabled", resolver: &stubResolver{claims: &service.TokenClaims{UserID: 3}, resolveErr: service.ErrUserDisabled}, wantCode: 403},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newAuthEngine(tc.resolver)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
			req.Header.Set("Authorization", "Bearer some.jwt.token")
			r.ServeHTTP(w, req)

			resp := decodeEnvelope(t, w)
			if resp.StatusCode != tc.wantCode {
				t.Fatalf("status_code want %d got %d", tc.wantCode, resp.StatusCode)
			}
			if tc.retryable && resp.Data["retryable"] != true {
				t.Fatalf("expected retryable flag, got %v", resp.Data)
			}
		})
	}
}

func TestUserJWTAuthMiddlewareSetsPrincipal(t *testing.T) {
	resolver := &stubResolver{
		claims:    &service.TokenClaims{UserID: 7},
		principal: &identity.Principal{UserID: 7, Role: identity.RoleCustomer, Status: identity.StatusActive},
	}
	r := newAuthEngine(resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer token-value")
	r.ServeHTTP(w, req)

	resp := decodeEnvelope(t, w)
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", resp.StatusCode)
	}
	if resp.Data["user_id"] != float64(7) {
		t.Fatalf("user_id want 7 got %v", resp.Data["user_id"])
	}
	if len(resolver.parsedTokens) != 1 || resolver.parsedTokens[0] != "token-value" {
		t.Fatalf("unexpected parsed tokens %v", resolver.parsedTokens)
	}
}

func TestAdminRBACMiddleware(t *testing.T) {
	staff := &stubResolver{
		claims:    &service.TokenClaims{UserID: 2},
		principal: &identity.Principal{UserID: 2, Role: identity.RoleStaff, Status: identity.StatusActive},
	}
	customer := &stubResolver{
		claims:    &service.TokenClaims{UserID: 9},
		principal: &identity.Principal{UserID: 9, Role: identity.RoleCustomer, Status: identity.StatusActive},
	}

	t.Run("customer rejected before enforcer", func(t *testing.T) {
		enforcer := &stubEnforcer{allowed: true}
		r := newAuthEngine(customer, AdminRBACMiddleware(enforcer))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
		req.Header.Set("Authorization", "Bearer t")
		r.ServeHTTP(w, req)
		if resp := decodeEnvelope(t, w); resp.StatusCode != 403 {
			t.Fatalf("status_code want 403 got %d", resp.StatusCode)
		}
		if len(enforcer.calls) != 0 {
			t.Fatalf("enforcer should not be consulted for customers")
		}
	})

	t.Run("staff allowed by policy", func(t *testing.T) {
		enforcer := &stubEnforcer{allowed: true}
		r := newAuthEngine(staff, AdminRBACMiddleware(enforcer))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
		req.Header.Set("Authorization", "Bearer t")
		r.ServeHTTP(w, req)
		if resp := decodeEnvelope(t, w); resp.StatusCode != 0 {
			t.Fatalf("status_code want 0 got %d", resp.StatusCode)
		}
		if len(enforcer.calls) != 1 || enforcer.calls[0] != "STAFF GET /api/v1/admin/orders" {
			t.Fatalf("unexpected enforcer calls %v", enforcer.calls)
		}
	})

	t.Run("staff denied by policy", func(t *testing.T) {
		r := newAuthEngine(staff, AdminRBACMiddleware(&stubEnforcer{allowed: false}))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
		req.Header.Set("Authorization", "Bearer t")
		r.ServeHTTP(w, req)
		if resp := decodeEnvelope(t, w); resp.StatusCode != 403 {
			t.Fatalf("status_code want 403 got %d", resp.StatusCode)
		}
	})

	t.Run("enforcer error", func(t *testing.T) {
		r := newAuthEngine(staff, AdminRBACMiddleware(&stubEnforcer{err: errors.New("adapter down")}))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
		req.Header.Set("Authorization", "Bearer t")
		r.ServeHTTP(w, req)
		if resp := decodeEnvelope(t, w); resp.StatusCode != 403 {
			t.Fatalf("status_code want 403 got %d", resp.StatusCode)
		}
	})
}

func TestDeriveAdminPermissionModule(t *testing.T) {
	cases := map[string]string{
		"/admin/orders/:id":       "orders",
		"/admin/users/:id/orders": "users",
		"/health":                 "health",
		"":                        "system",
	}
	for input, want := range cases {
		if got := deriveAdminPermissionModule(input); got != want {
			t.Fatalf("module for %q want %s got %s", input, want, got)
		}
	}
}
