package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"recipe-llm/internal/domain"
	"recipe-llm/internal/service"
)

func newProtectedRouter(t *testing.T, jwtSvc *service.JWTService) (*gin.Engine, *bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reached := false
	r := gin.New()
	r.GET("/protected", JWTAuthMiddleware(jwtSvc), func(c *gin.Context) {
		reached = true
		claims, ok := GetAuthClaims(c)
		if !ok || claims.UserID != "u1" {
			c.Status(http.StatusTeapot)
			return
		}
		c.Status(http.StatusOK)
	})
	return r, &reached
}

func mustJWTService(t *testing.T, secret string, opts ...service.JWTOption) *service.JWTService {
	t.Helper()
	svc, err := service.NewJWTService(secret, time.Hour, opts...)
	if err != nil {
		t.Fatalf("new jwt service: %v", err)
	}
	return svc
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestJWTAuthMiddleware_AllowsValidAccessToken(t *testing.T) {
	jwtSvc := mustJWTService(t, "secret")
	token, err := jwtSvc.GenerateToken(domain.User{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	r, reached := newProtectedRouter(t, jwtSvc)

	for _, scheme := range []string{"Bearer ", "bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", scheme+token.Token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK || !*reached {
			t.Fatalf("expected 200 for scheme %q, got %d", scheme, rec.Code)
		}
	}
}

func TestJWTAuthMiddleware_RejectsMissingToken(t *testing.T) {
	r, reached := newProtectedRouter(t, mustJWTService(t, "secret"))

	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic dXNlcjpwYXNz", "Token abc"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %q, got %d", header, rec.Code)
		}
		if msg := errorBody(t, rec); msg != "access token required" {
			t.Fatalf("unexpected message %q for %q", msg, header)
		}
	}
	if *reached {
		t.Fatalf("handler must not run without a token")
	}
}

func TestJWTAuthMiddleware_RejectsInvalidToken(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	jwtSvc := mustJWTService(t, "secret", service.WithClock(clock))
	foreign := mustJWTService(t, "other", service.WithClock(clock))

	expired, err := jwtSvc.GenerateToken(domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	forged, err := foreign.GenerateToken(domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	now = now.Add(time.Hour)

	r, reached := newProtectedRouter(t, jwtSvc)
	for _, token := range []string{"garbage", forged.Token, expired.Token} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if msg := errorBody(t, rec); msg != "invalid token" {
			t.Fatalf("unexpected message %q", msg)
		}
	}
	if *reached {
		t.Fatalf("handler must not run with an invalid token")
	}
}
