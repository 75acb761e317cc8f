package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/config"
	"app/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// =====================
// レスポンス確認用（any禁止）
// =====================

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// =====================
// helper
// =====================

func mustMakeJWT(t *testing.T, secret string, sub int64, role string, signingMethod jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"iat":  1,
		"exp":  9999999999,
	}

	token := jwt.NewWithClaims(signingMethod, claims)

	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func newEchoWithAuth(cfg config.Config, adminOnly bool) *echo.Echo {
	e := echo.New()
	g := e.Group("/t")
	g.Use(middleware.AuthJWT(cfg))
	if adminOnly {
		g.Use(middleware.AdminRoleGuard())
	}
	g.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, mwOKResponse{
			UserID: c.Get(middleware.CtxUserIDKey).(int64),
			Role:   c.Get(middleware.CtxUserRoleKey).(string),
		})
	})
	return e
}

func runRequest(t *testing.T, e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

// =====================
// AuthJWT
// =====================

func TestAuthJWT_NoHeader(t *testing.T) {
	e := newEchoWithAuth(config.Config{JWTSecret: "s3cret"}, false)

	rec := runRequest(t, e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
}

func TestAuthJWT_NotBearer(t *testing.T) {
	e := newEchoWithAuth(config.Config{JWTSecret: "s3cret"}, false)

	rec := runRequest(t, e, "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	e := newEchoWithAuth(config.Config{JWTSecret: "s3cret"}, false)

	token := mustMakeJWT(t, "other", 42, "USER", jwt.SigningMethodHS256)
	rec := runRequest(t, e, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSigningMethod(t *testing.T) {
	e := newEchoWithAuth(config.Config{JWTSecret: "s3cret"}, false)

	token := mustMakeJWT(t, "s3cret", 42, "USER", jwt.SigningMethodHS512)
	rec := runRequest(t, e, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_Valid_SetsContext(t *testing.T) {
	e := newEchoWithAuth(config.Config{JWTSecret: "s3cret"}, false)

	token := mustMakeJWT(t, "s3cret", 42, "USER", jwt.SigningMethodHS256)
	rec := runRequest(t, e, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	var ok mwOKResponse
	_ = json.NewDecoder(rec.Body).Decode(&ok)
	assert.Equal(t, int64(42), ok.UserID)
	assert.Equal(t, "USER", ok.Role)
}

// =====================
// AdminRoleGuard
// =====================

func TestAdminRoleGuard_UserForbidden(t *testing.T) {
	e := newEchoWithAuth(config.Config{JWTSecret: "s3cret"}, true)

	token := mustMakeJWT(t, "s3cret", 42, "USER", jwt.SigningMethodHS256)
	rec := runRequest(t, e, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "admin only", decodeMWError(t, rec).Error)
}

func TestAdminRoleGuard_AdminAllowed(t *testing.T) {
	e := newEchoWithAuth(config.Config{JWTSecret: "s3cret"}, true)

	token := mustMakeJWT(t, "s3cret", 1, "ADMIN", jwt.SigningMethodHS256)
	rec := runRequest(t, e, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}
