package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/socialshop/backend/internal/models"
)

const testSecret = "test-secret"

func serve(t *testing.T, mw []echo.MiddlewareFunc, method string, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	handler := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user_id": Claims(c).UserID})
	}
	e.Add(method, "/x", handler, mw...)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTHeaderAndQueryToken(t *testing.T) {
	token, err := IssueToken(testSecret, time.Hour, &models.User{ID: 42, Email: "a@b.c", Role: models.RoleUser})
	require.NoError(t, err)
	mw := []echo.MiddlewareFunc{JWTAuthMiddleware(testSecret, nil)}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serve(t, mw, http.MethodGet, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":42}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/x?access_token="+token, nil)
	rec = serve(t, mw, http.MethodGet, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTRejectsBadTokens(t *testing.T) {
	mw := []echo.MiddlewareFunc{JWTAuthMiddleware(testSecret, nil)}

	rec := serve(t, mw, http.MethodGet, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := IssueToken("other-secret", time.Hour, &models.User{ID: 1})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	rec = serve(t, mw, http.MethodGet, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := IssueToken(testSecret, -time.Minute, &models.User{ID: 1})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec = serve(t, mw, http.MethodGet, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type stubVerifier struct {
	claims *models.JwtCustomClaims
}

func (s stubVerifier) Verify(_ context.Context, token string) (*models.JwtCustomClaims, error) {
	if token == "firebase-token" {
		return s.claims, nil
	}
	return nil, errors.New("nope")
}

func TestJWTFallsBackToVerifier(t *testing.T) {
	mw := []echo.MiddlewareFunc{JWTAuthMiddleware(testSecret, stubVerifier{claims: &models.JwtCustomClaims{UserID: 9}})}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer firebase-token")
	rec := serve(t, mw, http.MethodGet, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":9}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	userToken, err := IssueToken(testSecret, time.Hour, &models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)
	adminToken, err := IssueToken(testSecret, time.Hour, &models.User{ID: 2, Role: models.RoleAdmin})
	require.NoError(t, err)
	mw := []echo.MiddlewareFunc{JWTAuthMiddleware(testSecret, nil), RequireRole(models.RoleAdmin)}

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, serve(t, mw, http.MethodPost, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, serve(t, mw, http.MethodPost, req).Code)
}

func TestRateLimitPerUser(t *testing.T) {
	e := echo.New()
	token, err := IssueToken(testSecret, time.Hour, &models.User{ID: 5})
	require.NoError(t, err)
	e.POST("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		JWTAuthMiddleware(testSecret, nil), RateLimit(1, time.Hour, 2))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}
