package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenantgrid/backend/internal/infrastructure/auth"
	"github.com/tenantgrid/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-that-is-long-enough",
		Expiration: time.Hour,
		Issuer:     "tenantgrid-test",
	})
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	engine := gin.New()
	engine.Use(JWTAuthMiddleware(newJWTService(), zap.NewNop()))
	engine.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddlewareExtractsClaims(t *testing.T) {
	jwtSvc := newJWTService()
	token, err := jwtSvc.GenerateToken("tenant-a", "user-1", "user@example.com")
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(JWTAuthMiddleware(jwtSvc, zap.NewNop()))
	engine.GET("/protected", func(c *gin.Context) {
		claims := GetIdentityClaims(c)
		c.JSON(http.StatusOK, gin.H{"tenant_id": claims.TenantID, "subject_id": claims.SubjectID})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tenant-a")
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestJWTMiddlewareRejectsGarbageToken(t *testing.T) {
	engine := gin.New()
	engine.Use(JWTAuthMiddleware(newJWTService(), zap.NewNop()))
	engine.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID(zap.NewNop()))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Header().Get("X-Request-ID"))
}

func TestBodyLimitRejectsOversizedBody(t *testing.T) {
	engine := gin.New()
	engine.Use(BodyLimit(16))
	engine.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small"))
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiterPerKey(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	assert.True(t, rl.Allow("tenant:a"))
	assert.True(t, rl.Allow("tenant:a"))
	assert.False(t, rl.Allow("tenant:a"))

	// Other keys have their own window.
	assert.True(t, rl.Allow("tenant:b"))
}

func TestRateLimitMiddlewareKeysByTenant(t *testing.T) {
	jwtSvc := newJWTService()
	tokenA, err := jwtSvc.GenerateToken("tenant-a", "user-1", "")
	require.NoError(t, err)
	tokenB, err := jwtSvc.GenerateToken("tenant-b", "user-2", "")
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(JWTAuthMiddleware(jwtSvc, zap.NewNop()))
	engine.Use(RateLimit(NewRateLimiter(1, time.Minute)))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do(tokenA.AccessToken))
	assert.Equal(t, http.StatusTooManyRequests, do(tokenA.AccessToken))
	// A different tenant is not affected by tenant-a's exhaustion.
	assert.Equal(t, http.StatusOK, do(tokenB.AccessToken))
}
