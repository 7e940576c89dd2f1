package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wildcare/compliance-engine/internal/audit"
	"github.com/wildcare/compliance-engine/internal/config"
)

const testSecret = "test-secret"

func authConfig() config.AuthConfig {
	return config.AuthConfig{Enabled: true, TokenSecret: testSecret, Issuer: "https://id.example.org", OrganizationClaim: "org_id"}
}

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"org_id": "org-1",
		"sub":    "user-9",
		"iss":    "https://id.example.org",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
}

func tenantRouter(cfg config.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Tenant(cfg, zap.NewNop()))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"org":         OrganizationID(c),
			"actor":       ActorID(c),
			"audit_actor": audit.ActorFromContext(c.Request.Context()),
		})
	})
	return r
}

func doRequest(r http.Handler, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTenantWithToken(t *testing.T) {
	r := tenantRouter(authConfig())

	t.Run("Valid Token", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())
		w := doRequest(r, map[string]string{"Authorization": "Bearer " + token})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"org":"org-1","actor":"user-9","audit_actor":"user-9"}`, w.Body.String())
	})

	t.Run("Missing Header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doRequest(r, nil).Code)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims())
		assert.Equal(t, http.StatusUnauthorized, doRequest(r, map[string]string{"Authorization": "Bearer " + token}).Code)
	})

	t.Run("Wrong Algorithm", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims())
		assert.Equal(t, http.StatusUnauthorized, doRequest(r, map[string]string{"Authorization": "Bearer " + token}).Code)
	})

	t.Run("Expired", func(t *testing.T) {
		claims := validClaims()
		claims["exp"] = time.Now().Add(-time.Minute).Unix()
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims)
		assert.Equal(t, http.StatusUnauthorized, doRequest(r, map[string]string{"Authorization": "Bearer " + token}).Code)
	})

	t.Run("Wrong Issuer", func(t *testing.T) {
		claims := validClaims()
		claims["iss"] = "https://elsewhere.example.org"
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims)
		assert.Equal(t, http.StatusUnauthorized, doRequest(r, map[string]string{"Authorization": "Bearer " + token}).Code)
	})

	t.Run("No Organization Claim", func(t *testing.T) {
		claims := validClaims()
		delete(claims, "org_id")
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims)
		assert.Equal(t, http.StatusUnauthorized, doRequest(r, map[string]string{"Authorization": "Bearer " + token}).Code)
	})
}

func TestTenantWithHeader(t *testing.T) {
	r := tenantRouter(config.AuthConfig{Enabled: false})

	w := doRequest(r, map[string]string{OrganizationHeader: "org-7", "X-Actor-ID": "carer-2"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"org":"org-7","actor":"carer-2","audit_actor":"carer-2"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, nil).Code)
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(RequestID(), RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/bad", nil)
	req.Header.Set("X-Request-ID", "req-123")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "req-123", entries[1].ContextMap()["request_id"])
}
