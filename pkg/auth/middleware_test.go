package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := Claims{
		UserID:   "user-1",
		Email:    "manager@example.com",
		RoleName: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func setupRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewMiddleware(testSecret)
	router := gin.New()
	router.GET("/protected", m.Authenticate(), m.RequireRole(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": RoleFromContext(c), "user": UserIDFromContext(c)})
	})
	return router
}

func doRequest(router *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	w := doRequest(setupRouter(RoleManager), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_WrongScheme(t *testing.T) {
	w := doRequest(setupRouter(RoleManager), "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", RoleManager, time.Hour)
	w := doRequest(setupRouter(RoleManager), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, RoleManager, -time.Minute)
	w := doRequest(setupRouter(RoleManager), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole_Allowed(t *testing.T) {
	token := signToken(t, testSecret, RoleManager, time.Hour)
	w := doRequest(setupRouter(RoleManager, RoleAdmin), "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"manager"`)
	assert.Contains(t, w.Body.String(), `"user":"user-1"`)
}

func TestRequireRole_Forbidden(t *testing.T) {
	token := signToken(t, testSecret, RoleCustomer, time.Hour)
	w := doRequest(setupRouter(RoleManager, RoleAdmin), "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
