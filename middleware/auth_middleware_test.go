package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
)

var testSecret = []byte("testsecret")

func signTestToken(t *testing.T, role string, secret []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "64f000000000000000000001",
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(secret)
	assert.NoError(t, err)
	return signed
}

func buildTestRouter(requireAdmin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", Auth(testSecret, requireAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id"), "role": c.GetString("role")})
	})
	return r
}

func TestAuth_MissingToken(t *testing.T) {
	r := buildTestRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	r := buildTestRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuth_WrongSecret(t *testing.T) {
	r := buildTestRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user", []byte("othersecret")))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuth_ValidUserToken(t *testing.T) {
	r := buildTestRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user", testSecret))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "64f000000000000000000001")
}

func TestAuth_AdminRequired(t *testing.T) {
	r := buildTestRouter(true)

	// User token on an admin route is rejected.
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user", testSecret))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// Admin token passes.
	req2 := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req2.Header.Set("Authorization", "Bearer "+signTestToken(t, "admin", testSecret))
	resp2 := httptest.NewRecorder()
	r.ServeHTTP(resp2, req2)
	assert.Equal(t, http.StatusOK, resp2.Code)
}
