package handler

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

func signToken(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestParseUserID(t *testing.T) {
	key := []byte("test-secret")

	token := signToken(t, key, jwt.MapClaims{
		"uid": 42,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	uid, err := ParseUserID(token, key)
	require.NoError(t, err)
	assert.Equal(t, int64(42), uid)

	_, err = ParseUserID(token, []byte("other-secret"))
	assert.Error(t, err, "wrong signing key")

	expired := signToken(t, key, jwt.MapClaims{
		"uid": 42,
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	_, err = ParseUserID(expired, key)
	assert.Error(t, err, "expired token")

	noUID := signToken(t, key, jwt.MapClaims{"sub": "42"})
	_, err = ParseUserID(noUID, key)
	assert.Error(t, err, "missing uid claim")
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	key := []byte("test-secret")

	router := gin.New()
	router.Use(AuthMiddleware(string(key)))
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": currentUserID(c)})
	})

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, key, jwt.MapClaims{
			"uid": 7,
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"user_id":7`)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
