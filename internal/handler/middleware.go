package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"automarket/pkg/response"
)

const userIDContextKey = "user_id"

// AuthMiddleware validates the Bearer token and puts the authenticated user id
// into the gin context. Purchase and balance routes trust only this identity,
// never an id from the request body.
func AuthMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}

		userID, err := ParseUserID(strings.TrimPrefix(header, "Bearer "), key)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

// ParseUserID verifies an HMAC-signed token and extracts the uid claim.
func ParseUserID(tokenStr string, key []byte) (int64, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid token claims")
	}
	uid, ok := claims["uid"].(float64)
	if !ok || uid <= 0 {
		return 0, errors.New("missing uid claim")
	}
	return int64(uid), nil
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDContextKey)
}

// LoggerMiddleware logs one line per request.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		if query != "" {
			path = path + "?" + query
		}

		logrus.WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
			"ip":      c.ClientIP(),
			"method":  c.Request.Method,
			"path":    path,
		}).Info("http request")
	}
}

// RecoveryMiddleware keeps a panicking handler from taking the process down.
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logrus.Errorf("panic recovered: %v", err)
				c.AbortWithStatusJSON(500, gin.H{
					"code":    response.CodeServerError,
					"message": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// CORSMiddleware allows the marketplace frontends to call the API directly.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
