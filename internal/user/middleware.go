package user

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenKey is the gin context key holding the caller's bearer token.
const TokenKey = "authToken"

// ParseBearer extracts the token from an Authorization header value. A
// value without the "Bearer " scheme is taken as the token itself.
func ParseBearer(header string) string {
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// LoadTokenMiddleware reads the Authorization header into the gin context.
func LoadTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(TokenKey, ParseBearer(c.GetHeader("Authorization")))
		c.Next()
	}
}
