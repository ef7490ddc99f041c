package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stock-portfolio/problem"
)

// ContextUserID is the gin context key holding the authenticated user id.
const ContextUserID = "user_id"

// TokenParser validates an access token and returns its subject.
type TokenParser interface {
	ParseAccessToken(token string) (string, error)
}

// JWTAuth requires a bearer access token. When the route has a :userId
// parameter the token subject must match it.
func JWTAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			problem.Abort(c, http.StatusUnauthorized, "Invalid credentials", "Authorization header required")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			problem.Abort(c, http.StatusUnauthorized, "Invalid credentials", "Authorization header must be a Bearer token")
			return
		}

		userID, err := parser.ParseAccessToken(tokenString)
		if err != nil {
			problem.Abort(c, http.StatusUnauthorized, "Invalid credentials", "Token expired or invalid")
			return
		}

		if pathUser := c.Param("userId"); pathUser != "" && pathUser != userID {
			problem.Abort(c, http.StatusForbidden, "Forbidden", "Token does not grant access to user "+pathUser)
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}
