package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AdminRole is the role claim the maintenance endpoints require
const AdminRole = "admin"

// AdminOnly guards maintenance endpoints with an HS256 bearer token whose
// "role" claim is admin. An empty secret leaves the endpoints open.
func AdminOnly(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "missing authorization header"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid authorization header format"})
			return
		}

		if err := validateAdminToken(parts[1], secret); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "forbidden", Details: err.Error()})
			return
		}
		c.Next()
	}
}

func validateAdminToken(tokenString, secret string) error {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	if role, _ := claims["role"].(string); role != AdminRole {
		return errors.New("admin role required")
	}
	return nil
}

// NewAdminToken signs a token the AdminOnly gate accepts. Used by tooling
// and tests.
func NewAdminToken(secret string, claims jwt.MapClaims) (string, error) {
	if claims == nil {
		claims = jwt.MapClaims{}
	}
	claims["role"] = AdminRole
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
