package middleware

import (
	"net/http"
	"strings"

	"bookxe/internal/domain"
	"bookxe/internal/pkg/jwt"
	"bookxe/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// JWTAuth validates the bearer token and stores user_id and role in the context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be Bearer <token>")
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		role, err := domain.ParseRole(claims.Role)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Unknown role in token")
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, string(role))
		c.Next()
	}
}

// ActorFrom returns the identity JWTAuth resolved for this request.
func ActorFrom(c *gin.Context) (domain.Actor, bool) {
	id := c.GetString(ctxUserID)
	role := c.GetString(ctxRole)
	if id == "" || role == "" {
		return domain.Actor{}, false
	}
	return domain.Actor{ID: id, Role: domain.Role(role)}, true
}

// MustActor writes a 401 and returns false when no actor is present.
func MustActor(c *gin.Context) (domain.Actor, bool) {
	actor, ok := ActorFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return domain.Actor{}, false
	}
	return actor, true
}
