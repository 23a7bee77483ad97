package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mission-clinic-server/internal/config"
	"mission-clinic-server/internal/utils"
)

// Context keys set by AuthMiddleware.
const (
	participantIDKey = "participantID"
	isAdminKey       = "isAdmin"
	claimsKey        = "claims"
)

// Denylist tracks session tokens revoked by logout.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(cfg *config.Config, denylist Denylist, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		revoked, err := denylist.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			// An unreachable denylist must not lock the team out mid-clinic.
			logger.Warn("token denylist lookup failed", zap.Error(err))
		}
		if revoked {
			utils.Unauthorized(c, "Session has been logged out")
			c.Abort()
			return
		}

		c.Set(participantIDKey, claims.ParticipantID)
		c.Set(isAdminKey, claims.IsAdmin)
		c.Set(claimsKey, claims)

		c.Next()
	}
}

// AdminMiddleware only lets admin sessions through.
// It should be used *after* AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(isAdminKey); !exists {
			utils.InternalServerError(c, "Session not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}
		if !IsAdmin(c) {
			utils.Forbidden(c, "You do not have permission to access this resource.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetParticipantIDFromContext returns the authenticated participant id.
func GetParticipantIDFromContext(c *gin.Context) (string, bool) {
	id, exists := c.Get(participantIDKey)
	if !exists {
		return "", false
	}
	idStr, ok := id.(string)
	return idStr, ok
}

// IsAdmin reports whether the session token carries admin rights.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(isAdminKey)
}

// GetClaimsFromContext returns the parsed session token.
func GetClaimsFromContext(c *gin.Context) (*utils.Claims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}
