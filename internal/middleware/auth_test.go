package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mission-clinic-server/internal/config"
	"mission-clinic-server/internal/persistence"
	"mission-clinic-server/internal/utils"
)

type brokenDenylist struct{}

func (brokenDenylist) Revoke(context.Context, string, time.Duration) error { return nil }
func (brokenDenylist) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func newRouter(cfg *config.Config, denylist Denylist) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authed := r.Group("/", AuthMiddleware(cfg, denylist, zap.NewNop()))
	authed.GET("/me", func(c *gin.Context) {
		id, _ := GetParticipantIDFromContext(c)
		utils.Success(c, "ok", id)
	})
	authed.GET("/admin", AdminMiddleware(), func(c *gin.Context) {
		utils.Success(c, "ok", nil)
	})
	return r
}

func do(r *gin.Engine, path, token string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret"}
	denylist := persistence.NewMemoryDenylist()
	r := newRouter(cfg, denylist)

	member, memberClaims, err := utils.GenerateToken("p-ana", false, cfg.JWTSecret, time.Hour)
	require.NoError(t, err)
	admin, _, err := utils.GenerateToken("p-coordinator", true, cfg.JWTSecret, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", ""))
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "garbage"))
	assert.Equal(t, http.StatusOK, do(r, "/me", member))
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", member))
	assert.Equal(t, http.StatusOK, do(r, "/admin", admin))

	require.NoError(t, denylist.Revoke(context.Background(), memberClaims.ID, time.Hour))
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", member))
}

func TestAuthMiddleware_DenylistOutageLetsTokensThrough(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret"}
	r := newRouter(cfg, brokenDenylist{})

	token, _, err := utils.GenerateToken("p-ana", false, cfg.JWTSecret, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(r, "/me", token))
}
