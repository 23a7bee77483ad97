package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mission-clinic-server/internal/catalog"
	"mission-clinic-server/internal/config"
	"mission-clinic-server/internal/middleware"
	"mission-clinic-server/internal/models"
	"mission-clinic-server/internal/persistence"
	"mission-clinic-server/internal/store"
	"mission-clinic-server/internal/utils"
)

func TestBackupFilename(t *testing.T) {
	at := time.Date(2025, time.March, 4, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "mission-clinic-backup-2025-03-04.json", BackupFilename(at))
}

func TestKeepDeducted(t *testing.T) {
	stored := []models.Medication{
		{Name: "Amoxicillin", PharmacyItemID: "rx-amox", Deducted: true},
		{Name: "Advice only"},
	}
	incoming := []models.Medication{
		{Name: "Amoxicillin", PharmacyItemID: "rx-amox"},
		{Name: "Amoxicillin", PharmacyItemID: "rx-amox"},
		{Name: "Ibuprofen", PharmacyItemID: "rx-ibu", Deducted: true},
	}

	got := keepDeducted(stored, incoming)

	assert.True(t, got[0].Deducted)
	assert.False(t, got[1].Deducted, "a second line of the same item is new stock usage")
	assert.False(t, got[2].Deducted, "clients cannot mark lines as already deducted")
	assert.False(t, incoming[0].Deducted)
}

func TestSessionFromIsSharedWithinRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	first := sessionFrom(c)
	assert.Same(t, first, sessionFrom(c))
}

func TestLogoutClearsRequestSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationMinutes: 60}
	denylist := persistence.NewMemoryDenylist()
	h := NewAuthHandler(store.New(catalog.SampleState(), zap.NewNop()), cfg, denylist, zap.NewNop())

	var before, after bool
	router := gin.New()
	router.POST("/logout", middleware.AuthMiddleware(cfg, denylist, zap.NewNop()), func(c *gin.Context) {
		before = sessionFrom(c).LoggedIn()
		h.Logout(c)
		after = sessionFrom(c).LoggedIn()
	})

	token, _, err := utils.GenerateToken("p-ana", false, cfg.JWTSecret, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, before)
	assert.False(t, after)
}
