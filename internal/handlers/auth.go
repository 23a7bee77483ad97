package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mission-clinic-server/internal/config"
	"mission-clinic-server/internal/middleware"
	"mission-clinic-server/internal/models"
	"mission-clinic-server/internal/store"
	"mission-clinic-server/internal/utils"
)

// AuthHandler handles login, logout and admin elevation.
type AuthHandler struct {
	Store    *store.Store
	Config   *config.Config
	Denylist middleware.Denylist
	Logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(s *store.Store, cfg *config.Config, denylist middleware.Denylist, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Store: s, Config: cfg, Denylist: denylist, Logger: logger}
}

// LoginRequest represents the request body for login. There are no passwords:
// an unknown email creates the participant.
type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

// AdminRequest carries the shared coordinator passcode.
type AdminRequest struct {
	Passcode string `json:"passcode" binding:"required"`
}

// SessionResponse is returned by login and admin elevation.
type SessionResponse struct {
	Token       string             `json:"token"`
	ExpiresAt   time.Time          `json:"expiresAt"`
	Participant models.Participant `json:"participant"`
}

func (h *AuthHandler) issue(c *gin.Context, message string, p models.Participant) {
	ttl := time.Duration(h.Config.JWTExpirationMinutes) * time.Minute
	token, claims, err := utils.GenerateToken(p.ID, p.IsAdmin, h.Config.JWTSecret, ttl)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token: "+err.Error())
		return
	}
	utils.Success(c, message, SessionResponse{
		Token:       token,
		ExpiresAt:   claims.ExpiresAt.Time,
		Participant: p,
	})
}

// Login handles participant login, creating the participant on first use.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	_, participant := h.Store.Login(req.Email, req.Name)
	h.Logger.Info("participant logged in", zap.String("participant_id", participant.ID))
	h.issue(c, "Login successful", participant)
}

// Logout revokes the presented session token until it would have expired.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaimsFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Session not found")
		return
	}

	if err := h.Denylist.Revoke(c.Request.Context(), claims.ID, claims.RemainingTTL()); err != nil {
		utils.InternalServerError(c, "Failed to revoke session: "+err.Error())
		return
	}
	h.Store.Logout(sessionFrom(c))

	utils.Success(c, "Logout successful", nil)
}

// GetProfile returns the logged-in participant.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	participantID, ok := middleware.GetParticipantIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Session not found")
		return
	}

	participant, found := h.Store.Participant(participantID)
	if !found {
		utils.NotFound(c, "Participant not found")
		return
	}

	utils.Success(c, "Profile fetched successfully", participant)
}

// ElevateToAdmin checks the coordinator passcode and turns the caller into an
// admin. A fresh token carrying the admin flag replaces the current one.
func (h *AuthHandler) ElevateToAdmin(c *gin.Context) {
	var req AdminRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if h.Config.AdminPasscodeHash == "" {
		utils.Forbidden(c, "Admin elevation is disabled")
		return
	}
	if err := utils.CheckPasscode(h.Config.AdminPasscodeHash, req.Passcode); err != nil {
		h.Logger.Warn("admin elevation rejected")
		utils.Unauthorized(c, "Invalid passcode")
		return
	}

	claims, ok := middleware.GetClaimsFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Session not found")
		return
	}
	participant, found := h.Store.Participant(claims.ParticipantID)
	if !found {
		utils.NotFound(c, "Participant not found")
		return
	}
	if !participant.IsAdmin {
		participant.IsAdmin = true
		if !h.Store.UpdateParticipant(participant) {
			utils.Conflict(c, "Failed to update participant")
			return
		}
	}
	if err := h.Denylist.Revoke(c.Request.Context(), claims.ID, claims.RemainingTTL()); err != nil {
		h.Logger.Warn("failed to revoke pre-elevation token", zap.Error(err))
	}

	h.Logger.Info("participant elevated to admin", zap.String("participant_id", participant.ID))
	h.issue(c, "Admin access granted", participant)
}
