package handlers

import (
	"github.com/gin-gonic/gin"

	"mission-clinic-server/internal/models"
	"mission-clinic-server/internal/store"
	"mission-clinic-server/internal/utils"
)

// ParticipantHandler handles the team roster.
type ParticipantHandler struct {
	Store *store.Store
}

// NewParticipantHandler creates a new ParticipantHandler.
func NewParticipantHandler(s *store.Store) *ParticipantHandler {
	return &ParticipantHandler{Store: s}
}

// ParticipantRequest represents the request body for creating or updating a participant.
type ParticipantRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PrimaryRole string `json:"primaryRole"`
	IsAdmin     bool   `json:"isAdmin"`
}

// GetParticipants lists every participant.
func (h *ParticipantHandler) GetParticipants(c *gin.Context) {
	st := h.Store.State()
	utils.Success(c, "Participants fetched successfully", st.Participants)
}

// CreateParticipant adds a participant to the roster (admin).
func (h *ParticipantHandler) CreateParticipant(c *gin.Context) {
	var req ParticipantRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.PrimaryRole != "" && !knownRole(h.Store, req.PrimaryRole) {
		utils.BadRequest(c, "Unknown primary role")
		return
	}

	participant, ok := h.Store.AddParticipant(models.Participant{
		Name:        req.Name,
		Email:       req.Email,
		PrimaryRole: req.PrimaryRole,
		IsAdmin:     req.IsAdmin,
	})
	if !ok {
		utils.Conflict(c, "Participant with this email already exists")
		return
	}

	utils.Created(c, "Participant created successfully", participant)
}

// UpdateParticipant replaces a participant's details (admin).
func (h *ParticipantHandler) UpdateParticipant(c *gin.Context) {
	existing, found := h.Store.Participant(c.Param("id"))
	if !found {
		utils.NotFound(c, "Participant not found")
		return
	}

	var req ParticipantRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.PrimaryRole != "" && !knownRole(h.Store, req.PrimaryRole) {
		utils.BadRequest(c, "Unknown primary role")
		return
	}

	existing.Name = req.Name
	existing.Email = req.Email
	existing.PrimaryRole = req.PrimaryRole
	existing.IsAdmin = req.IsAdmin
	if !h.Store.UpdateParticipant(existing) {
		utils.Conflict(c, "Participant with this email already exists")
		return
	}

	utils.Success(c, "Participant updated successfully", existing)
}

func knownRole(s *store.Store, roleID string) bool {
	st := s.State()
	_, ok := st.Role(roleID)
	return ok
}
