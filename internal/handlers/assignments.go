package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mission-clinic-server/internal/middleware"
	"mission-clinic-server/internal/store"
	"mission-clinic-server/internal/utils"
)

// AssignmentHandler handles shift sign-ups and attendance.
type AssignmentHandler struct {
	Store  *store.Store
	Logger *zap.Logger
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(s *store.Store, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{Store: s, Logger: logger}
}

// CreateAssignmentRequest represents the request body for signing up to a role in a shift.
type CreateAssignmentRequest struct {
	ClinicDayID string `json:"clinicDayId" binding:"required"`
	ShiftID     string `json:"shiftId" binding:"required"`
	RoleID      string `json:"roleId" binding:"required"`
}

// AttendanceRequest marks whether an assignee showed up.
type AttendanceRequest struct {
	Attended *bool `json:"attended" binding:"required"`
}

// CreateAssignment signs the caller up for a role in a shift.
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req CreateAssignmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	st := h.Store.State()
	if _, ok := st.ClinicDay(req.ClinicDayID); !ok {
		utils.BadRequest(c, "Unknown clinic day")
		return
	}
	if _, ok := st.Shift(req.ShiftID); !ok {
		utils.BadRequest(c, "Unknown shift")
		return
	}
	if _, ok := st.Role(req.RoleID); !ok {
		utils.BadRequest(c, "Unknown role")
		return
	}

	assignment, ok := h.Store.AddAssignment(sessionFrom(c), req.ClinicDayID, req.ShiftID, req.RoleID)
	if !ok {
		utils.Conflict(c, "Role is full or you already hold a role in this shift")
		return
	}

	h.Logger.Info("assignment created",
		zap.String("assignment_id", assignment.ID),
		zap.String("participant_id", assignment.ParticipantID))
	utils.Created(c, "Assignment created successfully", assignment)
}

// DeleteAssignment removes an assignment. Participants may only drop their own
// assignments; admins may drop any.
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	assignment, found := h.Store.Assignment(c.Param("id"))
	if !found {
		utils.NotFound(c, "Assignment not found")
		return
	}

	if !canManage(c, assignment.ParticipantID) {
		utils.Forbidden(c, "You can only remove your own assignments")
		return
	}

	h.Store.RemoveAssignment(assignment.ID)
	utils.Success(c, "Assignment removed successfully", nil)
}

// MarkAttendance records whether the assignee showed up for the shift. Only the
// assignee or an admin may set it.
func (h *AssignmentHandler) MarkAttendance(c *gin.Context) {
	assignment, found := h.Store.Assignment(c.Param("id"))
	if !found {
		utils.NotFound(c, "Assignment not found")
		return
	}
	if !canManage(c, assignment.ParticipantID) {
		utils.Forbidden(c, "You can only mark attendance on your own assignments")
		return
	}

	var req AttendanceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updated, ok := h.Store.MarkAttendance(assignment.ID, *req.Attended)
	if !ok {
		utils.NotFound(c, "Assignment not found")
		return
	}
	utils.Success(c, "Attendance updated successfully", updated)
}

// canManage reports whether the caller owns the assignment or is an admin.
func canManage(c *gin.Context, ownerID string) bool {
	participantID, _ := middleware.GetParticipantIDFromContext(c)
	return ownerID == participantID || middleware.IsAdmin(c)
}
