package handlers

import (
	"github.com/gin-gonic/gin"

	"mission-clinic-server/internal/capacity"
	"mission-clinic-server/internal/models"
	"mission-clinic-server/internal/store"
	"mission-clinic-server/internal/utils"
)

// ClinicDayHandler handles clinic days and the staffing views derived from them.
type ClinicDayHandler struct {
	Store *store.Store
}

// NewClinicDayHandler creates a new ClinicDayHandler.
func NewClinicDayHandler(s *store.Store) *ClinicDayHandler {
	return &ClinicDayHandler{Store: s}
}

// ClinicDayRequest represents the request body for creating or updating a clinic day.
type ClinicDayRequest struct {
	Date                 string `json:"date" binding:"required,datetime=2006-01-02"`
	Name                 string `json:"name"`
	IsActive             bool   `json:"isActive"`
	TicketsIssued        int    `json:"ticketsIssued" binding:"min=0"`
	ActualPatientsServed *int   `json:"actualPatientsServed" binding:"omitempty,min=0"`
}

func (r ClinicDayRequest) toModel(id string) models.ClinicDay {
	return models.ClinicDay{
		ID:                   id,
		Date:                 r.Date,
		Name:                 r.Name,
		IsActive:             r.IsActive,
		TicketsIssued:        r.TicketsIssued,
		ActualPatientsServed: r.ActualPatientsServed,
	}
}

// CapacityResponse combines projected capacity with the ticket recommendation.
type CapacityResponse struct {
	capacity.DayCapacity
	RecommendedTickets int `json:"recommendedTickets"`
	TicketsIssued      int `json:"ticketsIssued"`
}

// GetClinicDays lists every clinic day.
func (h *ClinicDayHandler) GetClinicDays(c *gin.Context) {
	st := h.Store.State()
	utils.Success(c, "Clinic days fetched successfully", st.ClinicDays)
}

// CreateClinicDay adds a clinic day (admin).
func (h *ClinicDayHandler) CreateClinicDay(c *gin.Context) {
	var req ClinicDayRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	day := h.Store.AddClinicDay(req.toModel(""))
	utils.Created(c, "Clinic day created successfully", day)
}

// UpdateClinicDay replaces a clinic day (admin).
func (h *ClinicDayHandler) UpdateClinicDay(c *gin.Context) {
	var req ClinicDayRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	day := req.toModel(c.Param("id"))
	if !h.Store.UpdateClinicDay(day) {
		utils.NotFound(c, "Clinic day not found")
		return
	}
	utils.Success(c, "Clinic day updated successfully", day)
}

// DeleteClinicDay removes a clinic day (admin). Its assignments stay in place.
func (h *ClinicDayHandler) DeleteClinicDay(c *gin.Context) {
	if !h.Store.RemoveClinicDay(c.Param("id")) {
		utils.NotFound(c, "Clinic day not found")
		return
	}
	utils.Success(c, "Clinic day deleted successfully", nil)
}

// GetStatuses returns occupancy for every (shift, role) pair of the day.
func (h *ClinicDayHandler) GetStatuses(c *gin.Context) {
	st := h.Store.State()
	day, ok := lookupDay(c, &st)
	if !ok {
		return
	}
	utils.Success(c, "Statuses fetched successfully", capacity.AllStatuses(&st, day.ID))
}

// GetUnderstaffed returns the roles of a shift filled below half capacity.
func (h *ClinicDayHandler) GetUnderstaffed(c *gin.Context) {
	st := h.Store.State()
	day, ok := lookupDay(c, &st)
	if !ok {
		return
	}
	shiftID, ok := requireShift(c, &st)
	if !ok {
		return
	}
	utils.Success(c, "Understaffed roles fetched successfully", capacity.UnderstaffedRoles(&st, day.ID, shiftID))
}

// GetUnassigned returns participants not yet covering every shift of the day.
func (h *ClinicDayHandler) GetUnassigned(c *gin.Context) {
	st := h.Store.State()
	day, ok := lookupDay(c, &st)
	if !ok {
		return
	}
	utils.Success(c, "Unassigned participants fetched successfully", capacity.UnassignedParticipants(&st, day.ID))
}

// GetCapacity returns the projected patient capacity of the day.
func (h *ClinicDayHandler) GetCapacity(c *gin.Context) {
	st := h.Store.State()
	day, ok := lookupDay(c, &st)
	if !ok {
		return
	}
	utils.Success(c, "Capacity fetched successfully", CapacityResponse{
		DayCapacity:        capacity.ProjectDayCapacity(&st, day.ID),
		RecommendedTickets: capacity.RecommendedTickets(&st, day.ID),
		TicketsIssued:      day.TicketsIssued,
	})
}

// GetRecommendedTickets returns how many patient tickets to hand out.
func (h *ClinicDayHandler) GetRecommendedTickets(c *gin.Context) {
	st := h.Store.State()
	day, ok := lookupDay(c, &st)
	if !ok {
		return
	}
	utils.Success(c, "Recommended tickets fetched successfully", gin.H{
		"clinicDayId":        day.ID,
		"recommendedTickets": capacity.RecommendedTickets(&st, day.ID),
	})
}

// GetShiftParticipants lists who works a shift of the day.
func (h *ClinicDayHandler) GetShiftParticipants(c *gin.Context) {
	st := h.Store.State()
	day, ok := lookupDay(c, &st)
	if !ok {
		return
	}
	shiftID, ok := requireShift(c, &st)
	if !ok {
		return
	}
	utils.Success(c, "Shift participants fetched successfully", h.Store.ParticipantsForShift(day.ID, shiftID))
}

// GetMyAssignments lists the caller's assignments on the day.
func (h *ClinicDayHandler) GetMyAssignments(c *gin.Context) {
	st := h.Store.State()
	day, ok := lookupDay(c, &st)
	if !ok {
		return
	}
	utils.Success(c, "Assignments fetched successfully", h.Store.MyAssignmentsForDay(sessionFrom(c), day.ID))
}

func requireShift(c *gin.Context, st *models.State) (string, bool) {
	shiftID := c.Query("shift")
	if shiftID == "" {
		utils.BadRequest(c, "shift query parameter is required")
		return "", false
	}
	if _, ok := st.Shift(shiftID); !ok {
		utils.BadRequest(c, "Unknown shift")
		return "", false
	}
	return shiftID, true
}
