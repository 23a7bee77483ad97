package handlers

import (
	"github.com/gin-gonic/gin"

	"mission-clinic-server/internal/capacity"
	"mission-clinic-server/internal/models"
	"mission-clinic-server/internal/store"
	"mission-clinic-server/internal/utils"
)

// FlowRateHandler handles flow rates, shift actuals and capacity overrides.
type FlowRateHandler struct {
	Store *store.Store
}

// NewFlowRateHandler creates a new FlowRateHandler.
func NewFlowRateHandler(s *store.Store) *FlowRateHandler {
	return &FlowRateHandler{Store: s}
}

// FlowRateRequest sets a role's flow rate by hand.
type FlowRateRequest struct {
	Rate   float64               `json:"rate" binding:"gt=0"`
	Source models.FlowRateSource `json:"source" binding:"omitempty,oneof=historical actual"`
}

// ShiftActualsRequest carries the staffing/attendance save for a shift.
type ShiftActualsRequest struct {
	Entries []models.ShiftActuals `json:"entries" binding:"required,min=1,dive"`
}

// RoleFlowRate is the effective rate of one role.
type RoleFlowRate struct {
	RoleID string                `json:"roleId"`
	Rate   float64               `json:"rate"`
	Source models.FlowRateSource `json:"source,omitempty"`
}

// GetFlowRates returns the effective rate of every role.
func (h *FlowRateHandler) GetFlowRates(c *gin.Context) {
	st := h.Store.State()
	rates := make([]RoleFlowRate, 0, len(st.Roles))
	for _, role := range st.Roles {
		rates = append(rates, RoleFlowRate{
			RoleID: role.ID,
			Rate:   capacity.CurrentFlowRate(&st, role.ID),
			Source: st.FlowRates[role.ID].Source,
		})
	}
	utils.Success(c, "Flow rates fetched successfully", rates)
}

// UpdateFlowRate overrides a role's live flow rate (admin).
func (h *FlowRateHandler) UpdateFlowRate(c *gin.Context) {
	roleID := c.Param("roleId")
	if !knownRole(h.Store, roleID) {
		utils.NotFound(c, "Role not found")
		return
	}

	var req FlowRateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.Source == "" {
		req.Source = models.SourceHistorical
	}

	fr := h.Store.UpdateFlowRate(models.FlowRate{RoleID: roleID, Rate: req.Rate, Source: req.Source})
	utils.Success(c, "Flow rate updated successfully", fr)
}

// RecordShiftActuals saves what each role achieved in a shift and feeds the
// results back into the flow rates.
func (h *FlowRateHandler) RecordShiftActuals(c *gin.Context) {
	var req ShiftActualsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	st := h.Store.State()
	for _, e := range req.Entries {
		if _, ok := st.ClinicDay(e.ClinicDayID); !ok {
			utils.BadRequest(c, "Unknown clinic day: "+e.ClinicDayID)
			return
		}
		if _, ok := st.Shift(e.ShiftID); !ok {
			utils.BadRequest(c, "Unknown shift: "+e.ShiftID)
			return
		}
		if _, ok := st.Role(e.RoleID); !ok {
			utils.BadRequest(c, "Unknown role: "+e.RoleID)
			return
		}
	}

	recorded := h.Store.RecordShiftActuals(req.Entries)
	utils.Created(c, "Shift actuals recorded successfully", recorded)
}

// UpdateRoleCapacity overrides a role's capacity for one shift of one day (admin).
func (h *FlowRateHandler) UpdateRoleCapacity(c *gin.Context) {
	var req models.RoleCapacity
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

	h.Store.UpdateRoleCapacity(req)
	utils.Success(c, "Role capacity updated successfully", req)
}
