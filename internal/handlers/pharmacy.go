package handlers

import (
	"github.com/gin-gonic/gin"

	"mission-clinic-server/internal/models"
	"mission-clinic-server/internal/store"
	"mission-clinic-server/internal/utils"
)

// PharmacyHandler handles pharmacy stock.
type PharmacyHandler struct {
	Store *store.Store
}

// NewPharmacyHandler creates a new PharmacyHandler.
func NewPharmacyHandler(s *store.Store) *PharmacyHandler {
	return &PharmacyHandler{Store: s}
}

// PharmacyItemsRequest replaces or appends stock lines.
type PharmacyItemsRequest struct {
	Items []models.PharmacyItem `json:"items" binding:"required,min=1,dive"`
}

// GetPharmacyItems lists the pharmacy stock.
func (h *PharmacyHandler) GetPharmacyItems(c *gin.Context) {
	st := h.Store.State()
	utils.Success(c, "Pharmacy items fetched successfully", st.PharmacyItems)
}

// UpdatePharmacyItems replaces items by id, adding unknown ones.
func (h *PharmacyHandler) UpdatePharmacyItems(c *gin.Context) {
	var req PharmacyItemsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	utils.Success(c, "Pharmacy items updated successfully", h.Store.UpdatePharmacyItems(req.Items))
}
