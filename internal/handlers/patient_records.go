package handlers

import (
	"github.com/gin-gonic/gin"

	"mission-clinic-server/internal/models"
	"mission-clinic-server/internal/store"
	"mission-clinic-server/internal/utils"
)

// PatientRecordHandler handles patient visit records.
type PatientRecordHandler struct {
	Store *store.Store
}

// NewPatientRecordHandler creates a new PatientRecordHandler.
func NewPatientRecordHandler(s *store.Store) *PatientRecordHandler {
	return &PatientRecordHandler{Store: s}
}

// PatientRecordRequest represents the request body for creating or updating a record.
type PatientRecordRequest struct {
	PatientName string              `json:"patientName" binding:"required"`
	ClinicDayID string              `json:"clinicDayId" binding:"required"`
	Medications []models.Medication `json:"medications" binding:"dive"`
	FollowUp    string              `json:"followUp"`
	Comments    string              `json:"comments"`
}

// GetPatientRecords lists records, optionally filtered by ?clinicDayId=.
func (h *PatientRecordHandler) GetPatientRecords(c *gin.Context) {
	utils.Success(c, "Patient records fetched successfully", h.Store.PatientRecordsForDay(c.Query("clinicDayId")))
}

// CreatePatientRecord stores a visit. Linked medications are taken from stock.
func (h *PatientRecordHandler) CreatePatientRecord(c *gin.Context) {
	var req PatientRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !h.validReferences(c, req) {
		return
	}

	record, ok := h.Store.AddPatientRecord(sessionFrom(c), models.PatientRecord{
		PatientName: req.PatientName,
		ClinicDayID: req.ClinicDayID,
		Medications: req.Medications,
		FollowUp:    req.FollowUp,
		Comments:    req.Comments,
	})
	if !ok {
		utils.Unauthorized(c, "Participant for this session no longer exists")
		return
	}
	utils.Created(c, "Patient record created successfully", record)
}

// UpdatePatientRecord replaces a record's clinical details. Author and creation
// time are kept.
func (h *PatientRecordHandler) UpdatePatientRecord(c *gin.Context) {
	var existing *models.PatientRecord
	for _, rec := range h.Store.PatientRecordsForDay("") {
		if rec.ID == c.Param("id") {
			existing = &rec
			break
		}
	}
	if existing == nil {
		utils.NotFound(c, "Patient record not found")
		return
	}

	var req PatientRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !h.validReferences(c, req) {
		return
	}

	existing.PatientName = req.PatientName
	existing.ClinicDayID = req.ClinicDayID
	existing.FollowUp = req.FollowUp
	existing.Comments = req.Comments
	existing.Medications = keepDeducted(existing.Medications, req.Medications)

	record, ok := h.Store.UpdatePatientRecord(*existing)
	if !ok {
		utils.NotFound(c, "Patient record not found")
		return
	}
	utils.Success(c, "Patient record updated successfully", record)
}

func (h *PatientRecordHandler) validReferences(c *gin.Context, req PatientRecordRequest) bool {
	st := h.Store.State()
	if _, ok := st.ClinicDay(req.ClinicDayID); !ok {
		utils.BadRequest(c, "Unknown clinic day")
		return false
	}
	for _, med := range req.Medications {
		if med.PharmacyItemID == "" {
			continue
		}
		found := false
		for _, item := range st.PharmacyItems {
			if item.ID == med.PharmacyItemID {
				found = true
				break
			}
		}
		if !found {
			utils.BadRequest(c, "Unknown pharmacy item: "+med.PharmacyItemID)
			return false
		}
	}
	return true
}

// keepDeducted carries the deducted flag over from the stored medications so an
// edit does not take the same item from stock twice.
func keepDeducted(stored, incoming []models.Medication) []models.Medication {
	deducted := map[string]int{}
	for _, med := range stored {
		if med.Deducted && med.PharmacyItemID != "" {
			deducted[med.PharmacyItemID]++
		}
	}
	out := make([]models.Medication, len(incoming))
	for i, med := range incoming {
		med.Deducted = false
		if med.PharmacyItemID != "" && deducted[med.PharmacyItemID] > 0 {
			med.Deducted = true
			deducted[med.PharmacyItemID]--
		}
		out[i] = med
	}
	return out
}
