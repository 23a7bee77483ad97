package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mission-clinic-server/internal/catalog"
	"mission-clinic-server/internal/models"
	"mission-clinic-server/internal/report"
	"mission-clinic-server/internal/store"
	"mission-clinic-server/internal/utils"
)

// maxSnapshotBytes bounds an uploaded backup file.
const maxSnapshotBytes = 20 << 20

// SnapshotHandler handles backup export/import, the catalog and the staffing report.
type SnapshotHandler struct {
	Store  *store.Store
	Logger *zap.Logger
	now    func() time.Time
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(s *store.Store, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{Store: s, Logger: logger, now: time.Now}
}

// BackupFilename names an export taken at t.
func BackupFilename(t time.Time) string {
	return fmt.Sprintf("mission-clinic-backup-%s.json", t.Format("2006-01-02"))
}

// ExportSnapshot downloads the whole state as a JSON backup.
func (h *SnapshotHandler) ExportSnapshot(c *gin.Context) {
	snap := h.Store.Snapshot(sessionFrom(c))

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, BackupFilename(h.now())))
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	if err := models.EncodeSnapshot(c.Writer, snap); err != nil {
		h.Logger.Error("failed to write snapshot", zap.Error(err))
	}
}

// ImportSnapshot replaces the whole state from an uploaded backup (admin).
// The body is either the raw JSON document or a multipart form with a "file" field.
func (h *SnapshotHandler) ImportSnapshot(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSnapshotBytes)

	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.BadRequest(c, "Missing backup file: "+err.Error())
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			utils.BadRequest(c, "Failed to open uploaded file: "+err.Error())
			return
		}
		defer file.Close()
		body = file
	}

	snap, err := models.DecodeSnapshot(body)
	if err != nil {
		h.Logger.Warn("snapshot import rejected", zap.Error(err))
		utils.BadRequest(c, "invalid format")
		return
	}

	h.Store.ReplaceState(snap)
	st := h.Store.State()
	utils.Success(c, "Snapshot imported successfully", gin.H{
		"participants": len(st.Participants),
		"clinicDays":   len(st.ClinicDays),
		"assignments":  len(st.Assignments),
	})
}

// GetCatalog returns the built-in roles and shifts.
func (h *SnapshotHandler) GetCatalog(c *gin.Context) {
	utils.Success(c, "Catalog fetched successfully", gin.H{
		"roles":  catalog.Roles(),
		"shifts": catalog.Shifts(),
	})
}

// DownloadReport renders the staffing workbook of a clinic day.
func (h *SnapshotHandler) DownloadReport(c *gin.Context) {
	st := h.Store.State()
	day, ok := lookupDay(c, &st)
	if !ok {
		return
	}

	data, err := report.StaffingWorkbook(&st, day.ID)
	if err != nil {
		h.Logger.Error("failed to build staffing report", zap.String("clinic_day_id", day.ID), zap.Error(err))
		utils.InternalServerError(c, "Failed to build report: "+err.Error())
		return
	}

	filename := fmt.Sprintf("staffing-%s.xlsx", day.Date)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
