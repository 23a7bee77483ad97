// Package report renders the staffing workbook a coordinator prints before a clinic day.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"mission-clinic-server/internal/capacity"
	"mission-clinic-server/internal/models"
)

const (
	SheetStaffing   = "Staffing"
	SheetCapacity   = "Capacity"
	SheetUnassigned = "Unassigned"
)

var (
	staffingHeader   = []string{"Shift", "Role", "Category", "Assigned", "Capacity", "Status", "Attended", "Participants"}
	capacityHeader   = []string{"Shift", "Role", "Staff", "Flow Rate", "Projected Patients"}
	unassignedHeader = []string{"Name", "Email", "Primary Role", "Shifts Assigned"}
)

var colorFills = map[capacity.Color]string{
	capacity.Green:  "#C6EFCE",
	capacity.Yellow: "#FFEB9C",
	capacity.Red:    "#FFC7CE",
}

// workbook wraps an excelize file with the shared header style.
type workbook struct {
	f           *excelize.File
	headerStyle int
	fillStyles  map[capacity.Color]int
}

// StaffingWorkbook builds the xlsx report for one clinic day.
func StaffingWorkbook(state *models.State, clinicDayID string) ([]byte, error) {
	day, ok := state.ClinicDay(clinicDayID)
	if !ok {
		return nil, fmt.Errorf("clinic day %q not found", clinicDayID)
	}

	wb, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer wb.f.Close()

	if err := wb.writeStaffing(state, day); err != nil {
		return nil, err
	}
	if err := wb.writeCapacity(state, day); err != nil {
		return nil, err
	}
	if err := wb.writeUnassigned(state, day); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := wb.f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	// The default sheet is renamed rather than deleted so the workbook always has one.
	if err := f.SetSheetName("Sheet1", SheetStaffing); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetCapacity, SheetUnassigned} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	wb := &workbook{f: f, headerStyle: headerStyle, fillStyles: map[capacity.Color]int{}}
	for color, fill := range colorFills {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
		})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create %s style: %w", color, err)
		}
		wb.fillStyles[color] = style
	}
	return wb, nil
}

func (wb *workbook) writeHeader(sheet string, headers []string, widths []float64) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := wb.f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := wb.f.SetCellStyle(sheet, cell, cell, wb.headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
		if i < len(widths) {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return fmt.Errorf("failed to convert column number: %w", err)
			}
			if err := wb.f.SetColWidth(sheet, col, col, widths[i]); err != nil {
				return fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}
	return nil
}

func (wb *workbook) writeRow(sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := wb.f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func (wb *workbook) writeStaffing(state *models.State, day models.ClinicDay) error {
	if err := wb.writeHeader(SheetStaffing, staffingHeader, []float64{22, 16, 10, 10, 10, 10, 10, 50}); err != nil {
		return err
	}

	row := 2
	for _, status := range capacity.AllStatuses(state, day.ID) {
		shift, _ := state.Shift(status.ShiftID)
		role, _ := state.Role(status.RoleID)

		names := make([]string, 0, len(status.Participants))
		for _, p := range status.Participants {
			names = append(names, p.Name)
		}
		color := capacity.StaffingColor(status.CurrentCount, status.Capacity)

		if err := wb.writeRow(SheetStaffing, row,
			shiftLabel(shift), role.Name, string(role.Category),
			status.CurrentCount, status.Capacity, string(color),
			attendedCount(state, status), strings.Join(names, ", "),
		); err != nil {
			return err
		}
		cell, _ := excelize.CoordinatesToCellName(6, row)
		if err := wb.f.SetCellStyle(SheetStaffing, cell, cell, wb.fillStyles[color]); err != nil {
			return fmt.Errorf("failed to set status style: %w", err)
		}
		row++
	}
	return nil
}

func (wb *workbook) writeCapacity(state *models.State, day models.ClinicDay) error {
	if err := wb.writeHeader(SheetCapacity, capacityHeader, []float64{22, 16, 8, 10, 18}); err != nil {
		return err
	}

	row := 2
	for _, shift := range state.Shifts {
		for _, role := range state.Roles {
			if !role.IsClinical() {
				continue
			}
			pc := capacity.ProjectPatientCapacity(state, day.ID, shift.ID, role.ID)
			if err := wb.writeRow(SheetCapacity, row,
				shiftLabel(shift), role.Name, pc.StaffCount, pc.FlowRate, pc.ProjectedPatients,
			); err != nil {
				return err
			}
			row++
		}
	}

	total := capacity.ProjectDayCapacity(state, day.ID).Total
	row++
	if err := wb.writeRow(SheetCapacity, row, "Total projected", "", "", "", total); err != nil {
		return err
	}
	row++
	if err := wb.writeRow(SheetCapacity, row, "Recommended tickets", "", "", "", capacity.RecommendedTickets(state, day.ID)); err != nil {
		return err
	}
	row++
	return wb.writeRow(SheetCapacity, row, "Tickets issued", "", "", "", day.TicketsIssued)
}

func (wb *workbook) writeUnassigned(state *models.State, day models.ClinicDay) error {
	if err := wb.writeHeader(SheetUnassigned, unassignedHeader, []float64{24, 30, 16, 16}); err != nil {
		return err
	}

	row := 2
	for _, load := range capacity.UnassignedParticipants(state, day.ID) {
		p := load.Participant
		if err := wb.writeRow(SheetUnassigned, row, p.Name, p.Email, p.PrimaryRole, load.ShiftsAssigned); err != nil {
			return err
		}
		row++
	}
	return nil
}

func shiftLabel(s models.Shift) string {
	return fmt.Sprintf("%s (%s-%s)", s.Name, s.StartTime, s.EndTime)
}

func attendedCount(state *models.State, status capacity.Status) int {
	n := 0
	for _, a := range state.Assignments {
		if a.Matches(status.ClinicDayID, status.ShiftID, status.RoleID) && a.Attended != nil && *a.Attended {
			n++
		}
	}
	return n
}
