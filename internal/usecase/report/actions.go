// Package report renders a processed meeting and its actions as XLSX.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

const (
	actionsSheet = "Actions"
	meetingSheet = "Meeting"
	dateLayout   = "2006-01-02"

	// ContentType is the media type of the rendered workbook
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var actionHeader = []interface{}{
	"Title", "Description", "Category", "Priority", "Complexity",
	"Estimated (min)", "Due", "Success probability", "Motivation",
	"Barriers", "Status", "Completed", "Notes",
}

// Filename is the attachment name used for a meeting export
func Filename(m *entities.Meeting) string {
	return fmt.Sprintf("meeting-%s-actions.xlsx", m.ID)
}

// Workbook builds a two-sheet workbook: the actions table and a meeting
// summary. The caller closes the returned file.
func Workbook(m *entities.Meeting, actions []*entities.Action) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", actionsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeActions(f, actions); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeMeeting(f, m, len(actions)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteActions renders the workbook to w
func WriteActions(w io.Writer, m *entities.Meeting, actions []*entities.Action) error {
	f, err := Workbook(m, actions)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeActions(f *excelize.File, actions []*entities.Action) error {
	if err := f.SetSheetRow(actionsSheet, "A1", &actionHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	if err := f.SetRowStyle(actionsSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, a := range actions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		completed := ""
		if a.CompletedAt != nil {
			completed = a.CompletedAt.Format(dateLayout)
		}
		notes := ""
		if a.ImplementationNotes != nil {
			notes = *a.ImplementationNotes
		}
		row := []interface{}{
			a.Title,
			a.Description,
			a.Category,
			string(a.Priority),
			string(a.Complexity),
			a.EstimatedTime,
			a.DueDate.Format(dateLayout),
			a.SuccessProbability,
			a.MotivationLevel,
			strings.Join(a.Barriers, "; "),
			string(a.Status),
			completed,
			notes,
		}
		if err := f.SetSheetRow(actionsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write action %s: %w", a.ID, err)
		}
	}

	if err := f.SetColWidth(actionsSheet, "A", "B", 40); err != nil {
		return err
	}
	return f.SetColWidth(actionsSheet, "C", "M", 16)
}

func writeMeeting(f *excelize.File, m *entities.Meeting, actionCount int) error {
	if _, err := f.NewSheet(meetingSheet); err != nil {
		return fmt.Errorf("failed to create meeting sheet: %w", err)
	}

	processed := ""
	if m.ProcessedAt != nil {
		processed = m.ProcessedAt.Format(dateLayout)
	}
	rows := [][]interface{}{
		{"Title", m.Title},
		{"Type", m.MeetingType},
		{"Participants", strings.Join(m.Participants, ", ")},
		{"Duration (min)", m.Duration},
		{"Status", string(m.ProcessingStatus)},
		{"Confidence", m.Confidence},
		{"Insights mode", string(m.InsightsMode)},
		{"Plan mode", string(m.PlanMode)},
		{"Processed", processed},
		{"Actions", actionCount},
	}
	if m.Insights != nil {
		for _, advice := range m.Insights.AdviceGiven {
			rows = append(rows, []interface{}{"Advice", advice.Title})
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(meetingSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write meeting row: %w", err)
		}
	}
	return f.SetColWidth(meetingSheet, "A", "B", 32)
}
