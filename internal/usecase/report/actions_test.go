package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

func TestWriteActions(t *testing.T) {
	m := entities.NewMeeting("user-1", "Weekly mentoring", "a.mp3")
	m.ProcessingStatus = entities.ProcessingStatusCompleted
	m.Confidence = 0.89
	m.Insights = &entities.MeetingInsights{AdviceGiven: []entities.AdviceItem{{Title: "Protect Calendar Time"}}}

	due := time.Date(2030, 3, 17, 0, 0, 0, 0, time.UTC)
	notes := "started Monday"
	actions := []*entities.Action{
		entities.NewActionFromItem(m, entities.ActionItem{
			Title: "Set up weekly focus blocks", Category: "skills", Priority: entities.LevelHigh,
			Complexity: entities.LevelMedium, EstimatedTime: 60, DueDate: due,
			SuccessProbability: 0.85, MotivationLevel: 0.8, Barriers: []string{"meetings", "urgent requests"},
		}),
	}
	actions[0].ImplementationNotes = &notes

	var buf bytes.Buffer
	if err := WriteActions(&buf, m, actions); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 2 || sheets[0] != actionsSheet {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	rows, err := f.GetRows(actionsSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one action, got %d rows", len(rows))
	}
	row := rows[1]
	if row[0] != "Set up weekly focus blocks" || row[3] != "high" || row[6] != "2030-03-17" {
		t.Fatalf("unexpected action row %v", row)
	}
	if row[9] != "meetings; urgent requests" || row[12] != notes {
		t.Fatalf("barriers or notes missing: %v", row)
	}

	title, err := f.GetCellValue(meetingSheet, "B1")
	if err != nil || title != "Weekly mentoring" {
		t.Fatalf("unexpected meeting title %q %v", title, err)
	}
	advice, _ := f.GetCellValue(meetingSheet, "B11")
	if advice != "Protect Calendar Time" {
		t.Fatalf("expected advice row, got %q", advice)
	}
}

func TestFilename(t *testing.T) {
	m := entities.NewMeeting("u", "t", "a")
	if got := Filename(m); got != "meeting-"+m.ID.String()+"-actions.xlsx" {
		t.Fatalf("unexpected filename %q", got)
	}
}
