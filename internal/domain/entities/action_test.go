package entities

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewActionFromItem_FitsColumns(t *testing.T) {
	m := NewMeeting("user-1", "Weekly mentoring", "a.mp3")
	item := ActionItem{
		Title:    strings.Repeat("é", 300),
		Category: strings.Repeat("skills ", 20),
		Priority: LevelHigh,
	}

	a := NewActionFromItem(m, item)
	if n := utf8.RuneCountInString(a.Title); n != MaxActionTitleLen {
		t.Fatalf("title has %d runes, want %d", n, MaxActionTitleLen)
	}
	if n := utf8.RuneCountInString(a.Category); n != MaxActionCategoryLen {
		t.Fatalf("category has %d runes, want %d", n, MaxActionCategoryLen)
	}
	if a.UserID != "user-1" || a.MeetingID != m.ID || a.Status != ActionStatusPending {
		t.Fatalf("ownership not carried over: %+v", a)
	}
}

func TestActionStatus_ForwardOnly(t *testing.T) {
	tests := []struct {
		from, to ActionStatus
		want     bool
	}{
		{ActionStatusPending, ActionStatusInProgress, true},
		{ActionStatusPending, ActionStatusCompleted, true},
		{ActionStatusCompleted, ActionStatusInProgress, false},
		{ActionStatusInProgress, "archived", false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: want %v got %v", tt.from, tt.to, tt.want, got)
		}
	}
}
