package domain

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestNewMessageNotification_UnreadSignals(t *testing.T) {
	now := time.Now()
	answered := Question{ID: "q1", Answer: strPtr("yes")}
	pending := Question{ID: "q2"}

	cases := []struct {
		name       string
		isRead     bool
		questions  []Question
		wantUnread bool
		wantOpen   int
	}{
		{"unread envelope, no questions", false, nil, true, 0},
		{"read envelope, no questions", true, nil, false, 0},
		{"read envelope, open question", true, []Question{answered, pending}, true, 1},
		{"read envelope, all answered", true, []Question{answered}, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := Message{ID: "m1", UserID: "u1", Content: "done", IsRead: tc.isRead, CreatedAt: now}
			n := NewMessageNotification(msg, tc.questions, "alice")

			if n.Kind != NotificationClockOutMessage {
				t.Fatalf("unexpected kind %q", n.Kind)
			}
			if n.Unread != tc.wantUnread {
				t.Errorf("expected unread=%v, got %v", tc.wantUnread, n.Unread)
			}
			if n.Thread.OpenQuestionCount != tc.wantOpen {
				t.Errorf("expected open=%d, got %d", tc.wantOpen, n.Thread.OpenQuestionCount)
			}
			if n.Thread.Message.IsRead != tc.isRead {
				t.Error("envelope flag must be exposed unchanged")
			}
			if n.Thread.Questions == nil {
				t.Error("questions must never be nil")
			}
		})
	}
}

func TestNewClockInNotification_AlwaysRead(t *testing.T) {
	ev := ClockEvent{ID: "e1", UserID: "u1", Type: KindIn, Timestamp: time.Now()}
	n := NewClockInNotification(ev, "bob")

	if n.Unread {
		t.Error("clock-in entries must never be unread")
	}
	if n.Content != ClockInNotice {
		t.Errorf("unexpected content %q", n.Content)
	}
	if n.ID != "evt-e1" || n.Owner != "bob" {
		t.Errorf("unexpected id/owner: %s %s", n.ID, n.Owner)
	}
}

func TestSortNewestFirst_StableOnTies(t *testing.T) {
	base := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	entries := []AdminNotification{
		{ID: "a", Timestamp: base},
		{ID: "b", Timestamp: base.Add(time.Hour)},
		{ID: "c", Timestamp: base},
		{ID: "d", Timestamp: base.Add(2 * time.Hour)},
	}

	SortNewestFirst(entries)

	want := []string{"d", "b", "a", "c"}
	for i, id := range want {
		if entries[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, entries[i].ID)
		}
	}
}

func TestOpenQuestionCount(t *testing.T) {
	qs := []Question{{}, {Answer: strPtr("")}, {}}
	if got := OpenQuestionCount(qs); got != 2 {
		t.Errorf("expected 2 open questions, got %d", got)
	}
}

func TestSortAnswersNewestFirst(t *testing.T) {
	at := time.Date(2024, 3, 4, 17, 0, 0, 0, time.UTC)
	entries := []EmployeeNotification{
		{Question: Question{ID: "a", CreatedAt: at.Add(-time.Hour)}},
		{Question: Question{ID: "b", CreatedAt: at, Seq: 0}},
		{Question: Question{ID: "c", CreatedAt: at.Add(time.Hour)}},
		{Question: Question{ID: "d", CreatedAt: at, Seq: 2}},
	}

	SortAnswersNewestFirst(entries)

	got := ""
	for _, e := range entries {
		got += e.Question.ID
	}
	if got != "cdba" {
		t.Errorf("expected order cdba, got %s", got)
	}
}
