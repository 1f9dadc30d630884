package domain

import (
	"sort"
	"time"
)

// NotificationKind tags the variant carried by an AdminNotification.
type NotificationKind string

const (
	NotificationClockIn         NotificationKind = "CLOCK_IN"
	NotificationClockOutMessage NotificationKind = "CLOCK_OUT_MESSAGE"
)

// ClockInNotice is the fixed payload of CLOCK_IN entries.
const ClockInNotice = "Clocked in for the day."

// MessageThread is a clock-out message together with its questions.
type MessageThread struct {
	Message           Message    `json:"message"`
	Questions         []Question `json:"questions"`
	OpenQuestionCount int        `json:"open_question_count"`
}

// AdminNotification is one entry of the admin feed. Exactly one of ClockIn and
// Thread is set, matching Kind.
type AdminNotification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"type"`
	OwnerID   string           `json:"owner_id"`
	Owner     string           `json:"owner"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Unread    bool             `json:"unread"`

	ClockIn *ClockEvent    `json:"clock_in,omitempty"`
	Thread  *MessageThread `json:"thread,omitempty"`
}

// NewClockInNotification projects an IN event. Clock-ins are never unread.
func NewClockInNotification(ev ClockEvent, owner string) AdminNotification {
	e := ev
	return AdminNotification{
		ID:        "evt-" + ev.ID,
		Kind:      NotificationClockIn,
		OwnerID:   ev.UserID,
		Owner:     owner,
		Content:   ClockInNotice,
		Timestamp: ev.Timestamp,
		ClockIn:   &e,
	}
}

// NewMessageNotification projects a clock-out message. The entry needs
// attention while the envelope is unread or any question is still open.
func NewMessageNotification(msg Message, questions []Question, owner string) AdminNotification {
	open := OpenQuestionCount(questions)
	if questions == nil {
		questions = []Question{}
	}
	return AdminNotification{
		ID:        "msg-" + msg.ID,
		Kind:      NotificationClockOutMessage,
		OwnerID:   msg.UserID,
		Owner:     owner,
		Content:   msg.Content,
		Timestamp: msg.CreatedAt,
		Unread:    !msg.IsRead || open > 0,
		Thread: &MessageThread{
			Message:           msg,
			Questions:         questions,
			OpenQuestionCount: open,
		},
	}
}

// SortKey is the timestamp used to order the feed.
func (n AdminNotification) SortKey() time.Time {
	return n.Timestamp
}

// SortNewestFirst orders entries by SortKey descending, keeping input order on ties.
func SortNewestFirst(entries []AdminNotification) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SortKey().After(entries[j].SortKey())
	})
}

// EmployeeNotification is an answered question shown to the employee who asked it.
type EmployeeNotification struct {
	Question Question `json:"question"`
	Unread   bool     `json:"unread"`
}

// NewEmployeeNotification wraps an answered question.
func NewEmployeeNotification(q Question) EmployeeNotification {
	return EmployeeNotification{Question: q, Unread: !q.IsReadByUser}
}

// SortAnswersNewestFirst orders entries by question creation time, newest
// first. Questions of one clock-out share a timestamp and fall back to their
// position, later first.
func SortAnswersNewestFirst(entries []EmployeeNotification) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Question, entries[j].Question
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.Seq > b.Seq
	})
}

// DashboardStats are the fleet-wide counters for the admin landing view.
type DashboardStats struct {
	ActiveUsers    int   `json:"active_users"`
	OnBreak        int   `json:"on_break"`
	ClockedInToday int64 `json:"clocked_in_today"`
}

// QuoteOfTheDay is an admin-curated quote keyed by calendar day.
type QuoteOfTheDay struct {
	ID        string    `json:"id" bson:"_id"`
	Date      time.Time `json:"date" bson:"date"`
	Quote     string    `json:"quote" bson:"quote"`
	Author    string    `json:"author" bson:"author"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
