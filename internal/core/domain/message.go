package domain

import "time"

// PlaceholderSummary is stored when an employee asks questions without a summary.
const PlaceholderSummary = "No summary provided."

// Message is the clock-out summary attached to an OUT event.
// IsRead is the admin's envelope flag and is independent of question state.
type Message struct {
	ID           string    `json:"id" bson:"_id"`
	ClockEventID string    `json:"clock_event_id" bson:"clock_event_id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	Content      string    `json:"content" bson:"content"`
	IsRead       bool      `json:"is_read" bson:"is_read"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// Question belongs to a Message. A nil Answer means the question is pending.
type Question struct {
	ID           string    `json:"id" bson:"_id"`
	MessageID    string    `json:"message_id" bson:"message_id"`
	Content      string    `json:"content" bson:"content"`
	Answer       *string   `json:"answer" bson:"answer"`
	IsReadByUser bool      `json:"is_read_by_user" bson:"is_read_by_user"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	// Seq is the position of the question within its message.
	Seq int `json:"-" bson:"seq"`
}

// Answered reports whether an administrator has resolved the question.
func (q Question) Answered() bool {
	return q.Answer != nil
}

// OpenQuestionCount counts the pending questions in qs.
func OpenQuestionCount(qs []Question) int {
	n := 0
	for _, q := range qs {
		if !q.Answered() {
			n++
		}
	}
	return n
}
