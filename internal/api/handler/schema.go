package handler

import (
	"time"

	"github.com/thynetwork/timeclock/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// loginRequest accepts either email or username as the login.
type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

type changePINRequest struct {
	Password string `json:"password" validate:"required,min=4"`
}

// --- Clock ---

// clockRequest carries a clock action. Message and Questions only apply to OUT.
type clockRequest struct {
	Type      string   `json:"type"`
	Message   string   `json:"message"   validate:"max=2000"`
	Questions []string `json:"questions"`
}

type clockResponse struct {
	Event     domain.ClockEvent `json:"event"`
	Message   *domain.Message   `json:"message,omitempty"`
	Questions []domain.Question `json:"questions,omitempty"`
}

type partialWriteResponse struct {
	Error string            `json:"error"`
	Event domain.ClockEvent `json:"event"`
}

type statusResponse struct {
	Status      domain.Status      `json:"status"`
	LastEvent   *domain.ClockEvent `json:"last_event"`
	AllowedNext []domain.EventKind `json:"allowed_next"`
}

type activityMessage struct {
	Content string `json:"content"`
}

type activityItemResponse struct {
	ID        string           `json:"id"`
	Type      domain.EventKind `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Message   *activityMessage `json:"message"`
}

// --- Questions ---

type answerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer"      validate:"required"`
}

// answerBatchResponse reports every entry. Invalid holds request positions of
// entries without a question id or answer; they are skipped.
type answerBatchResponse struct {
	Answered []string `json:"answered"`
	NotFound []string `json:"not_found"`
	Failed   []string `json:"failed,omitempty"`
	Invalid  []int    `json:"invalid,omitempty"`
}

type acknowledgeResponse struct {
	Acknowledged int `json:"acknowledged"`
}

// --- Feeds ---

type adminFeedResponse struct {
	Items  []domain.AdminNotification `json:"items"`
	Unread int                        `json:"unread"`
}

type employeeFeedResponse struct {
	Items  []domain.EmployeeNotification `json:"items"`
	Unread int                           `json:"unread"`
}

// --- Users ---

type createEmployeeRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username" validate:"required,min=3"`
	Email     string `json:"email"    validate:"required,email"`
	Password  string `json:"password" validate:"required,min=4"`
}

type employeeResponse struct {
	domain.User
	LastEvent *domain.ClockEvent `json:"last_event"`
	Status    domain.Status      `json:"status"`
}

// --- Quote ---

type quoteRequest struct {
	Quote  string `json:"quote"  validate:"required,max=500"`
	Author string `json:"author" validate:"max=120"`
	Date   string `json:"date"   validate:"required"`
}
