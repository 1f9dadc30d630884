package ports

import (
	"context"

	"github.com/thynetwork/timeclock/internal/core/domain"
)

// AnswerInput is a single entry of an answer batch.
type AnswerInput struct {
	QuestionID string
	Answer     string
}

// AnswerBatchResult reports the per-entry outcome of SubmitAnswers.
type AnswerBatchResult struct {
	Answered []string
	NotFound []string
	Failed   []string
}

// QuestionService covers the answer workflow and both read channels.
type QuestionService interface {
	SubmitAnswers(ctx context.Context, batch []AnswerInput) (*AnswerBatchResult, error)
	MarkMessageRead(ctx context.Context, messageID string) error
	MarkQuestionReadByUser(ctx context.Context, caller domain.Principal, questionID string) error
	// AcknowledgeAnswers marks every unread answered question of userID as read
	// and returns how many were updated.
	AcknowledgeAnswers(ctx context.Context, userID string) (int, error)
}

// NotificationService builds the per-audience feeds. It never mutates state.
type NotificationService interface {
	ListAdminNotifications(ctx context.Context) ([]domain.AdminNotification, error)
	ListEmployeeNotifications(ctx context.Context, userID string) ([]domain.EmployeeNotification, error)
}

// DashboardService computes fleet-wide counters.
type DashboardService interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
}
