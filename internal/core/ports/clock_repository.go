package ports

import (
	"context"
	"time"

	"github.com/thynetwork/timeclock/internal/core/domain"
)

// ClockEventRepository is the append-only event store.
type ClockEventRepository interface {
	Create(ctx context.Context, ev *domain.ClockEvent) error
	// Latest returns the most recent event of the user, or nil when there is none.
	Latest(ctx context.Context, userID string) (*domain.ClockEvent, error)
	// LatestPerUser reduces the events of the given users to the latest one each.
	// Users without events are absent from the result.
	LatestPerUser(ctx context.Context, userIDs []string) (map[string]domain.ClockEvent, error)
	// ListByKindSince returns events of kind with timestamp >= since, newest first.
	ListByKindSince(ctx context.Context, kind domain.EventKind, since time.Time) ([]domain.ClockEvent, error)
	CountByKindSince(ctx context.Context, kind domain.EventKind, since time.Time) (int64, error)
	// ListByUserBetween returns the user's events in [from, to], newest first.
	ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.ClockEvent, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// MessageRepository stores clock-out messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	FindByID(ctx context.Context, id string) (*domain.Message, error)
	// ListAll returns every message, newest first.
	ListAll(ctx context.Context) ([]domain.Message, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Message, error)
	ListByClockEventIDs(ctx context.Context, eventIDs []string) ([]domain.Message, error)
	// MarkRead returns domain.ErrMessageNotFound for an unknown id.
	MarkRead(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// QuestionRepository stores questions attached to messages.
type QuestionRepository interface {
	// CreateMany inserts questions preserving slice order.
	CreateMany(ctx context.Context, questions []domain.Question) error
	FindByID(ctx context.Context, id string) (*domain.Question, error)
	// ListByMessageIDs returns questions in creation order.
	ListByMessageIDs(ctx context.Context, messageIDs []string) ([]domain.Question, error)
	// ListAnsweredByMessageIDs returns answered questions, newest first.
	ListAnsweredByMessageIDs(ctx context.Context, messageIDs []string) ([]domain.Question, error)
	// SetAnswer stores the answer and resets IsReadByUser.
	// Returns domain.ErrQuestionNotFound for an unknown id.
	SetAnswer(ctx context.Context, id, answer string) error
	// MarkReadByUser returns domain.ErrQuestionNotFound for an unknown id.
	MarkReadByUser(ctx context.Context, id string) error
	DeleteByMessageIDs(ctx context.Context, messageIDs []string) error
}

// QuoteRepository stores the quote of the day.
type QuoteRepository interface {
	// Upsert replaces the quote stored for q.Date.
	Upsert(ctx context.Context, q *domain.QuoteOfTheDay) (*domain.QuoteOfTheDay, error)
	FindByDate(ctx context.Context, date time.Time) (*domain.QuoteOfTheDay, error)
}

// Transactor runs fn so that every repository call made with the ctx passed
// to fn commits or rolls back together. Atomic reports whether that guarantee
// holds; when false fn runs without a transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Atomic() bool
}

// KeyedSerializer runs fn with mutual exclusion per key.
type KeyedSerializer interface {
	Do(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
