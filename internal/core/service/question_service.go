package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/thynetwork/timeclock/internal/core/domain"
	"github.com/thynetwork/timeclock/internal/core/ports"
)

type questionService struct {
	messages  ports.MessageRepository
	questions ports.QuestionRepository
	log       zerolog.Logger
}

// NewQuestionService returns a QuestionService implementation.
func NewQuestionService(messages ports.MessageRepository, questions ports.QuestionRepository, log zerolog.Logger) ports.QuestionService {
	return &questionService{messages: messages, questions: questions, log: log}
}

// SubmitAnswers applies each entry independently. Unknown question ids are
// reported in the result and do not stop the batch; other store failures are
// reported too and joined into the returned error.
func (s *questionService) SubmitAnswers(ctx context.Context, batch []ports.AnswerInput) (*ports.AnswerBatchResult, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("submit answers: %w: no answers provided", domain.ErrInvalidInput)
	}

	result := &ports.AnswerBatchResult{}
	var errs []error

	for _, entry := range batch {
		err := s.questions.SetAnswer(ctx, entry.QuestionID, entry.Answer)
		switch {
		case err == nil:
			result.Answered = append(result.Answered, entry.QuestionID)
		case errors.Is(err, domain.ErrQuestionNotFound):
			s.log.Warn().Str("question_id", entry.QuestionID).Msg("answer skipped, question not found")
			result.NotFound = append(result.NotFound, entry.QuestionID)
		default:
			s.log.Error().Err(err).Str("question_id", entry.QuestionID).Msg("answer failed")
			result.Failed = append(result.Failed, entry.QuestionID)
			errs = append(errs, fmt.Errorf("question %s: %w", entry.QuestionID, err))
		}
	}

	s.log.Info().
		Int("answered", len(result.Answered)).
		Int("not_found", len(result.NotFound)).
		Int("failed", len(result.Failed)).
		Msg("answers submitted")

	if len(errs) > 0 {
		return result, fmt.Errorf("submit answers: %w", errors.Join(errs...))
	}
	return result, nil
}

// MarkMessageRead sets the admin envelope flag. Calling it again is a no-op.
func (s *questionService) MarkMessageRead(ctx context.Context, messageID string) error {
	if err := s.messages.MarkRead(ctx, messageID); err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return nil
}

// MarkQuestionReadByUser acknowledges an answer. Only the employee who asked
// the question, or an administrator, may do so.
func (s *questionService) MarkQuestionReadByUser(ctx context.Context, caller domain.Principal, questionID string) error {
	q, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return fmt.Errorf("mark question read: %w", err)
	}

	if !caller.IsAdmin() {
		msg, err := s.messages.FindByID(ctx, q.MessageID)
		if err != nil {
			return fmt.Errorf("mark question read: %w", err)
		}
		if msg.UserID != caller.UserID {
			return fmt.Errorf("mark question read: %w", domain.ErrForbidden)
		}
	}

	if q.IsReadByUser {
		return nil
	}
	if err := s.questions.MarkReadByUser(ctx, questionID); err != nil {
		return fmt.Errorf("mark question read: %w", err)
	}
	return nil
}

// AcknowledgeAnswers marks every unread answer of the user as read.
func (s *questionService) AcknowledgeAnswers(ctx context.Context, userID string) (int, error) {
	msgs, err := s.messages.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("acknowledge answers: %w", err)
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	answered, err := s.questions.ListAnsweredByMessageIDs(ctx, messageIDs(msgs))
	if err != nil {
		return 0, fmt.Errorf("acknowledge answers: %w", err)
	}

	n := 0
	for _, q := range answered {
		if q.IsReadByUser {
			continue
		}
		if err := s.questions.MarkReadByUser(ctx, q.ID); err != nil {
			if errors.Is(err, domain.ErrQuestionNotFound) {
				continue
			}
			return n, fmt.Errorf("acknowledge answers: %w", err)
		}
		n++
	}
	return n, nil
}

func messageIDs(msgs []domain.Message) []string {
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	return ids
}
