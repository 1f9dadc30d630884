package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/thynetwork/timeclock/internal/core/domain"
	"github.com/thynetwork/timeclock/internal/core/ports"
)

func seededThread(owner string) (*stubMessageRepo, *stubQuestionRepo) {
	ts := time.Date(2024, 3, 4, 17, 0, 0, 0, time.UTC)
	msgs := &stubMessageRepo{messages: []domain.Message{
		{ID: "m1", ClockEventID: "e1", UserID: owner, Content: "summary", CreatedAt: ts},
	}}
	qs := &stubQuestionRepo{questions: []domain.Question{
		{ID: "q1", MessageID: "m1", Content: "first?", CreatedAt: ts, Seq: 0},
		{ID: "q2", MessageID: "m1", Content: "second?", CreatedAt: ts, Seq: 1},
	}}
	return msgs, qs
}

func TestQuestionService_SubmitAnswers_PartialBatch(t *testing.T) {
	msgs, qs := seededThread("u1")
	svc := NewQuestionService(msgs, qs, zerolog.Nop())

	res, err := svc.SubmitAnswers(context.Background(), []ports.AnswerInput{
		{QuestionID: "q1", Answer: "yes"},
		{QuestionID: "missing", Answer: "?"},
		{QuestionID: "q2", Answer: "no"},
	})
	if err != nil {
		t.Fatalf("not-found entries must not fail the batch: %v", err)
	}
	if len(res.Answered) != 2 || len(res.NotFound) != 1 || res.NotFound[0] != "missing" {
		t.Fatalf("unexpected result: %+v", res)
	}

	q, _ := qs.FindByID(context.Background(), "q2")
	if q.Answer == nil || *q.Answer != "no" {
		t.Errorf("expected answer stored, got %v", q.Answer)
	}
}

func TestQuestionService_SubmitAnswers_StoreFailure(t *testing.T) {
	msgs, qs := seededThread("u1")
	qs.answerErr = map[string]error{"q1": errors.New("timeout")}
	svc := NewQuestionService(msgs, qs, zerolog.Nop())

	res, err := svc.SubmitAnswers(context.Background(), []ports.AnswerInput{
		{QuestionID: "q1", Answer: "yes"},
		{QuestionID: "q2", Answer: "no"},
	})
	if err == nil {
		t.Fatal("expected joined error")
	}
	if len(res.Failed) != 1 || len(res.Answered) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestQuestionService_SubmitAnswers_Empty(t *testing.T) {
	msgs, qs := seededThread("u1")
	svc := NewQuestionService(msgs, qs, zerolog.Nop())

	if _, err := svc.SubmitAnswers(context.Background(), nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestQuestionService_Reanswer_ResetsRead(t *testing.T) {
	msgs, qs := seededThread("u1")
	svc := NewQuestionService(msgs, qs, zerolog.Nop())
	ctx := context.Background()
	owner := domain.Principal{UserID: "u1", Role: domain.RoleEmployee}

	_, _ = svc.SubmitAnswers(ctx, []ports.AnswerInput{{QuestionID: "q1", Answer: "a"}})
	if err := svc.MarkQuestionReadByUser(ctx, owner, "q1"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	_, _ = svc.SubmitAnswers(ctx, []ports.AnswerInput{{QuestionID: "q1", Answer: "b"}})

	q, _ := qs.FindByID(ctx, "q1")
	if q.IsReadByUser {
		t.Error("a new answer must be unread again")
	}
	if *q.Answer != "b" {
		t.Errorf("expected latest answer, got %s", *q.Answer)
	}
}

func TestQuestionService_MarkMessageRead(t *testing.T) {
	msgs, qs := seededThread("u1")
	svc := NewQuestionService(msgs, qs, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if err := svc.MarkMessageRead(context.Background(), "m1"); err != nil {
			t.Fatalf("mark read #%d: %v", i, err)
		}
	}
	m, _ := msgs.FindByID(context.Background(), "m1")
	if !m.IsRead {
		t.Error("expected message read")
	}
	for _, q := range qs.questions {
		if q.Answered() {
			t.Error("marking the envelope read must not touch questions")
		}
	}

	if err := svc.MarkMessageRead(context.Background(), "nope"); !errors.Is(err, domain.ErrMessageNotFound) {
		t.Errorf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestQuestionService_MarkQuestionReadByUser_Ownership(t *testing.T) {
	msgs, qs := seededThread("u1")
	svc := NewQuestionService(msgs, qs, zerolog.Nop())
	ctx := context.Background()

	stranger := domain.Principal{UserID: "u2", Role: domain.RoleEmployee}
	if err := svc.MarkQuestionReadByUser(ctx, stranger, "q1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	admin := domain.Principal{UserID: "a1", Role: domain.RoleAdmin}
	if err := svc.MarkQuestionReadByUser(ctx, admin, "q1"); err != nil {
		t.Fatalf("admin mark read: %v", err)
	}
	if err := svc.MarkQuestionReadByUser(ctx, admin, "unknown"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestQuestionService_AcknowledgeAnswers(t *testing.T) {
	msgs, qs := seededThread("u1")
	svc := NewQuestionService(msgs, qs, zerolog.Nop())
	ctx := context.Background()

	_, _ = svc.SubmitAnswers(ctx, []ports.AnswerInput{{QuestionID: "q2", Answer: "ok"}})

	n, err := svc.AcknowledgeAnswers(ctx, "u1")
	if err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 acknowledged, got %d", n)
	}
	q1, _ := qs.FindByID(ctx, "q1")
	if q1.IsReadByUser {
		t.Error("pending questions must stay unread")
	}

	n, _ = svc.AcknowledgeAnswers(ctx, "u1")
	if n != 0 {
		t.Errorf("second acknowledge must be a no-op, got %d", n)
	}
	if n, _ := svc.AcknowledgeAnswers(ctx, "nobody"); n != 0 {
		t.Errorf("expected 0 for a user without messages, got %d", n)
	}
}
