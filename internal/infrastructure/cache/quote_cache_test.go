package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thynetwork/timeclock/internal/core/domain"
)

type countingQuoteRepo struct {
	quotes map[int64]domain.QuoteOfTheDay
	finds  int
}

func (r *countingQuoteRepo) Upsert(_ context.Context, q *domain.QuoteOfTheDay) (*domain.QuoteOfTheDay, error) {
	if r.quotes == nil {
		r.quotes = make(map[int64]domain.QuoteOfTheDay)
	}
	r.quotes[dayKey(q.Date)] = *q
	saved := *q
	return &saved, nil
}

func (r *countingQuoteRepo) FindByDate(_ context.Context, date time.Time) (*domain.QuoteOfTheDay, error) {
	r.finds++
	q, ok := r.quotes[dayKey(date)]
	if !ok {
		return nil, domain.ErrQuoteNotFound
	}
	return &q, nil
}

func TestQuoteRepository_CachesHits(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	next := &countingQuoteRepo{}
	_, _ = next.Upsert(context.Background(), &domain.QuoteOfTheDay{ID: "q1", Date: day, Quote: "Stay curious"})

	repo := NewQuoteRepository(next, 4, time.Minute)
	for i := 0; i < 3; i++ {
		q, err := repo.FindByDate(context.Background(), day)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if q.Quote != "Stay curious" {
			t.Fatalf("unexpected quote: %+v", q)
		}
	}
	if next.finds != 1 {
		t.Errorf("expected a single backend read, got %d", next.finds)
	}
}

func TestQuoteRepository_MissNotCached(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	next := &countingQuoteRepo{}
	repo := NewQuoteRepository(next, 4, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := repo.FindByDate(context.Background(), day); !errors.Is(err, domain.ErrQuoteNotFound) {
			t.Fatalf("expected ErrQuoteNotFound, got %v", err)
		}
	}
	if next.finds != 2 {
		t.Errorf("misses must reach the backend, got %d reads", next.finds)
	}
}

func TestQuoteRepository_UpsertRefreshes(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	next := &countingQuoteRepo{}
	repo := NewQuoteRepository(next, 4, time.Minute)

	_, _ = repo.Upsert(context.Background(), &domain.QuoteOfTheDay{Date: day, Quote: "old"})
	_, _ = repo.FindByDate(context.Background(), day)
	_, _ = repo.Upsert(context.Background(), &domain.QuoteOfTheDay{Date: day, Quote: "new"})

	q, err := repo.FindByDate(context.Background(), day)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if q.Quote != "new" {
		t.Errorf("expected refreshed quote, got %q", q.Quote)
	}
	if next.finds != 0 {
		t.Errorf("expected reads served from cache, got %d backend reads", next.finds)
	}
}
