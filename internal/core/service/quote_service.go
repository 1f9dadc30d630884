package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thynetwork/timeclock/internal/core/domain"
	"github.com/thynetwork/timeclock/internal/core/ports"
)

type quoteService struct {
	repo ports.QuoteRepository
	rt   runtime
}

// NewQuoteService returns a QuoteService keyed by calendar day in the configured location.
func NewQuoteService(repo ports.QuoteRepository, opts ...Option) ports.QuoteService {
	return &quoteService{repo: repo, rt: newRuntime(opts)}
}

func (s *quoteService) Get(ctx context.Context, date time.Time) (*domain.QuoteOfTheDay, error) {
	q, err := s.repo.FindByDate(ctx, domain.StartOfDay(date, s.rt.loc))
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return q, nil
}

func (s *quoteService) Set(ctx context.Context, date time.Time, quote, author string) (*domain.QuoteOfTheDay, error) {
	quote = strings.TrimSpace(quote)
	if quote == "" {
		return nil, fmt.Errorf("set quote: %w: quote is required", domain.ErrInvalidInput)
	}

	saved, err := s.repo.Upsert(ctx, &domain.QuoteOfTheDay{
		ID:        s.rt.newID(),
		Date:      domain.StartOfDay(date, s.rt.loc),
		Quote:     quote,
		Author:    strings.TrimSpace(author),
		UpdatedAt: s.rt.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("set quote: %w", err)
	}
	return saved, nil
}
