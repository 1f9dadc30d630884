// Package cache holds in-process read caches placed in front of repositories.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/thynetwork/timeclock/internal/api/metrics"
	"github.com/thynetwork/timeclock/internal/core/domain"
	"github.com/thynetwork/timeclock/internal/core/ports"
)

const (
	defaultQuoteEntries = 64
	defaultQuoteTTL     = time.Minute
)

var _ ports.QuoteRepository = (*QuoteRepository)(nil)

// QuoteRepository caches quotes by day. Each API instance has its own cache,
// so a quote set on another instance becomes visible after at most ttl.
type QuoteRepository struct {
	next  ports.QuoteRepository
	cache *expirable.LRU[int64, domain.QuoteOfTheDay]
}

// NewQuoteRepository wraps next with an expirable LRU of at most maxEntries days.
func NewQuoteRepository(next ports.QuoteRepository, maxEntries int, ttl time.Duration) *QuoteRepository {
	if maxEntries <= 0 {
		maxEntries = defaultQuoteEntries
	}
	if ttl <= 0 {
		ttl = defaultQuoteTTL
	}
	return &QuoteRepository{
		next:  next,
		cache: expirable.NewLRU[int64, domain.QuoteOfTheDay](maxEntries, nil, ttl),
	}
}

func (r *QuoteRepository) Upsert(ctx context.Context, q *domain.QuoteOfTheDay) (*domain.QuoteOfTheDay, error) {
	r.cache.Remove(dayKey(q.Date))
	saved, err := r.next.Upsert(ctx, q)
	if err != nil {
		return nil, err
	}
	r.cache.Add(dayKey(saved.Date), *saved)
	return saved, nil
}

// FindByDate serves from the cache when possible. Misses are not cached.
func (r *QuoteRepository) FindByDate(ctx context.Context, date time.Time) (*domain.QuoteOfTheDay, error) {
	if q, ok := r.cache.Get(dayKey(date)); ok {
		metrics.QuoteCacheLookupsTotal.WithLabelValues("hit").Inc()
		return &q, nil
	}
	metrics.QuoteCacheLookupsTotal.WithLabelValues("miss").Inc()

	q, err := r.next.FindByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	r.cache.Add(dayKey(q.Date), *q)
	return q, nil
}

func dayKey(t time.Time) int64 {
	return t.UTC().Unix()
}
