package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/thynetwork/timeclock/internal/core/domain"
)

type QuoteRepository struct {
	coll *mongo.Collection
}

func NewQuoteRepository(db *mongo.Database) *QuoteRepository {
	return &QuoteRepository{coll: db.Collection(collectionQuotes)}
}

// Upsert keys on q.Date. The id of an existing quote is kept.
func (r *QuoteRepository) Upsert(ctx context.Context, q *domain.QuoteOfTheDay) (*domain.QuoteOfTheDay, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"quote":      q.Quote,
			"author":     q.Author,
			"updated_at": q.UpdatedAt.UTC(),
		},
		"$setOnInsert": bson.M{"_id": q.ID},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved domain.QuoteOfTheDay
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"date": q.Date.UTC()}, update, opts).Decode(&saved); err != nil {
		return nil, fmt.Errorf("upsert quote: %w", err)
	}
	saved.Date = saved.Date.UTC()
	saved.UpdatedAt = saved.UpdatedAt.UTC()
	return &saved, nil
}

func (r *QuoteRepository) FindByDate(ctx context.Context, date time.Time) (*domain.QuoteOfTheDay, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var q domain.QuoteOfTheDay
	if err := r.coll.FindOne(ctx, bson.M{"date": date.UTC()}).Decode(&q); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("find quote: %w", err)
	}
	q.Date = q.Date.UTC()
	q.UpdatedAt = q.UpdatedAt.UTC()
	return &q, nil
}
