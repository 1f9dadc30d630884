package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/thynetwork/timeclock/internal/core/domain"
)

// ClockEventRepository implements ports.ClockEventRepository using MongoDB.
// Events are only ever inserted or deleted with their owner.
type ClockEventRepository struct {
	coll *mongo.Collection
}

// NewClockEventRepository creates a new ClockEventRepository.
func NewClockEventRepository(db *mongo.Database) *ClockEventRepository {
	return &ClockEventRepository{coll: db.Collection(collectionEvents)}
}

// clockEventDoc adds an insertion order key. Stored dates have millisecond
// precision, so two events of one user may share a timestamp.
type clockEventDoc struct {
	ID        string             `bson:"_id"`
	UserID    string             `bson:"user_id"`
	Type      string             `bson:"type"`
	Timestamp time.Time          `bson:"timestamp"`
	Order     primitive.ObjectID `bson:"order"`
}

func (d clockEventDoc) toDomain() domain.ClockEvent {
	return domain.ClockEvent{
		ID:        d.ID,
		UserID:    d.UserID,
		Type:      domain.EventKind(d.Type),
		Timestamp: d.Timestamp.UTC(),
	}
}

var newestFirst = bson.D{{Key: "timestamp", Value: -1}, {Key: "order", Value: -1}}

func (r *ClockEventRepository) Create(ctx context.Context, ev *domain.ClockEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, clockEventDoc{
		ID:        ev.ID,
		UserID:    ev.UserID,
		Type:      string(ev.Type),
		Timestamp: ev.Timestamp.UTC(),
		Order:     primitive.NewObjectID(),
	})
	if err != nil {
		return fmt.Errorf("insert clock event: %w", err)
	}
	return nil
}

// Latest returns nil, nil when the user has no events.
func (r *ClockEventRepository) Latest(ctx context.Context, userID string) (*domain.ClockEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc clockEventDoc
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}, options.FindOne().SetSort(newestFirst)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest clock event: %w", err)
	}
	ev := doc.toDomain()
	return &ev, nil
}

// LatestPerUser groups the events of userIDs and keeps the newest one per user.
func (r *ClockEventRepository) LatestPerUser(ctx context.Context, userIDs []string) (map[string]domain.ClockEvent, error) {
	out := make(map[string]domain.ClockEvent, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": inFilter(userIDs)}}},
		{{Key: "$sort", Value: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}, {Key: "order", Value: -1}}}},
		{{Key: "$group", Value: bson.M{"_id": "$user_id", "latest": bson.M{"$first": "$$ROOT"}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate latest events: %w", err)
	}
	var rows []struct {
		UserID string        `bson:"_id"`
		Latest clockEventDoc `bson:"latest"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode latest events: %w", err)
	}

	for _, row := range rows {
		out[row.UserID] = row.Latest.toDomain()
	}
	return out, nil
}

func (r *ClockEventRepository) ListByKindSince(ctx context.Context, kind domain.EventKind, since time.Time) ([]domain.ClockEvent, error) {
	return r.find(ctx, bson.M{
		"type":      string(kind),
		"timestamp": bson.M{"$gte": since.UTC()},
	})
}

func (r *ClockEventRepository) CountByKindSince(ctx context.Context, kind domain.EventKind, since time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{
		"type":      string(kind),
		"timestamp": bson.M{"$gte": since.UTC()},
	})
	if err != nil {
		return 0, fmt.Errorf("count clock events: %w", err)
	}
	return n, nil
}

func (r *ClockEventRepository) ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.ClockEvent, error) {
	return r.find(ctx, bson.M{
		"user_id":   userID,
		"timestamp": bson.M{"$gte": from.UTC(), "$lte": to.UTC()},
	})
}

func (r *ClockEventRepository) DeleteByUser(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("delete clock events: %w", err)
	}
	return nil
}

func (r *ClockEventRepository) find(ctx context.Context, filter bson.M) ([]domain.ClockEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("find clock events: %w", err)
	}
	var docs []clockEventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode clock events: %w", err)
	}

	events := make([]domain.ClockEvent, len(docs))
	for i, d := range docs {
		events[i] = d.toDomain()
	}
	return events, nil
}
