package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/thynetwork/timeclock/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

const (
	collectionUsers     = "users"
	collectionEvents    = "clock_events"
	collectionMessages  = "messages"
	collectionQuestions = "questions"
	collectionQuotes    = "quotes"
)

var (
	_ ports.UserRepository       = (*UserRepository)(nil)
	_ ports.ClockEventRepository = (*ClockEventRepository)(nil)
	_ ports.MessageRepository    = (*MessageRepository)(nil)
	_ ports.QuestionRepository   = (*QuestionRepository)(nil)
	_ ports.QuoteRepository      = (*QuoteRepository)(nil)
	_ ports.Transactor           = (*Transactor)(nil)
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// EnsureIndexes creates the indexes every repository relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	plan := map[string][]mongo.IndexModel{
		collectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collectionEvents: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}, {Key: "order", Value: -1}}},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		collectionMessages: {
			{Keys: bson.D{{Key: "clock_event_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		collectionQuestions: {
			{Keys: bson.D{{Key: "message_id", Value: 1}, {Key: "seq", Value: 1}}},
		},
		collectionQuotes: {
			{Keys: bson.D{{Key: "date", Value: 1}}, Options: unique},
		},
	}

	for coll, indexes := range plan {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("ensure indexes %s: %w", coll, err)
		}
	}
	return nil
}

// Transactor groups repository calls into a multi-document transaction.
// Transactions need a replica set; with enabled=false fn runs directly and
// Atomic reports false.
type Transactor struct {
	client  *mongo.Client
	enabled bool
}

func NewTransactor(client *mongo.Client, enabled bool) *Transactor {
	return &Transactor{client: client, enabled: enabled}
}

func (t *Transactor) Atomic() bool {
	return t.enabled
}

// WithinTransaction runs fn inside a session transaction. Repositories pick
// the session up from the context passed to fn.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}

	sess, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func inFilter(ids []string) bson.M {
	return bson.M{"$in": ids}
}
