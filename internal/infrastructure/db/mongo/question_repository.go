package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/thynetwork/timeclock/internal/core/domain"
)

type QuestionRepository struct {
	coll *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{coll: db.Collection(collectionQuestions)}
}

// CreateMany inserts in slice order.
func (r *QuestionRepository) CreateMany(ctx context.Context, questions []domain.Question) error {
	if len(questions) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs := make([]interface{}, len(questions))
	for i, q := range questions {
		q.CreatedAt = q.CreatedAt.UTC()
		docs[i] = q
	}
	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}
	return nil
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var q domain.Question
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&q); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("find question: %w", err)
	}
	q.CreatedAt = q.CreatedAt.UTC()
	return &q, nil
}

// ListByMessageIDs returns questions in creation order.
func (r *QuestionRepository) ListByMessageIDs(ctx context.Context, messageIDs []string) ([]domain.Question, error) {
	if len(messageIDs) == 0 {
		return []domain.Question{}, nil
	}
	return r.find(ctx, bson.M{"message_id": inFilter(messageIDs)},
		bson.D{{Key: "created_at", Value: 1}, {Key: "seq", Value: 1}})
}

// ListAnsweredByMessageIDs returns answered questions, newest first.
func (r *QuestionRepository) ListAnsweredByMessageIDs(ctx context.Context, messageIDs []string) ([]domain.Question, error) {
	if len(messageIDs) == 0 {
		return []domain.Question{}, nil
	}
	return r.find(ctx, bson.M{
		"message_id": inFilter(messageIDs),
		"answer":     bson.M{"$ne": nil},
	}, bson.D{{Key: "created_at", Value: -1}, {Key: "seq", Value: -1}})
}

// SetAnswer overwrites any previous answer and makes it unread for the asker.
func (r *QuestionRepository) SetAnswer(ctx context.Context, id, answer string) error {
	return r.update(ctx, id, bson.M{"answer": answer, "is_read_by_user": false})
}

func (r *QuestionRepository) MarkReadByUser(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{"is_read_by_user": true})
}

func (r *QuestionRepository) DeleteByMessageIDs(ctx context.Context, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"message_id": inFilter(messageIDs)}); err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}
	return nil
}

func (r *QuestionRepository) update(ctx context.Context, id string, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (r *QuestionRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("find questions: %w", err)
	}
	qs := []domain.Question{}
	if err := cur.All(ctx, &qs); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	for i := range qs {
		qs[i].CreatedAt = qs[i].CreatedAt.UTC()
	}
	return qs, nil
}
