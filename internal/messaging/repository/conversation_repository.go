package repository

import (
	"context"
	"errors"

	"outreach_messaging_service/internal/messaging/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConversationRepository definition conversation storage. FindByPair and
// Insert together implement insert-or-reread: the unique (youth_id,
// worker_id) index makes the concurrent-creation race lose cleanly with
// a duplicate key error.
type ConversationRepository interface {
	EnsureIndexes(ctx context.Context) error
	Insert(ctx context.Context, conv *domain.Conversation) error
	FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error)
	FindByPair(ctx context.Context, youthID, workerID string) (*domain.Conversation, error)
	FindByParticipant(ctx context.Context, userID string) ([]domain.Conversation, error)
	// UpdatePreview conditionally advances last_message/last_message_at.
	// Returns false without error when ts is older than the stored
	// preview, which keeps the preview monotonic under racing appends.
	UpdatePreview(ctx context.Context, conversationID, lastMessage string, lastMessageAt int64) (bool, error)
}

type conversationRepository struct {
	coll *mongo.Collection
}

// NewMongoConversationRepository create a ConversationRepository
func NewMongoConversationRepository(db *mongo.Database) ConversationRepository {
	return &conversationRepository{
		coll: db.Collection("conversations"),
	}
}

func (r *conversationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "youth_id", Value: 1},
			{Key: "worker_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *conversationRepository) Insert(ctx context.Context, conv *domain.Conversation) error {
	_, err := r.coll.InsertOne(ctx, conv)
	return err
}

func (r *conversationRepository) FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.coll.FindOne(ctx, bson.M{"_id": conversationID}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) FindByPair(ctx context.Context, youthID, workerID string) (*domain.Conversation, error) {
	filter := bson.M{"youth_id": youthID, "worker_id": workerID}
	var conv domain.Conversation
	err := r.coll.FindOne(ctx, filter).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) FindByParticipant(ctx context.Context, userID string) ([]domain.Conversation, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"youth_id": userID},
			{"worker_id": userID},
		},
	}
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var convs []domain.Conversation
	if err := cur.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (r *conversationRepository) UpdatePreview(ctx context.Context, conversationID, lastMessage string, lastMessageAt int64) (bool, error) {
	filter := bson.M{
		"_id": conversationID,
		"$or": []bson.M{
			{"last_message_at": bson.M{"$exists": false}},
			{"last_message_at": bson.M{"$lte": lastMessageAt}},
		},
	}
	update := bson.M{"$set": bson.M{
		"last_message":    lastMessage,
		"last_message_at": lastMessageAt,
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// IsDuplicateKey reports whether an insert failed on the unique pair
// index, i.e. a concurrent creator won the race.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
