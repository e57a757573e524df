package repository

import (
	"context"
	"errors"

	"outreach_messaging_service/internal/messaging/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository definition append-only message log per conversation.
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.Message) error
	FindByID(ctx context.Context, conversationID, messageID string) (*domain.Message, error)
	// ListByConversation returns the full log ordered (created_at, id).
	ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error)
	// ListAfter returns messages with created_at strictly greater than
	// sinceMillis, same order. Used for gap repair after a reconnect.
	ListAfter(ctx context.Context, conversationID string, sinceMillis int64) ([]domain.Message, error)
	// MarkReadUpTo adds readerID to read_by on every message at or
	// before the (uptoCreatedAt, uptoMessageID) position. $addToSet
	// keeps it idempotent and the read set monotonic.
	MarkReadUpTo(ctx context.Context, conversationID, readerID string, uptoCreatedAt int64, uptoMessageID string) error
	CountUnread(ctx context.Context, conversationID, userID string) (int, error)
}

type messageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		coll: db.Collection("messages"),
	}
}

var messageSort = bson.D{
	{Key: "created_at", Value: 1},
	{Key: "_id", Value: 1},
}

func (r *messageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

func (r *messageRepository) FindByID(ctx context.Context, conversationID, messageID string) (*domain.Message, error) {
	filter := bson.M{"_id": messageID, "conversation_id": conversationID}
	var msg domain.Message
	err := r.coll.FindOne(ctx, filter).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	filter := bson.M{"conversation_id": conversationID}
	opts := options.Find().SetSort(messageSort)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var messages []domain.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) ListAfter(ctx context.Context, conversationID string, sinceMillis int64) ([]domain.Message, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"created_at":      bson.M{"$gt": sinceMillis},
	}
	opts := options.Find().SetSort(messageSort)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var messages []domain.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) MarkReadUpTo(ctx context.Context, conversationID, readerID string, uptoCreatedAt int64, uptoMessageID string) error {
	filter := bson.M{
		"conversation_id": conversationID,
		"$or": []bson.M{
			{"created_at": bson.M{"$lt": uptoCreatedAt}},
			{"created_at": uptoCreatedAt, "_id": bson.M{"$lte": uptoMessageID}},
		},
	}
	update := bson.M{"$addToSet": bson.M{"read_by": readerID}}
	_, err := r.coll.UpdateMany(ctx, filter, update)
	return err
}

func (r *messageRepository) CountUnread(ctx context.Context, conversationID, userID string) (int, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"read_by":         bson.M{"$ne": userID},
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
