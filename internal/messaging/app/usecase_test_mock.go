package app

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"outreach_messaging_service/internal/messaging/domain"
)

// MockConversationRepository Mock ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

// EnsureIndexes mock index creation
func (m *MockConversationRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Insert mock conversation insert
func (m *MockConversationRepository) Insert(ctx context.Context, conv *domain.Conversation) error {
	args := m.Called(ctx, conv)
	return args.Error(0)
}

// FindByID mock find conversation by id
func (m *MockConversationRepository) FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByPair mock find conversation by canonical pair
func (m *MockConversationRepository) FindByPair(ctx context.Context, youthID, workerID string) (*domain.Conversation, error) {
	args := m.Called(ctx, youthID, workerID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByParticipant mock find conversations for a user
func (m *MockConversationRepository) FindByParticipant(ctx context.Context, userID string) ([]domain.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdatePreview mock conditional preview update
func (m *MockConversationRepository) UpdatePreview(ctx context.Context, conversationID, lastMessage string, lastMessageAt int64) (bool, error) {
	args := m.Called(ctx, conversationID, lastMessage, lastMessageAt)
	return args.Bool(0), args.Error(1)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Insert mock message insert
func (m *MockMessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindByID mock find message by id
func (m *MockMessageRepository) FindByID(ctx context.Context, conversationID, messageID string) (*domain.Message, error) {
	args := m.Called(ctx, conversationID, messageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListByConversation mock full log read
func (m *MockMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListAfter mock gap repair read
func (m *MockMessageRepository) ListAfter(ctx context.Context, conversationID string, sinceMillis int64) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID, sinceMillis)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MarkReadUpTo mock read receipt update
func (m *MockMessageRepository) MarkReadUpTo(ctx context.Context, conversationID, readerID string, uptoCreatedAt int64, uptoMessageID string) error {
	args := m.Called(ctx, conversationID, readerID, uptoCreatedAt, uptoMessageID)
	return args.Error(0)
}

// CountUnread mock unread count
func (m *MockMessageRepository) CountUnread(ctx context.Context, conversationID, userID string) (int, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Int(0), args.Error(1)
}

// MockProfileRepository Mock ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

// FindByID mock single profile lookup
func (m *MockProfileRepository) FindByID(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByIDs mock batch profile lookup
func (m *MockProfileRepository) FindByIDs(ctx context.Context, userIDs []string) (map[string]domain.Profile, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) != nil {
		return args.Get(0).(map[string]domain.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPubSub Mock PubSub
type MockPubSub struct {
	mock.Mock
}

// Publish mock publisher
func (m *MockPubSub) Publish(channel string, message interface{}) error {
	args := m.Called(channel, message)
	return args.Error(0)
}

// Subscribe mock subscriber
func (m *MockPubSub) Subscribe(ctx context.Context, channel string, onConnect func(), handler func(payload []byte)) error {
	args := m.Called(ctx, channel, onConnect, handler)
	return args.Error(0)
}

// MockInboxCache Mock redis snapshot cache
type MockInboxCache struct {
	mock.Mock
}

// Set mock cache write
func (m *MockInboxCache) Set(ctx context.Context, key string, value domain.InboxSnapshot, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Get mock cache read
func (m *MockInboxCache) Get(ctx context.Context, key string) (domain.InboxSnapshot, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(domain.InboxSnapshot), args.Error(1)
}

// Del mock cache delete
func (m *MockInboxCache) Del(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
