package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/types"
	"github.com/rs/zerolog/log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	DefaultDatabase   = "qiniu_node"
	threadsCollection = "agent_threads"
)

// Store implements memory.Store using MongoDB
type Store struct {
	client   *mongo.Client
	database *mongo.Database
}

// New connects with a mongodb:// URI. The database named in the URI path is used,
// DefaultDatabase otherwise.
func New(ctx context.Context, uri string) (*Store, error) {
	databaseName, err := databaseFromURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	store := &Store{
		client:   client,
		database: client.Database(databaseName),
	}

	store.ensureIndexes(ctx)

	return store, nil
}

func databaseFromURI(uri string) (string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("invalid mongodb connection string: %w", err)
	}

	if cs.Database == "" {
		return DefaultDatabase, nil
	}

	return cs.Database, nil
}

func (s *Store) ensureIndexes(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	collection := s.database.Collection(threadsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "updated_at", Value: -1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warn().Err(err).Str("collection", threadsCollection).Msg("failed to create indexes")
	}
}

// SaveConversation inserts the thread or replaces its stored state
func (s *Store) SaveConversation(ctx context.Context, conversation types.Conversation) error {
	if conversation.ID == "" {
		return types.ErrInvalidMessage
	}

	conversation.Touch(time.Now())

	collection := s.database.Collection(threadsCollection)

	update := conversationUpdate(conversation)

	opts := options.Update().SetUpsert(true)

	if _, err := collection.UpdateOne(ctx, bson.M{"id": conversation.ID}, update, opts); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	return nil
}

// conversationUpdate keeps id and created_at from the first insert and replaces the rest.
func conversationUpdate(conversation types.Conversation) bson.M {
	return bson.M{
		"$set": bson.M{
			"messages":   conversation.Messages,
			"updated_at": conversation.UpdatedAt,
			"status":     conversation.Status,
			"metadata":   conversation.Metadata,
		},
		"$setOnInsert": bson.M{
			"id":         conversation.ID,
			"created_at": conversation.CreatedAt,
		},
	}
}

func (s *Store) GetConversation(ctx context.Context, threadID string) (types.Conversation, error) {
	collection := s.database.Collection(threadsCollection)

	var conversation types.Conversation

	err := collection.FindOne(ctx, bson.M{"id": threadID}).Decode(&conversation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Conversation{ID: threadID}, nil
		}

		return types.Conversation{}, fmt.Errorf("failed to find conversation: %w", err)
	}

	return conversation, nil
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}
