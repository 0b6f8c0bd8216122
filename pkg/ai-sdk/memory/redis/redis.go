package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/types"
	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "qiniu-node"

type Store struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

type Opts struct {
	// URL is a redis:// or rediss:// connection string.
	URL       string
	KeyPrefix string
	TTL       time.Duration
}

func New(ctx context.Context, opts Opts) (*Store, error) {
	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis connection string: %w", err)
	}

	client := redis.NewClient(redisOpts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, opts), nil
}

// NewWithClient wraps an existing client. The store takes ownership of it.
func NewWithClient(client *redis.Client, opts Opts) *Store {
	keyPrefix := opts.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}

	return &Store{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       opts.TTL,
	}
}

func (s *Store) threadKey(threadID string) string {
	return fmt.Sprintf("%s:threads:%s", s.keyPrefix, threadID)
}

func (s *Store) SaveConversation(ctx context.Context, conversation types.Conversation) error {
	if conversation.ID == "" {
		return types.ErrInvalidMessage
	}

	conversation.Touch(time.Now())

	payload, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	if err := s.client.Set(ctx, s.threadKey(conversation.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	return nil
}

func (s *Store) GetConversation(ctx context.Context, threadID string) (types.Conversation, error) {
	payload, err := s.client.Get(ctx, s.threadKey(threadID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return types.Conversation{ID: threadID}, nil
		}

		return types.Conversation{}, fmt.Errorf("failed to get conversation: %w", err)
	}

	var conversation types.Conversation
	if err := json.Unmarshal(payload, &conversation); err != nil {
		return types.Conversation{}, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}

	return conversation, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
