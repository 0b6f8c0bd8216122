package inmemory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/types"
)

// Store keeps conversations in process memory. Stored values are copied so callers never
// share message slices with the store.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]types.Conversation
}

func New() *Store {
	return &Store{
		conversations: make(map[string]types.Conversation),
	}
}

var (
	sharedOnce  sync.Once
	sharedStore *Store
)

// Shared returns the process-wide store, so threads survive across executions of the
// same process.
func Shared() *Store {
	sharedOnce.Do(func() {
		sharedStore = New()
	})

	return sharedStore
}

func (s *Store) SaveConversation(ctx context.Context, conversation types.Conversation) error {
	if conversation.ID == "" {
		return types.ErrInvalidMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conversation.Touch(time.Now())
	conversation.Messages = slices.Clone(conversation.Messages)

	s.conversations[conversation.ID] = conversation

	return nil
}

func (s *Store) GetConversation(ctx context.Context, threadID string) (types.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation, ok := s.conversations[threadID]
	if !ok {
		return types.Conversation{ID: threadID}, nil
	}

	conversation.Messages = slices.Clone(conversation.Messages)

	return conversation, nil
}

func (s *Store) DeleteConversation(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, threadID)

	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.conversations)
}
