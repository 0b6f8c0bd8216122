package memory

import (
	"context"
	"io"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/types"
)

// Store persists agent conversations by thread id. A thread that was never saved is
// returned as an empty conversation and a nil error.
type Store interface {
	GetConversation(ctx context.Context, threadID string) (types.Conversation, error)
	SaveConversation(ctx context.Context, conversation types.Conversation) error
}

type NoOpMemoryStore struct {
}

func (s *NoOpMemoryStore) SaveConversation(ctx context.Context, conversation types.Conversation) error {
	return nil
}

func (s *NoOpMemoryStore) GetConversation(ctx context.Context, threadID string) (types.Conversation, error) {
	return types.Conversation{ID: threadID}, nil
}

// Close releases the store's connections when it holds any.
func Close(store Store) error {
	if closer, ok := store.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
