package types

import "time"

// Message is a single entry of a conversation
type Message struct {
	Role        MessageRole    `json:"role" bson:"role"`
	Content     string         `json:"content" bson:"content"`
	ToolCalls   []ToolCall     `json:"tool_calls,omitempty" bson:"tool_calls,omitempty"`
	ToolResults []ToolResult   `json:"tool_results,omitempty" bson:"tool_results,omitempty"`
	Timestamp   time.Time      `json:"timestamp" bson:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
	RoleTool      MessageRole = "tool"
)

// ToolCall is a function call requested by the model
type ToolCall struct {
	ID        string         `json:"id" bson:"id"`
	Name      string         `json:"name" bson:"name"`
	Arguments map[string]any `json:"arguments" bson:"arguments"`
}

// ToolResult answers a ToolCall
type ToolResult struct {
	ToolCallID string `json:"tool_call_id" bson:"tool_call_id"`
	Content    string `json:"content" bson:"content"`
	IsError    bool   `json:"is_error,omitempty" bson:"is_error,omitempty"`
}

// Conversation is the persisted state of an agent thread. ID is the thread id.
type Conversation struct {
	ID        string             `json:"id" bson:"id"`
	Messages  []Message          `json:"messages" bson:"messages"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
	Status    ConversationStatus `json:"status" bson:"status"`
	Metadata  map[string]any     `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Touch stamps the conversation before it is persisted.
func (c *Conversation) Touch(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}

	c.UpdatedAt = now
}

type ConversationStatus string

const (
	StatusActive    ConversationStatus = "active"
	StatusCompleted ConversationStatus = "completed"
	StatusFailed    ConversationStatus = "failed"
)
