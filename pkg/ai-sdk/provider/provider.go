package provider

import (
	"context"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/types"
)

// LanguageModel is a chat model that can call tools.
type LanguageModel interface {
	// Generate produces a complete response (blocking)
	Generate(ctx context.Context, req GenerateRequest) (*types.GenerateResponse, error)

	// ID returns the unique identifier for this model
	ID() string
}

// GenerateRequest contains all parameters for generating text
type GenerateRequest struct {
	// Messages is the conversation history, oldest first
	Messages []types.Message `json:"messages"`

	// System is an optional system prompt
	System string `json:"system,omitempty"`

	Tools []types.Tool `json:"tools,omitempty"`

	// Temperature controls randomness (0.0 to 2.0). Nil leaves the model default.
	Temperature *float32 `json:"temperature,omitempty"`

	MaxTokens int `json:"max_tokens,omitempty"`
}
