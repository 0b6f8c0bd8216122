package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/memory"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/provider"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/tool"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/types"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxIterations    = 10
	DefaultMaxContextTokens = 32000

	// charsPerToken is the rough ratio used to estimate prompt size.
	charsPerToken = 4
)

type Agent struct {
	MaxIterations    int
	MaxContextTokens int
	Temperature      *float32
	Tools            []tool.Tool
	SystemPrompt     string
	Model            provider.LanguageModel
	Memory           memory.Store

	hooks Hooks
}

type Hooks struct {
	OnBeforeGenerate   func(ctx context.Context, req *provider.GenerateRequest, stepNumber int)
	OnGenerationFailed func(ctx context.Context, req *provider.GenerateRequest, stepNumber int, err error)
	OnToolExecuted     func(ctx context.Context, toolCall types.ToolCall, toolResult types.ToolResult)

	OnMemoryRetrieved  func(ctx context.Context, conversation types.Conversation)
	OnMemorySaved      func(ctx context.Context, conversation types.Conversation)
	OnMemorySaveFailed func(ctx context.Context, conversation types.Conversation, err error)
}

func New(opts ...Option) (*Agent, error) {
	agent := &Agent{}

	for _, opt := range opts {
		opt(agent)
	}

	if agent.Model == nil {
		return nil, errors.New("model is required")
	}

	if agent.MaxIterations <= 0 {
		agent.MaxIterations = DefaultMaxIterations
	}

	if agent.MaxContextTokens <= 0 {
		agent.MaxContextTokens = DefaultMaxContextTokens
	}

	if agent.Memory == nil {
		agent.Memory = &memory.NoOpMemoryStore{}
	}

	return agent, nil
}

type ChatRequest struct {
	Prompt string
	// SessionID is the thread id. Without one nothing is loaded or saved.
	SessionID string
}

type StepType string

const (
	StepTypeText     StepType = "text"
	StepTypeToolCall StepType = "tool_call"
)

type Step struct {
	Type       StepType       `json:"type"`
	ToolName   string         `json:"toolName,omitempty"`
	ToolArgs   map[string]any `json:"toolArgs,omitempty"`
	ToolResult string         `json:"toolResult,omitempty"`
	Text       string         `json:"text,omitempty"`
}

type Result struct {
	Text          string      `json:"text"`
	Steps         []Step      `json:"steps"`
	Usage         types.Usage `json:"usage"`
	ToolCallCount int         `json:"tool_call_count"`
	FinishReason  string      `json:"finish_reason"`
}

// Chat runs the tool-calling loop until the model answers without tool calls or the
// iteration limit is hit.
func (a *Agent) Chat(ctx context.Context, req ChatRequest) (Result, error) {
	conversation, err := a.loadConversation(ctx, req.SessionID)
	if err != nil {
		return Result{}, err
	}

	conversation.Status = types.StatusActive

	if req.Prompt != "" {
		conversation.Messages = append(conversation.Messages, types.Message{
			Role:      types.RoleUser,
			Content:   req.Prompt,
			Timestamp: time.Now(),
		})
	}

	result := Result{
		Steps: []Step{},
	}

	offered := make([]types.Tool, 0, len(a.Tools))
	for _, t := range a.Tools {
		offered = append(offered, tool.ToTypesTool(t))
	}

	for stepNumber := 1; stepNumber <= a.MaxIterations; stepNumber++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		genReq := provider.GenerateRequest{
			Messages:    a.fitContext(conversation.Messages),
			System:      a.SystemPrompt,
			Tools:       offered,
			Temperature: a.Temperature,
		}

		if a.hooks.OnBeforeGenerate != nil {
			a.hooks.OnBeforeGenerate(ctx, &genReq, stepNumber)
		}

		resp, err := a.Model.Generate(ctx, genReq)
		if err != nil {
			if a.hooks.OnGenerationFailed != nil {
				a.hooks.OnGenerationFailed(ctx, &genReq, stepNumber, err)
			}

			conversation.Status = types.StatusFailed
			a.saveConversation(ctx, conversation)

			return result, fmt.Errorf("step %d: %w", stepNumber, err)
		}

		result.Usage = result.Usage.Add(resp.Usage)

		conversation.Messages = append(conversation.Messages, types.Message{
			Role:      types.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
			Timestamp: time.Now(),
		})

		if resp.Content != "" {
			result.Steps = append(result.Steps, Step{Type: StepTypeText, Text: resp.Content})
			result.Text = resp.Content
		}

		log.Debug().
			Int("step", stepNumber).
			Int("tool_calls", len(resp.ToolCalls)).
			Str("finish_reason", resp.FinishReason).
			Msg("agent step completed")

		if len(resp.ToolCalls) == 0 {
			result.FinishReason = resp.FinishReason
			if result.FinishReason == "" {
				result.FinishReason = types.FinishReasonStop
			}

			break
		}

		toolResults := make([]types.ToolResult, 0, len(resp.ToolCalls))

		for _, toolCall := range resp.ToolCalls {
			toolResult := a.executeToolCall(ctx, toolCall)
			toolResults = append(toolResults, toolResult)

			result.ToolCallCount++
			result.Steps = append(result.Steps, Step{
				Type:       StepTypeToolCall,
				ToolName:   toolCall.Name,
				ToolArgs:   toolCall.Arguments,
				ToolResult: toolResult.Content,
			})
		}

		conversation.Messages = append(conversation.Messages, types.Message{
			Role:        types.RoleTool,
			ToolResults: toolResults,
			Timestamp:   time.Now(),
		})

		if stepNumber == a.MaxIterations {
			result.FinishReason = types.FinishReasonMaxSteps
		}
	}

	conversation.Status = types.StatusCompleted

	if err := a.saveConversation(ctx, conversation); err != nil {
		return result, fmt.Errorf("failed to save conversation: %w, conversation_id: %s", err, conversation.ID)
	}

	return result, nil
}

func (a *Agent) executeToolCall(ctx context.Context, toolCall types.ToolCall) types.ToolResult {
	toolResult := types.ToolResult{ToolCallID: toolCall.ID}

	t, exists := a.GetTool(toolCall.Name)
	if !exists {
		toolResult.Content = fmt.Sprintf("Error: %v: %s", types.ErrToolNotFound, toolCall.Name)
		toolResult.IsError = true

		return toolResult
	}

	args := toolCall.Arguments
	if args == nil {
		args = map[string]any{}
	}

	argsJSON, err := json.Marshal(args)
	if err != nil {
		toolResult.Content = fmt.Sprintf("Error: failed to marshal tool call arguments: %v", err)
		toolResult.IsError = true

		return toolResult
	}

	content, err := t.Execute(ctx, string(argsJSON))
	if err != nil {
		log.Warn().Err(err).Str("tool", toolCall.Name).Msg("tool execution failed")

		content = fmt.Sprintf("Error: %v", err)
		toolResult.IsError = true
	}

	toolResult.Content = content

	if a.hooks.OnToolExecuted != nil {
		a.hooks.OnToolExecuted(ctx, toolCall, toolResult)
	}

	return toolResult
}

func (a *Agent) GetTool(toolName string) (tool.Tool, bool) {
	for _, t := range a.Tools {
		if t.Name() == toolName {
			return t, true
		}
	}

	return nil, false
}

// fitContext drops the oldest messages until the estimated prompt fits MaxContextTokens.
// The newest message is always kept and the window never opens on orphaned tool results.
func (a *Agent) fitContext(messages []types.Message) []types.Message {
	budget := a.MaxContextTokens*charsPerToken - len(a.SystemPrompt)

	total := 0
	for _, message := range messages {
		total += messageSize(message)
	}

	start := 0
	for total > budget && start < len(messages)-1 {
		total -= messageSize(messages[start])
		start++
	}

	for start < len(messages)-1 && messages[start].Role == types.RoleTool {
		start++
	}

	if start > 0 {
		log.Debug().Int("dropped", start).Int("kept", len(messages)-start).Msg("trimmed agent context")
	}

	return messages[start:]
}

func messageSize(message types.Message) int {
	size := len(message.Content)

	for _, toolCall := range message.ToolCalls {
		args, _ := json.Marshal(toolCall.Arguments)
		size += len(toolCall.Name) + len(args)
	}

	for _, toolResult := range message.ToolResults {
		size += len(toolResult.Content)
	}

	return size
}

func (a *Agent) loadConversation(ctx context.Context, threadID string) (types.Conversation, error) {
	if threadID == "" {
		return types.Conversation{}, nil
	}

	conversation, err := a.Memory.GetConversation(ctx, threadID)
	if err != nil {
		return types.Conversation{}, fmt.Errorf("failed to load conversation %s: %w", threadID, err)
	}

	conversation.ID = threadID

	if a.hooks.OnMemoryRetrieved != nil {
		a.hooks.OnMemoryRetrieved(ctx, conversation)
	}

	return conversation, nil
}

func (a *Agent) saveConversation(ctx context.Context, conversation types.Conversation) error {
	if conversation.ID == "" {
		return nil
	}

	if err := a.Memory.SaveConversation(ctx, conversation); err != nil {
		if a.hooks.OnMemorySaveFailed != nil {
			a.hooks.OnMemorySaveFailed(ctx, conversation, err)
		}

		return err
	}

	if a.hooks.OnMemorySaved != nil {
		a.hooks.OnMemorySaved(ctx, conversation)
	}

	return nil
}
