package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/memory/inmemory"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/provider"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/tool"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedModel replays canned responses and records every request.
type scriptedModel struct {
	responses []*types.GenerateResponse
	err       error
	requests  []provider.GenerateRequest
}

func (m *scriptedModel) Generate(ctx context.Context, req provider.GenerateRequest) (*types.GenerateResponse, error) {
	m.requests = append(m.requests, req)

	if m.err != nil {
		return nil, m.err
	}

	idx := len(m.requests) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}

	return m.responses[idx], nil
}

func (m *scriptedModel) ID() string {
	return "scripted"
}

func toolCallResponse(name string, args map[string]any) *types.GenerateResponse {
	return &types.GenerateResponse{
		ToolCalls:    []types.ToolCall{{ID: "call_" + name, Name: name, Arguments: args}},
		FinishReason: types.FinishReasonToolCalls,
		Usage:        types.Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12},
	}
}

func textResponse(text string) *types.GenerateResponse {
	return &types.GenerateResponse{
		Content:      text,
		FinishReason: types.FinishReasonStop,
		Usage:        types.Usage{PromptTokens: 20, CompletionTokens: 5, TotalTokens: 25},
	}
}

func TestAgent_ChatRunsToolsUntilAnswer(t *testing.T) {
	model := &scriptedModel{
		responses: []*types.GenerateResponse{
			toolCallResponse("web_search", map[string]any{"query": "qiniu"}),
			textResponse("Qiniu is a cloud provider."),
		},
	}

	var executedArgs string

	search := tool.Define("web_search", "search the web", nil, func(ctx context.Context, args string) (string, error) {
		executedArgs = args
		return `{"results":[]}`, nil
	})

	a, err := New(WithModel(model), WithTools(search), WithSystemPrompt("be brief"))
	require.NoError(t, err)

	result, err := a.Chat(context.Background(), ChatRequest{Prompt: "what is qiniu?"})
	require.NoError(t, err)

	assert.Equal(t, "Qiniu is a cloud provider.", result.Text)
	assert.Equal(t, 1, result.ToolCallCount)
	assert.Equal(t, types.FinishReasonStop, result.FinishReason)
	assert.Equal(t, types.Usage{PromptTokens: 30, CompletionTokens: 7, TotalTokens: 37}, result.Usage)
	assert.JSONEq(t, `{"query":"qiniu"}`, executedArgs)

	require.Len(t, result.Steps, 2)
	assert.Equal(t, StepTypeToolCall, result.Steps[0].Type)
	assert.Equal(t, "web_search", result.Steps[0].ToolName)
	assert.Equal(t, `{"results":[]}`, result.Steps[0].ToolResult)
	assert.Equal(t, StepTypeText, result.Steps[1].Type)

	require.Len(t, model.requests, 2)
	assert.Equal(t, "be brief", model.requests[0].System)
	require.Len(t, model.requests[0].Tools, 1)

	second := model.requests[1].Messages
	require.Len(t, second, 3)
	assert.Equal(t, types.RoleUser, second[0].Role)
	assert.Equal(t, types.RoleAssistant, second[1].Role)
	assert.Equal(t, types.RoleTool, second[2].Role)
	assert.Equal(t, "call_web_search", second[2].ToolResults[0].ToolCallID)
}

func TestAgent_ChatStopsAtMaxIterations(t *testing.T) {
	model := &scriptedModel{
		responses: []*types.GenerateResponse{toolCallResponse("loop", nil)},
	}

	loop := tool.Define("loop", "never ends", nil, func(ctx context.Context, args string) (string, error) {
		return "again", nil
	})

	a, err := New(WithModel(model), WithTools(loop), WithMaxIterations(3))
	require.NoError(t, err)

	result, err := a.Chat(context.Background(), ChatRequest{Prompt: "go"})
	require.NoError(t, err)

	assert.Len(t, model.requests, 3)
	assert.Equal(t, 3, result.ToolCallCount)
	assert.Equal(t, types.FinishReasonMaxSteps, result.FinishReason)
}

func TestAgent_ToolErrorsAreReportedToModel(t *testing.T) {
	model := &scriptedModel{
		responses: []*types.GenerateResponse{
			toolCallResponse("broken", map[string]any{}),
			toolCallResponse("missing", map[string]any{}),
			textResponse("done"),
		},
	}

	broken := tool.Define("broken", "fails", nil, func(ctx context.Context, args string) (string, error) {
		return "", errors.New("boom")
	})

	a, err := New(WithModel(model), WithTools(broken))
	require.NoError(t, err)

	result, err := a.Chat(context.Background(), ChatRequest{Prompt: "go"})
	require.NoError(t, err)

	require.Len(t, result.Steps, 3)
	assert.Equal(t, "Error: boom", result.Steps[0].ToolResult)
	assert.Contains(t, result.Steps[1].ToolResult, types.ErrToolNotFound.Error())
	assert.Equal(t, "done", result.Text)
}

func TestAgent_ModelErrorIsReturned(t *testing.T) {
	model := &scriptedModel{err: errors.New("upstream unavailable")}

	a, err := New(WithModel(model))
	require.NoError(t, err)

	_, err = a.Chat(context.Background(), ChatRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func TestAgent_ThreadIsPersisted(t *testing.T) {
	store := inmemory.New()

	model := &scriptedModel{
		responses: []*types.GenerateResponse{textResponse("first"), textResponse("second")},
	}

	a, err := New(WithModel(model), WithMemory(store))
	require.NoError(t, err)

	_, err = a.Chat(context.Background(), ChatRequest{Prompt: "one", SessionID: "thread-1"})
	require.NoError(t, err)

	_, err = a.Chat(context.Background(), ChatRequest{Prompt: "two", SessionID: "thread-1"})
	require.NoError(t, err)

	require.Len(t, model.requests, 2)
	assert.Len(t, model.requests[1].Messages, 3)

	conversation, err := store.GetConversation(context.Background(), "thread-1")
	require.NoError(t, err)
	assert.Len(t, conversation.Messages, 4)
	assert.Equal(t, types.StatusCompleted, conversation.Status)
}

func TestAgent_FitContext(t *testing.T) {
	long := strings.Repeat("x", 400)

	tests := []struct {
		name      string
		maxTokens int
		messages  []types.Message
		wantFirst types.MessageRole
		wantLen   int
	}{
		{
			name:      "fits untouched",
			maxTokens: 1000,
			messages: []types.Message{
				{Role: types.RoleUser, Content: long},
				{Role: types.RoleAssistant, Content: long},
			},
			wantFirst: types.RoleUser,
			wantLen:   2,
		},
		{
			name:      "drops oldest",
			maxTokens: 150,
			messages: []types.Message{
				{Role: types.RoleUser, Content: long},
				{Role: types.RoleAssistant, Content: long},
				{Role: types.RoleUser, Content: "short"},
			},
			wantFirst: types.RoleAssistant,
			wantLen:   2,
		},
		{
			name:      "never starts on tool results",
			maxTokens: 101,
			messages: []types.Message{
				{Role: types.RoleUser, Content: long},
				{Role: types.RoleAssistant, ToolCalls: []types.ToolCall{{ID: "1", Name: "t"}}},
				{Role: types.RoleTool, ToolResults: []types.ToolResult{{ToolCallID: "1", Content: long}}},
				{Role: types.RoleAssistant, Content: "ok"},
			},
			wantFirst: types.RoleAssistant,
			wantLen:   1,
		},
		{
			name:      "keeps newest even when too large",
			maxTokens: 10,
			messages: []types.Message{
				{Role: types.RoleUser, Content: long},
				{Role: types.RoleUser, Content: long},
			},
			wantFirst: types.RoleUser,
			wantLen:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(WithModel(&scriptedModel{}), WithMaxContextTokens(tt.maxTokens))
			require.NoError(t, err)

			fitted := a.fitContext(tt.messages)
			require.Len(t, fitted, tt.wantLen)
			assert.Equal(t, tt.wantFirst, fitted[0].Role)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	_, err := New()
	require.Error(t, err)

	a, err := New(WithModel(&scriptedModel{}))
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxIterations, a.MaxIterations)
	assert.Equal(t, DefaultMaxContextTokens, a.MaxContextTokens)
	assert.NotNil(t, a.Memory)
}
