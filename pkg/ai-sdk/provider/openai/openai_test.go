package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/provider"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Generate(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role       string `json:"role"`
			Content    string `json:"content"`
			ToolCallID string `json:"tool_call_id"`
			ToolCalls  []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"messages"`
		Tools []struct {
			Function struct {
				Name string `json:"name"`
			} `json:"function"`
		} `json:"tools"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "c1",
			"model": "qwen3-max",
			"choices": []map[string]any{{
				"index": 0,
				"message": map[string]any{
					"role": "assistant",
					"tool_calls": []map[string]any{{
						"id":       "call_2",
						"type":     "function",
						"function": map[string]any{"name": "ocr", "arguments": `{"image_url":"https://x/y.png"}`},
					}},
				},
				"finish_reason": "tool_calls",
			}},
			"usage": map[string]any{"prompt_tokens": 5, "completion_tokens": 1, "total_tokens": 6},
		})
	}))
	defer server.Close()

	p := NewWithBaseURL("key", server.URL, "qwen3-max")
	assert.Equal(t, "openai:qwen3-max", p.ID())

	resp, err := p.Generate(context.Background(), provider.GenerateRequest{
		System: "sys",
		Messages: []types.Message{
			{Role: types.RoleUser, Content: "read this"},
			{Role: types.RoleAssistant, ToolCalls: []types.ToolCall{{ID: "call_1", Name: "web_search", Arguments: map[string]any{"query": "q"}}}},
			{Role: types.RoleTool, ToolResults: []types.ToolResult{{ToolCallID: "call_1", Content: "found"}}},
		},
		Tools: []types.Tool{{Name: "ocr", Parameters: map[string]any{"type": "object"}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "qwen3-max", captured.Model)
	require.Len(t, captured.Messages, 4)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "web_search", captured.Messages[2].ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"query":"q"}`, captured.Messages[2].ToolCalls[0].Function.Arguments)
	assert.Equal(t, "tool", captured.Messages[3].Role)
	assert.Equal(t, "call_1", captured.Messages[3].ToolCallID)
	require.Len(t, captured.Tools, 1)

	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "ocr", resp.ToolCalls[0].Name)
	assert.Equal(t, "https://x/y.png", resp.ToolCalls[0].Arguments["image_url"])
	assert.Equal(t, types.FinishReasonToolCalls, resp.FinishReason)
	assert.Equal(t, 6, resp.Usage.TotalTokens)
}

func TestProvider_GenerateEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","choices":[]}`))
	}))
	defer server.Close()

	_, err := NewWithBaseURL("key", server.URL, "m").Generate(context.Background(), provider.GenerateRequest{})
	require.ErrorIs(t, err, types.ErrEmptyResponse)
}

func TestProvider_GenerateTemperature(t *testing.T) {
	zero := float32(0)
	warm := float32(0.7)

	tests := []struct {
		name        string
		temperature *float32
		wantPresent bool
		want        float64
	}{
		{name: "nil is omitted", temperature: nil},
		{name: "zero is kept", temperature: &zero, wantPresent: true},
		{name: "value is kept", temperature: &warm, wantPresent: true, want: 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

				temperature, ok := body["temperature"]
				assert.Equal(t, tt.wantPresent, ok)
				if ok {
					assert.InDelta(t, tt.want, temperature, 1e-6)
				}

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"id":"c1","choices":[{"index":0,"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`))
			}))
			defer server.Close()

			_, err := NewWithBaseURL("key", server.URL, "m").Generate(context.Background(), provider.GenerateRequest{
				Messages:    []types.Message{{Role: types.RoleUser, Content: "hi"}},
				Temperature: tt.temperature,
			})
			require.NoError(t, err)
		})
	}
}
