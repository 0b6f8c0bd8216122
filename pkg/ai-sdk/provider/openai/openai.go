package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/provider"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/types"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// Provider implements provider.LanguageModel on any OpenAI-compatible endpoint
type Provider struct {
	client *openai.Client
	model  string
}

// New creates a provider for model on an already configured client.
func New(client *openai.Client, model string) *Provider {
	return &Provider{
		client: client,
		model:  model,
	}
}

// NewWithBaseURL creates a provider with its own client pointed at baseURL.
func NewWithBaseURL(apiKey, baseURL, model string) *Provider {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return New(openai.NewClientWithConfig(clientConfig), model)
}

func (p *Provider) Generate(ctx context.Context, req provider.GenerateRequest) (*types.GenerateResponse, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    convertMessages(req.Messages, req.System),
		Tools:       convertTools(req.Tools),
		Temperature: wireTemperature(req.Temperature),
		MaxTokens:   req.MaxTokens,
	}

	log.Debug().
		Str("model", p.model).
		Int("messages", len(chatReq.Messages)).
		Int("tools", len(chatReq.Tools)).
		Msg("openai provider generate")

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, types.ErrEmptyResponse
	}

	choice := resp.Choices[0]
	response := &types.GenerateResponse{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Model:        resp.Model,
		Usage: types.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	for _, tc := range choice.Message.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				log.Warn().Err(err).Str("tool", tc.Function.Name).Msg("tool call arguments are not a JSON object")
				args = map[string]any{"raw": tc.Function.Arguments}
			}
		}

		response.ToolCalls = append(response.ToolCalls, types.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	return response, nil
}

// wireTemperature maps an explicit zero to the smallest positive float32, since
// go-openai omits a zero temperature from the request body.
func wireTemperature(temperature *float32) float32 {
	if temperature == nil {
		return 0
	}

	if *temperature == 0 {
		return math.SmallestNonzeroFloat32
	}

	return *temperature
}

func (p *Provider) ID() string {
	return fmt.Sprintf("openai:%s", p.model)
}

func convertMessages(messages []types.Message, system string) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages)+1)

	if system != "" {
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for _, msg := range messages {
		// Tool results travel as one tool message per call.
		if len(msg.ToolResults) > 0 {
			for _, toolResult := range msg.ToolResults {
				result = append(result, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    toolResult.Content,
					ToolCallID: toolResult.ToolCallID,
				})
			}

			continue
		}

		oaiMsg := openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}

		for _, tc := range msg.ToolCalls {
			argsJSON, _ := json.Marshal(tc.Arguments)

			oaiMsg.ToolCalls = append(oaiMsg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(argsJSON),
				},
			})
		}

		result = append(result, oaiMsg)
	}

	return result
}

func convertTools(tools []types.Tool) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}

	result := make([]openai.Tool, len(tools))
	for i, tool := range tools {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		}
	}

	return result
}
