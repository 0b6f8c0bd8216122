package qiniu_ai

import (
	"context"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/clients/qiniu"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"
)

const (
	DefaultChatModel = "qwen3-max"

	ChatInputType_Simple   = "simple"
	ChatInputType_Messages = "messages"
)

type ChatParams struct {
	Model         string `json:"model"`
	InputType     string `json:"inputType"`
	Prompt        string `json:"prompt"`
	SystemMessage string `json:"systemMessage"`
	Messages      struct {
		MessageValues []qiniu.ChatMessage `json:"messageValues"`
	} `json:"messages"`
	Options ChatOptions `json:"options"`
}

type ChatOptions struct {
	Temperature *float32 `json:"temperature"`
	MaxTokens   int      `json:"maxTokens"`
	TopP        float32  `json:"topP"`
	JSONMode    bool     `json:"jsonMode"`
}

type ChatUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

type ChatOutput struct {
	Content      string     `json:"content"`
	Role         string     `json:"role"`
	FinishReason *string    `json:"finishReason"`
	Usage        *ChatUsage `json:"usage"`
}

// chatMessages builds [system?, user] for simple input and passes a message list through.
func (p ChatParams) chatMessages() []qiniu.ChatMessage {
	if p.InputType == ChatInputType_Messages {
		if p.Messages.MessageValues == nil {
			return []qiniu.ChatMessage{}
		}

		return p.Messages.MessageValues
	}

	messages := []qiniu.ChatMessage{}

	if p.SystemMessage != "" {
		messages = append(messages, qiniu.ChatMessage{Role: "system", Content: p.SystemMessage})
	}

	return append(messages, qiniu.ChatMessage{Role: "user", Content: p.Prompt})
}

func (i *QiniuAIIntegration) ChatComplete(ctx context.Context, params domain.IntegrationInput, item domain.ExecutionItem, itemIndex int) (domain.NodeResult, error) {
	p := ChatParams{}
	if err := i.bind(ctx, item, itemIndex, &p, params); err != nil {
		return domain.NodeResult{}, err
	}

	resp, err := i.client.Chat.Create(ctx, qiniu.ChatRequest{
		Model:       stringOr(p.Model, DefaultChatModel),
		Messages:    p.chatMessages(),
		Temperature: p.Options.Temperature,
		MaxTokens:   p.Options.MaxTokens,
		TopP:        p.Options.TopP,
		JSONMode:    p.Options.JSONMode,
	})
	if err != nil {
		return domain.NodeResult{}, err
	}

	output := ChatOutput{Role: "assistant"}

	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]

		output.Content = choice.Message.Content
		output.Role = stringOr(choice.Message.Role, "assistant")

		if choice.FinishReason != "" {
			finishReason := string(choice.FinishReason)
			output.FinishReason = &finishReason
		}
	}

	if resp.Usage.TotalTokens > 0 || resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
		output.Usage = &ChatUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return result(output, resp.Raw), nil
}
