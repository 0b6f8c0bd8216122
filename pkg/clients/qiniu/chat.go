package qiniu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/sashabaranov/go-openai"
)

type ChatService struct {
	client *Client
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature *float32
	MaxTokens   int
	TopP        float32
	JSONMode    bool
}

type ChatResponse struct {
	openai.ChatCompletionResponse

	Raw json.RawMessage `json:"-"`
}

// Create runs an OpenAI-compatible chat completion against the Qiniu endpoint.
func (s *ChatService) Create(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))

	for _, message := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    message.Role,
			Content: message.Content,
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: wireTemperature(req.Temperature),
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
	}

	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := s.client.openai.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, TranslateOpenAIError(err)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat response: %w", err)
	}

	return &ChatResponse{
		ChatCompletionResponse: resp,
		Raw:                    raw,
	}, nil
}

// TranslateOpenAIError turns go-openai transport errors into *APIError so callers see a
// single error type for every Qiniu endpoint.
func TranslateOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			Status:  apiErr.HTTPStatusCode,
			Code:    fmt.Sprint(valueOr(apiErr.Code, "")),
			Type:    apiErr.Type,
			Message: apiErr.Message,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		translated := parseAPIError(reqErr.HTTPStatusCode, reqErr.Body, "")
		if translated.Message == fmt.Sprintf("HTTP %d", reqErr.HTTPStatusCode) && reqErr.Err != nil {
			translated.Message = reqErr.Err.Error()
		}

		return translated
	}

	return err
}

// wireTemperature keeps an explicit zero on the wire; go-openai drops a plain 0 as
// omitempty, so it is sent as the smallest positive float32 instead.
func wireTemperature(temperature *float32) float32 {
	if temperature == nil {
		return 0
	}

	if *temperature == 0 {
		return math.SmallestNonzeroFloat32
	}

	return *temperature
}

func valueOr(v any, fallback any) any {
	if v == nil {
		return fallback
	}

	return v
}
