package qiniu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// Client is a typed client over the Qiniu AI API. Operations are grouped the same way
// the API namespaces them.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	openai     *openai.Client

	Chat   *ChatService
	Image  *ImageService
	Video  *VideoService
	TTS    *TTSService
	ASR    *ASRService
	Sys    *SysService
	OCR    *OCRService
	Censor *CensorService
}

// NewClient creates a new Qiniu AI client with the given options
func NewClient(options ...ClientOption) *Client {
	config := DefaultConfig()

	for _, option := range options {
		option(config)
	}

	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	openaiConfig := openai.DefaultConfig(config.APIKey)
	openaiConfig.BaseURL = config.BaseURL
	openaiConfig.HTTPClient = httpClient

	c := &Client{
		config:     config,
		httpClient: httpClient,
		openai:     openai.NewClientWithConfig(openaiConfig),
	}

	c.Chat = &ChatService{client: c}
	c.Image = &ImageService{client: c}
	c.Video = &VideoService{client: c}
	c.TTS = &TTSService{client: c}
	c.ASR = &ASRService{client: c}
	c.Sys = &SysService{client: c}
	c.OCR = &OCRService{client: c}
	c.Censor = &CensorService{client: c}

	return c
}

func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// OpenAI exposes the OpenAI-compatible client bound to the same base URL and key.
func (c *Client) OpenAI() *openai.Client {
	return c.openai
}

// doJSON sends body as JSON and decodes a successful response into out. The raw
// response body is always returned so callers can pass it through untouched.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) (json.RawMessage, error) {
	var requestBody io.Reader

	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}

		requestBody = bytes.NewReader(bodyBytes)
	}

	url := c.config.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.config.DefaultHeaders {
		req.Header.Set(key, value)
	}

	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	log.Debug().Str("method", method).Str("path", path).Msg("qiniu ai request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", path, err)
	}

	return c.handleResponse(resp, out)
}

// handleResponse processes the HTTP response and unmarshals JSON if successful
func (c *Client) handleResponse(resp *http.Response, out any) (json.RawMessage, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, body, resp.Header.Get("X-Reqid"))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return json.RawMessage(body), nil
}

func parseAPIError(status int, body []byte, requestID string) *APIError {
	apiErr := &APIError{
		Status:    status,
		Message:   fmt.Sprintf("HTTP %d", status),
		RequestID: requestID,
		Body:      string(body),
	}

	var nested struct {
		Error struct {
			Message string          `json:"message"`
			Code    json.RawMessage `json:"code"`
			Type    string          `json:"type"`
		} `json:"error"`
	}

	if json.Unmarshal(body, &nested) == nil && nested.Error.Message != "" {
		apiErr.Message = nested.Error.Message
		apiErr.Code = rawCode(nested.Error.Code)
		apiErr.Type = nested.Error.Type

		return apiErr
	}

	var flat struct {
		Error   string          `json:"error"`
		Message string          `json:"message"`
		Code    json.RawMessage `json:"code"`
	}

	if json.Unmarshal(body, &flat) == nil {
		switch {
		case flat.Message != "":
			apiErr.Message = flat.Message
		case flat.Error != "":
			apiErr.Message = flat.Error
		}

		apiErr.Code = rawCode(flat.Code)
	}

	return apiErr
}

// rawCode accepts both string and numeric error codes.
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	return string(raw)
}
