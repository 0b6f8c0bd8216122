package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/qiniu-ai/flowbaker-qiniu/internal/auth"

	"github.com/cenkalti/backoff/v5"
)

// ClientInterface is the API a node runner serves.
type ClientInterface interface {
	HealthCheck(ctx context.Context) (*HealthCheckResponse, error)
	Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error)
	TestConnection(ctx context.Context, req *ConnectionTestRequest) (*ConnectionTestResponse, error)
	Schema(ctx context.Context) (*SchemaResponse, error)
}

type ClientConfig struct {
	BaseURL       string
	HTTPClient    *http.Client
	Timeout       time.Duration
	SigningKey    string // base64 Ed25519 private key
	RetryAttempts uint
	RetryDelay    time.Duration
	UserAgent     string
}

func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       "http://localhost:8081",
		Timeout:       15 * time.Minute,
		RetryAttempts: 2,
		RetryDelay:    500 * time.Millisecond,
		UserAgent:     "qiniu-node-client/1.0",
	}
}

type ClientOption func(*ClientConfig)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *ClientConfig) {
		c.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *ClientConfig) {
		c.HTTPClient = client
	}
}

func WithSigningKey(privateKeyBase64 string) ClientOption {
	return func(c *ClientConfig) {
		c.SigningKey = privateKeyBase64
	}
}

func WithRetry(attempts uint, delay time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.RetryAttempts = attempts
		c.RetryDelay = delay
	}
}

type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	signer     *auth.APIRequestSigner
}

func NewClient(options ...ClientOption) (*Client, error) {
	config := DefaultConfig()

	for _, option := range options {
		option(config)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	var signer *auth.APIRequestSigner
	if config.SigningKey != "" {
		var err error

		signer, err = auth.NewAPIRequestSigner(config.SigningKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize request signer: %w", err)
		}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		signer:     signer,
	}, nil
}

func (c *Client) HealthCheck(ctx context.Context) (*HealthCheckResponse, error) {
	var resp HealthCheckResponse

	if _, err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Execute returns the response body even when the run failed, together with its
// *ExecutionError.
func (c *Client) Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("execution request cannot be nil")
	}

	var resp ExecuteResponse

	status, err := c.do(ctx, http.MethodPost, "/executions", req, &resp)
	if err != nil && resp.Error == nil {
		return nil, err
	}

	if resp.Error != nil {
		return &resp, resp.Error
	}

	if status >= http.StatusBadRequest {
		return &resp, fmt.Errorf("execution failed with status %d", status)
	}

	return &resp, nil
}

func (c *Client) TestConnection(ctx context.Context, req *ConnectionTestRequest) (*ConnectionTestResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("connection test request cannot be nil")
	}

	var resp ConnectionTestResponse

	if _, err := c.do(ctx, http.MethodPost, "/connection-test", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) Schema(ctx context.Context) (*SchemaResponse, error) {
	var resp SchemaResponse

	if _, err := c.do(ctx, http.MethodGet, "/schema", nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("node runner returned status %d: %s", e.StatusCode, e.Body)
}

// do sends a signed request, retrying transport failures and 5xx responses other than
// 502, which carries an upstream API failure that a retry would only repeat.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) (int, error) {
	var bodyBytes []byte

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}

		bodyBytes = encoded
	}

	operation := func() (int, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bytes.NewReader(bodyBytes))
		if err != nil {
			return 0, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("Content-Type", "application/json")

		if c.config.UserAgent != "" {
			req.Header.Set("User-Agent", c.config.UserAgent)
		}

		if c.signer != nil {
			for key, value := range c.signer.SignRequest(method, path, bodyBytes) {
				req.Header.Set(key, value)
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
		}

		if len(respBody) > 0 && out != nil {
			if err := json.Unmarshal(respBody, out); err != nil && resp.StatusCode < http.StatusBadRequest {
				return resp.StatusCode, backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
			}
		}

		if resp.StatusCode >= http.StatusBadRequest {
			statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}

			if resp.StatusCode >= http.StatusInternalServerError && resp.StatusCode != http.StatusBadGateway {
				return resp.StatusCode, statusErr
			}

			return resp.StatusCode, backoff.Permanent(statusErr)
		}

		return resp.StatusCode, nil
	}

	status, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(c.config.RetryDelay)),
		backoff.WithMaxTries(c.config.RetryAttempts+1),
	)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return statusErr.StatusCode, err
		}

		return status, fmt.Errorf("request to %s failed: %w", path, err)
	}

	return status, nil
}
