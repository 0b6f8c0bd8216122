package qiniu

import (
	"net/http"
	"time"
)

const (
	DefaultBaseURL = "https://api.qnaigc.com/v1"
)

// ClientConfig holds the configuration for the Qiniu AI client
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Timeout        time.Duration
	DefaultHeaders map[string]string
	UserAgent      string

	ImagePoll  PollPolicy
	VideoPoll  PollPolicy
	CensorPoll PollPolicy
}

// DefaultConfig returns the default configuration
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        DefaultBaseURL,
		Timeout:        2 * time.Minute,
		DefaultHeaders: map[string]string{"Content-Type": "application/json"},
		UserAgent:      "flowbaker-qiniu/1.0",
		ImagePoll:      DefaultPollPolicy(5 * time.Minute),
		VideoPoll:      DefaultPollPolicy(10 * time.Minute),
		CensorPoll:     DefaultPollPolicy(10 * time.Minute),
	}
}

// ClientOption is a function that modifies ClientConfig
type ClientOption func(*ClientConfig)

func WithAPIKey(apiKey string) ClientOption {
	return func(c *ClientConfig) {
		c.APIKey = apiKey
	}
}

// WithBaseURL sets the API base URL. Empty values keep the default.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *ClientConfig) {
		if baseURL != "" {
			c.BaseURL = baseURL
		}
	}
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *ClientConfig) {
		c.HTTPClient = client
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

func WithUserAgent(userAgent string) ClientOption {
	return func(c *ClientConfig) {
		c.UserAgent = userAgent
	}
}

// WithPollPolicy applies the same polling policy to every long-running job kind.
func WithPollPolicy(policy PollPolicy) ClientOption {
	return func(c *ClientConfig) {
		c.ImagePoll = policy
		c.VideoPoll = policy
		c.CensorPoll = policy
	}
}

func WithImagePollPolicy(policy PollPolicy) ClientOption {
	return func(c *ClientConfig) {
		c.ImagePoll = policy
	}
}

func WithVideoPollPolicy(policy PollPolicy) ClientOption {
	return func(c *ClientConfig) {
		c.VideoPoll = policy
	}
}

func WithCensorPollPolicy(policy PollPolicy) ClientOption {
	return func(c *ClientConfig) {
		c.CensorPoll = policy
	}
}
