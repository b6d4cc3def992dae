// Package claude provides a narrative generator backed by the Anthropic API
package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/bobmcallan/stockbot/internal/common"
	"github.com/bobmcallan/stockbot/internal/interfaces"
)

const (
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 4096
)

// Client implements interfaces.NarrativeGenerator using Claude
type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int
	logger    *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens caps the response length
func WithMaxTokens(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Claude client. Extra request options (base URL,
// HTTP client) are passed through to the SDK.
func NewClient(apiKey string, opts []ClientOption, requestOpts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	c := &Client{
		client:    anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, requestOpts...)...),
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
		logger:    common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// GenerateContent sends prompt as a single user message and returns the text reply
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	c.logger.Debug().Str("model", c.model).Int("prompt_len", len(prompt)).Msg("Claude request")

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("no text in response")
	}
	return sb.String(), nil
}

var _ interfaces.NarrativeGenerator = (*Client)(nil)
