package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// ChatClient talks to an OpenAI-compatible /chat/completions endpoint
// (Groq by default).
type ChatClient struct {
	client *resty.Client
	model  string
}

type ChatOptions struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewChatClient returns a Disabled generator when no API key is available.
func NewChatClient(opts ChatOptions) Generator {
	if opts.APIKey == "" {
		return Disabled{Name: "test generator"}
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/")).
		SetAuthToken(opts.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(opts.Timeout)
	return &ChatClient{client: client, model: opts.Model}
}

func (c *ChatClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"model": c.model,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
		}).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", c.model, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%s returned %d: %s", c.model, resp.StatusCode(), truncate(resp.String(), 200))
	}

	content := gjson.Get(resp.String(), "choices.0.message.content")
	if !content.Exists() || content.String() == "" {
		return "", fmt.Errorf("no content in %s response", c.model)
	}
	return content.String(), nil
}
