package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/devflow/chronicle-go/internal/cache"
	"github.com/devflow/chronicle-go/internal/cherr"
)

// Options configures the LLM client.
type Options struct {
	APIKey            string
	Model             string
	CacheTTL          time.Duration
	RequestTimeout    time.Duration
	RequestsPerMinute int
}

// Client wraps the OpenAI chat API with response caching and request
// pacing. Identical requests within the cache TTL never reach the API.
type Client struct {
	api      *openai.Client
	model    string
	store    *cache.Store
	cacheTTL time.Duration
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   *logrus.Logger
}

// NewClient creates an LLM client. The API key is required; everything
// else has a usable default.
func NewClient(opts Options, store *cache.Store, logger *logrus.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, cherr.Config("LLM API key not configured, run 'chron configure' or set CHRONICLE_API_KEY")
	}
	if opts.Model == "" {
		opts.Model = openai.GPT4oMini
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 20
	}

	return &Client{
		api:      openai.NewClient(opts.APIKey),
		model:    opts.Model,
		store:    store,
		cacheTTL: opts.CacheTTL,
		timeout:  opts.RequestTimeout,
		limiter:  rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), 1),
		logger:   logger,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends a prompt and returns the response text, serving repeats
// from the cache. Failed requests are returned to the caller and never
// cached.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	params := map[string]any{"max_tokens": maxTokens}
	key := cache.Fingerprint(c.model, prompt, params)

	if cached, ok := c.store.Get(key, c.cacheTTL); ok {
		c.logger.WithField("key", key[:12]).Debug("LLM cache hit")
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", cherr.External(err, "LLM completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", cherr.New(cherr.KindExternal, cherr.SeverityMedium, "LLM returned no choices")
	}

	response := resp.Choices[0].Message.Content
	c.logger.WithFields(logrus.Fields{
		"model":        c.model,
		"prompt_len":   len(prompt),
		"response_len": len(response),
		"tokens_used":  resp.Usage.TotalTokens,
	}).Debug("LLM completion")

	c.store.Put(key, response, cache.Meta{Model: c.model, Prompt: prompt, Params: params})

	return response, nil
}
