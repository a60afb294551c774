// Package llm wraps the LLM backend: an OpenAI-compatible chat client with
// retry and circuit-breaker resilience, plus the heuristics for recovering
// structured JSON from free-text model replies.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog/log"
)

// ErrBreakerOpen is returned when the circuit breaker rejects a call.
var ErrBreakerOpen = errors.New("llm: circuit breaker open")

// Request is one chat completion request.
type Request struct {
	System string
	Prompt string
}

// Client is the LLM backend surface the agents call.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Model() string
}

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client     openai.Client
	model      string
	breaker    *Breaker
	maxRetries int
	retryDelay time.Duration
}

// NewOpenAIClient builds a client for one model. baseURL and apiKey may be
// empty, in which case the SDK falls back to its environment defaults.
func NewOpenAIClient(model, baseURL, apiKey string) *OpenAIClient {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIClient{
		client:     openai.NewClient(opts...),
		model:      model,
		breaker:    NewBreaker(),
		maxRetries: 3,
		retryDelay: 2 * time.Second,
	}
}

// Model returns the model identifier this client targets.
func (c *OpenAIClient) Model() string { return c.model }

// Complete sends one chat request, retrying with exponential backoff on
// failure. Consecutive failures eventually open the circuit breaker and
// subsequent calls fail fast with ErrBreakerOpen until the cooldown passes.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if !c.breaker.Allow() {
		return "", ErrBreakerOpen
	}

	requestID := uuid.NewString()
	logger := log.With().Str("requestId", requestID).Str("model", c.model).Logger()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		reply, err := c.call(ctx, req)
		if err == nil {
			c.breaker.RecordSuccess()
			logger.Debug().Int("attempt", attempt+1).Int("replyLen", len(reply)).Msg("LLM call succeeded")
			return reply, nil
		}
		lastErr = err
		logger.Warn().Err(err).Int("attempt", attempt+1).Int("maxAttempts", c.maxRetries+1).Msg("LLM call failed")

		if ctx.Err() != nil {
			break
		}
		if attempt < c.maxRetries {
			delay := c.retryDelay * (1 << attempt)
			select {
			case <-ctx.Done():
				c.breaker.RecordFailure()
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	c.breaker.RecordFailure()
	return "", fmt.Errorf("llm call after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *OpenAIClient) call(ctx context.Context, req Request) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
