package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"google.golang.org/genai"

	"github.com/fastlesson/fastlesson-api/internal/config"
	"github.com/fastlesson/fastlesson-api/internal/generation"
)

// Client calls the Gemini API for any model in the google provider family.
// It implements generation.ModelClient and retries transient transport
// errors internally with exponential backoff; the dispatcher above it only
// sees the final outcome of each call.
type Client struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// client is the Gemini API client for making requests
	client *genai.Client
}

// NewClient creates a Gemini client from the LLM configuration.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing the API key and retry settings
//
// Returns:
//   - A properly initialized Client or an error if initialization fails
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Client{
		logger: logger.With("component", "gemini_client"),
		config: cfg,
		client: client,
	}, nil
}

// Complete sends the prompt to the named Gemini model and returns the raw
// response text.
//
// Transient errors are retried up to config.MaxRetries times using
// exponential backoff with jitter. Permanent errors (content blocked by
// safety filters, empty responses) are returned immediately without
// retrying.
func (c *Client) Complete(ctx context.Context, model string, req generation.Request) (string, error) {
	if req.Prompt == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", generation.ErrInvalidConfig)
	}

	maxRetries := c.config.MaxRetries
	baseDelaySeconds := c.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		c.logger.WarnContext(ctx, "Invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	if baseDelaySeconds < 1 {
		c.logger.WarnContext(ctx, "Invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		TopP:            genai.Ptr(float32(req.TopP)),
		MaxOutputTokens: int32(req.MaxTokens),
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		attemptNum := attempt + 1 // For logging (1-based)
		c.logger.DebugContext(ctx, "Making Gemini API call",
			"model", model,
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		text, err := c.generateOnce(ctx, model, req.Prompt, genConfig)
		if err == nil {
			c.logger.DebugContext(ctx, "Gemini API call successful",
				"model", model,
				"attempt", attemptNum,
				"response_length", len(text))
			return text, nil
		}

		c.logger.ErrorContext(ctx, "Gemini API call failed",
			"model", model,
			"attempt", attemptNum,
			"error", err)

		// Permanent errors are not worth another attempt.
		if errors.Is(err, generation.ErrContentBlocked) || errors.Is(err, generation.ErrInvalidResponse) {
			return "", err
		}

		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, maxRetries, err)
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		c.logger.DebugContext(ctx, "Retrying after delay",
			"model", model,
			"attempt", attemptNum,
			"delay_seconds", delay.Seconds())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			c.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"model", model,
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}

	return "", fmt.Errorf("%w: failed after %d attempts",
		generation.ErrTransientFailure, maxRetries+1)
}

// generateOnce performs a single GenerateContent call and classifies the
// outcome. Transport errors come back unwrapped so the retry loop treats
// them as transient; everything else maps to a permanent sentinel.
func (c *Client) generateOnce(
	ctx context.Context,
	model string,
	prompt string,
	genConfig *genai.GenerateContentConfig,
) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), genConfig)
	if err != nil {
		return "", err
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: response stopped by safety filters", generation.ErrContentBlocked)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
	}

	return text, nil
}
