// Package groq provides an implementation of the generation.ModelClient
// interface backed by Groq's OpenAI-compatible chat completion API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fastlesson/fastlesson-api/internal/config"
	"github.com/fastlesson/fastlesson-api/internal/generation"
)

const defaultTimeout = 60 * time.Second

// Client handles communication with the Groq chat completion API for any
// model in the groq provider family. It implements generation.ModelClient.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// chatMessage represents a message in the chat completion request
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest represents the request body for chat completion
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// chatCompletionResponse represents the response from chat completion
type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// NewClient creates a Groq client from the LLM configuration.
func NewClient(logger *slog.Logger, cfg config.LLMConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("%w: groq API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.GroqBaseURL == "" {
		return nil, fmt.Errorf("%w: groq base URL cannot be empty", generation.ErrInvalidConfig)
	}

	return &Client{
		logger: logger.With("component", "groq_client"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: cfg.GroqBaseURL,
		apiKey:  cfg.GroqAPIKey,
	}, nil
}

// Complete sends the prompt to the named Groq model and returns the raw
// response text. Unlike the Gemini client it does not retry internally:
// the dispatcher's attempt budget covers transport failures here.
func (c *Client) Complete(ctx context.Context, model string, req generation.Request) (string, error) {
	if req.Prompt == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", generation.ErrInvalidConfig)
	}

	reqBody := chatCompletionRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/chat/completions",
		bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.DebugContext(ctx, "Making Groq API call",
		"model", model,
		"prompt_length", len(req.Prompt))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to unmarshal response: %v",
			generation.ErrInvalidResponse, err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", generation.ErrInvalidResponse)
	}

	content := chatResp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("%w: empty message content", generation.ErrInvalidResponse)
	}

	c.logger.DebugContext(ctx, "Groq API call successful",
		"model", model,
		"response_length", len(content),
		"total_tokens", chatResp.Usage.TotalTokens)

	return content, nil
}
