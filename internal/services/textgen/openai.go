// Package textgen drafts recommendations with an OpenAI-compatible chat completion API.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"EcoTrack/internal/domain/models"
	domsvc "EcoTrack/internal/domain/service"
)

// Options tune the chat completion request.
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// ChatClient implements service.TextGenerator over /chat/completions.
type ChatClient struct {
	*HTTPServiceBase
	model       string
	maxTokens   int
	temperature float64
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewChatClient(opts Options) *ChatClient {
	if opts.Model == "" {
		opts.Model = "gpt-3.5-turbo"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}
	return &ChatClient{
		HTTPServiceBase: NewHTTPServiceBase(opts.BaseURL, opts.APIKey, opts.Timeout),
		model:           opts.Model,
		maxTokens:       opts.MaxTokens,
		temperature:     opts.Temperature,
	}
}

// GenerateRecommendations sends one completion request and parses the reply.
func (c *ChatClient) GenerateRecommendations(ctx context.Context, profile models.CompanyProfile) ([]models.Recommendation, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(profile)},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	var resp chatResponse
	if err := c.PostJSON(ctx, "/chat/completions", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	recs, err := parseRecommendations(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parse completion: %w", err)
	}
	return recs, nil
}

var _ domsvc.TextGenerator = (*ChatClient)(nil)
