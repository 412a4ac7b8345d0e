// Package agents talks to the generative text endpoint: coaching advice,
// macro context, market scans and note refinement, each with a fixed
// fallback text when the call fails.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"trademind/internal/errors"
	"trademind/internal/models"
)

// Prompt is a single text generation request.
type Prompt struct {
	Text  string
	Model string
	// WebSearch asks the backend to ground the answer in live search results.
	WebSearch bool
	// FastPath disables extended reasoning where the backend supports it.
	FastPath bool
}

// Completion is the generated text and any citations the backend returned.
type Completion struct {
	Text    string
	Sources []models.Source
}

// LLMClient is a text generation backend.
type LLMClient interface {
	Generate(ctx context.Context, p Prompt) (Completion, error)
	Provider() string
}

// OpenAIClient implements LLMClient using the OpenAI chat completions API.
// It has no search grounding, so completions never carry sources.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// DefaultOpenAIModel is used when the configured model is not an OpenAI one.
const DefaultOpenAIModel = openai.GPT4oMini

// NewOpenAIClient creates a new OpenAI LLM client.
func NewOpenAIClient(apiKey string, model string) *OpenAIClient {
	return NewOpenAIClientWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewOpenAIClientWithConfig creates a client from a full go-openai config,
// e.g. to point it at a compatible gateway.
func NewOpenAIClientWithConfig(cfg openai.ClientConfig, model string) *OpenAIClient {
	if !strings.HasPrefix(model, "gpt") {
		model = DefaultOpenAIModel
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Provider implements LLMClient.
func (c *OpenAIClient) Provider() string { return "openai" }

// Generate sends the prompt as a single user message.
func (c *OpenAIClient) Generate(ctx context.Context, p Prompt) (Completion, error) {
	model := c.model
	if p.Model != "" && strings.HasPrefix(p.Model, "gpt") {
		model = p.Model
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: p.Text},
		},
	})
	if err != nil {
		return Completion{}, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, errors.Wrap(errors.ErrEmptyResponse, "no choices from openai")
	}
	return Completion{Text: resp.Choices[0].Message.Content}, nil
}
