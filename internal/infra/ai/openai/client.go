package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	domai "github.com/labinsight/labinsight-api/internal/domain/ai"
)

const defaultMaxTokens = 2048

type Client struct {
	*openai.Client
	Model       string
	Temperature float32
	TopP        float32
}

func NewClient(apiKey, model string, temperature, topP float32) *Client {
	return &Client{
		Client:      openai.NewClient(apiKey),
		Model:       model,
		Temperature: temperature,
		TopP:        topP,
	}
}

// Generate runs one chat completion. Image-bearing requests are sent as
// multimodal text+image messages.
func (c *Client) Generate(ctx context.Context, req domai.Request) (string, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	userMsg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.User}
	if req.ImageDataURL != "" {
		userMsg = openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: req.User},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: req.ImageDataURL},
				},
			},
		}
	}

	creq := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: c.Temperature,
		TopP:        c.TopP,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			userMsg,
		},
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		creq.MaxCompletionTokens = maxTokens
	} else {
		creq.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, creq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
			return "", fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("%w: %v", domai.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", domai.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}
