package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m4xw311/review-mcp/errors"
)

// maxTokens bounds the length of a review from the Anthropic models.
const maxTokens = 4096

// AnthropicLLMClient is a client for the Anthropic API. The API has no JSON
// response mode, so the system instruction alone asks for JSON.
type AnthropicLLMClient struct {
	client *anthropic.Client
}

// NewAnthropicLLMClient creates a new AnthropicLLMClient.
func NewAnthropicLLMClient(apiKey string, extra ...option.RequestOption) (*AnthropicLLMClient, error) {
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY environment variable not set")
	}

	options := append([]option.RequestOption{option.WithAPIKey(apiKey)}, extra...)
	client := anthropic.NewClient(options...)

	return &AnthropicLLMClient{client: &client}, nil
}

// Complete sends the prompt pair to the Messages API and concatenates the
// text blocks of the reply.
func (a *AnthropicLLMClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", errors.Wrapf(err, "failed to send message to Anthropic")
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", errors.New("received an empty response from Anthropic")
	}
	return text.String(), nil
}
