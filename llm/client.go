package llm

import (
	"context"

	"github.com/m4xw311/review-mcp/config"
	"github.com/m4xw311/review-mcp/errors"
)

// CompletionRequest is one system + user exchange with a model.
type CompletionRequest struct {
	Model  string
	System string
	User   string
	// JSON asks for the provider's JSON-only response mode where it has one.
	JSON bool
}

// LLMClient is the interface for interacting with a Large Language Model.
type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// New creates the client selected by cfg.LLMClient.
func New(ctx context.Context, cfg *config.Config) (LLMClient, error) {
	switch cfg.LLMClient {
	case "openai":
		return NewOpenAILLMClient(cfg.APIKey, cfg.BaseURL)
	case "anthropic":
		return NewAnthropicLLMClient(cfg.APIKey)
	case "gemini":
		return NewGeminiLLMClient(ctx, cfg.APIKey)
	case "bedrock":
		return NewBedrockLLMClient(ctx, cfg.BaseURL)
	case "mock":
		return &MockLLMClient{}, nil
	default:
		return nil, errors.New("unknown llm %q", cfg.LLMClient)
	}
}

// MockLLMClient returns a canned response without any network call. It is
// useful for wiring checks of the server and as a test double.
type MockLLMClient struct {
	Response string
	Err      error
	Requests []CompletionRequest
}

const mockResponse = `{"summary": "Mock review: no model was called.", "issues": []}`

func (m *MockLLMClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	if m.Response == "" {
		return mockResponse, nil
	}
	return m.Response, nil
}
