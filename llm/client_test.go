package llm

import (
	"context"
	"testing"

	"github.com/m4xw311/review-mcp/config"
)

func TestNewSelectsClient(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, &config.Config{LLMClient: "mock"})
	if err != nil {
		t.Fatalf("New(mock) failed: %v", err)
	}
	if _, ok := c.(*MockLLMClient); !ok {
		t.Errorf("New(mock) = %T", c)
	}

	c, err = New(ctx, &config.Config{LLMClient: "openai", APIKey: "k"})
	if err != nil {
		t.Fatalf("New(openai) failed: %v", err)
	}
	if _, ok := c.(*OpenAILLMClient); !ok {
		t.Errorf("New(openai) = %T", c)
	}

	if _, err := New(ctx, &config.Config{LLMClient: "anthropic"}); err == nil {
		t.Error("expected missing key error for anthropic")
	}
	if _, err := New(ctx, &config.Config{LLMClient: "nope"}); err == nil {
		t.Error("expected error for unknown client")
	}
}

func TestMockDefaultResponse(t *testing.T) {
	m := &MockLLMClient{}
	text, err := m.Complete(context.Background(), CompletionRequest{Model: "x"})
	if err != nil || text != mockResponse {
		t.Fatalf("Complete = %q, %v", text, err)
	}
}
