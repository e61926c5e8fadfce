package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
)

func TestAnthropicComplete(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Error("Missing or wrong x-api-key header")
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "{\"summary\": "}, {"type": "text", "text": "\"ok\", \"issues\": []}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`)
	}))
	defer server.Close()

	client, err := NewAnthropicLLMClient("test-key", option.WithBaseURL(server.URL), option.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewAnthropicLLMClient failed: %v", err)
	}
	text, err := client.Complete(context.Background(), CompletionRequest{Model: "claude-test", System: "sys", User: "usr", JSON: true})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != `{"summary": "ok", "issues": []}` {
		t.Errorf("Complete = %q", text)
	}
	if got["model"] != "claude-test" {
		t.Errorf("model = %v", got["model"])
	}
	if _, ok := got["system"]; !ok {
		t.Error("expected system prompt in request")
	}
}

func TestNewAnthropicRequiresKey(t *testing.T) {
	if _, err := NewAnthropicLLMClient(""); err == nil {
		t.Fatal("expected error without API key")
	}
}
