package llm

import (
	"encoding/json"
	"testing"
)

func TestCreateBedrockRequest(t *testing.T) {
	body, err := createBedrockRequest(CompletionRequest{Model: "anthropic.claude", System: "sys", User: "Hello!"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var req map[string]interface{}
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("request is not JSON: %v", err)
	}
	if req["anthropic_version"] != bedrockAnthropicVersion {
		t.Errorf("anthropic_version = %v", req["anthropic_version"])
	}
	if req["system"] != "sys" {
		t.Errorf("system = %v", req["system"])
	}
	messages, _ := req["messages"].([]interface{})
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	msg := messages[0].(map[string]interface{})
	if msg["role"] != "user" {
		t.Errorf("Expected role 'user', got '%v'", msg["role"])
	}
}

func TestProcessBedrockResponse(t *testing.T) {
	text, err := processBedrockResponse([]byte(`{"content": [{"type": "text", "text": "{\"summary\": \"ok\"}"}]}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if text != `{"summary": "ok"}` {
		t.Errorf("text = %q", text)
	}

	if _, err := processBedrockResponse([]byte(`{"content": []}`)); err == nil {
		t.Error("expected error for empty content")
	}
	if _, err := processBedrockResponse([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed body")
	}
}
