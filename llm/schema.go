package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Severities are the accepted values of an issue's severity.
var Severities = []string{"critical", "high", "medium", "low", "nit"}

// ReviewJSONSchema describes the JSON object the model must return. It is
// embedded in the system instruction; the response is not checked against
// it unless validation is enabled.
var ReviewJSONSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"summary": map[string]interface{}{"type": "string"},
		"issues": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"severity": map[string]interface{}{
						"type": "string",
						"enum": Severities,
					},
					"file":   map[string]interface{}{"type": []string{"string", "null"}},
					"line":   map[string]interface{}{"type": []string{"integer", "null"}},
					"title":  map[string]interface{}{"type": "string"},
					"detail": map[string]interface{}{"type": "string"},
					"patch": map[string]interface{}{
						"type":        []string{"string", "null"},
						"description": "If possible, propose a unified diff patch.",
					},
				},
				"required": []string{"severity", "file", "line", "title", "detail", "patch"},
			},
		},
	},
	"required": []string{"summary", "issues"},
}

// SystemPrompt is the reviewer persona plus the embedded schema.
func SystemPrompt() (string, error) {
	schema, err := marshalNoEscape(ReviewJSONSchema)
	if err != nil {
		return "", err
	}
	return "You are a strict senior code reviewer. " +
		"Return ONLY valid JSON matching this schema: " + schema, nil
}

// UserPrompt lays out the focus, the diff and the context files serialized
// as a JSON object of path to content.
func UserPrompt(focus, diff string, files map[string]string) (string, error) {
	if files == nil {
		files = map[string]string{}
	}
	ctx, err := marshalNoEscape(files)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Focus: %s\n\n"+
		"=== DIFF (unified) ===\n%s\n\n"+
		"=== CONTEXT FILES (json map: path -> content) ===\n%s", focus, diff, ctx), nil
}

// marshalNoEscape encodes v without HTML escaping so source code reaches the
// model as written.
func marshalNoEscape(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
