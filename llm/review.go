package llm

import (
	"context"
	"encoding/json"

	"github.com/m4xw311/review-mcp/errors"
	"github.com/rs/zerolog"
)

// ReviewRequest is everything the model sees for one review.
type ReviewRequest struct {
	Model   string
	Focus   string
	Diff    string
	Context map[string]string
}

// Reviewer turns a ReviewRequest into one model call and decodes the reply.
type Reviewer struct {
	client   LLMClient
	validate bool
	log      zerolog.Logger
}

// NewReviewer wraps client. With validate set, replies that do not match
// ReviewJSONSchema are rejected instead of being passed through.
func NewReviewer(client LLMClient, validate bool, log zerolog.Logger) *Reviewer {
	return &Reviewer{client: client, validate: validate, log: log}
}

// Review sends exactly one request and returns the decoded JSON object. A
// failed call or a reply that is not a JSON object is a ModelError.
func (r *Reviewer) Review(ctx context.Context, req ReviewRequest) (map[string]interface{}, error) {
	system, err := SystemPrompt()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build system prompt")
	}
	user, err := UserPrompt(req.Focus, req.Diff, req.Context)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build user prompt")
	}

	r.log.Debug().Str("model", req.Model).Int("diff_chars", len(req.Diff)).
		Int("context_files", len(req.Context)).Msg("requesting review")

	text, err := r.client.Complete(ctx, CompletionRequest{
		Model:  req.Model,
		System: system,
		User:   user,
		JSON:   true,
	})
	if err != nil {
		return nil, errors.ModelError.Wrapf(err, "model call failed")
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, errors.ModelError.Wrapf(err, "model returned invalid JSON")
	}
	if result == nil {
		return nil, errors.ModelError.New("model returned null instead of a JSON object")
	}

	if r.validate {
		if err := ValidateReview(result); err != nil {
			return nil, errors.ModelError.Wrapf(err, "model response does not match the review schema")
		}
	}
	return result, nil
}
