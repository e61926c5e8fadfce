// Package tools exposes the review service as MCP tools.
package tools

import (
	"context"
	"encoding/json"

	"github.com/m4xw311/review-mcp/diff"
	"github.com/m4xw311/review-mcp/errors"
	"github.com/m4xw311/review-mcp/review"
	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

const (
	ReviewGitDiffName = "review_git_diff"
	RepoInfoName      = "repo_info"
)

// ReviewGitDiffParams are the arguments of review_git_diff.
type ReviewGitDiffParams struct {
	RepoRoot            string `json:"repo_root" jsonschema:"path inside the git repository to review"`
	DiffSource          string `json:"diff_source,omitempty" jsonschema:"which changes to review: staged (default), working or branch"`
	BaseRef             string `json:"base_ref,omitempty" jsonschema:"base ref, required when diff_source is branch"`
	HeadRef             string `json:"head_ref,omitempty" jsonschema:"head ref, required when diff_source is branch"`
	Focus               string `json:"focus,omitempty" jsonschema:"what the reviewer should concentrate on"`
	Model               string `json:"model,omitempty" jsonschema:"model name, defaults to the configured model"`
	IncludeContextFiles *bool  `json:"include_context_files,omitempty" jsonschema:"send the current content of changed files along with the diff (default true)"`
}

// RepoInfoParams are the arguments of repo_info.
type RepoInfoParams struct {
	RepoRoot string `json:"repo_root" jsonschema:"path inside the git repository"`
}

// Handlers adapts review.Service to the MCP tool handler signature.
type Handlers struct {
	svc *review.Service
	log zerolog.Logger
}

func NewHandlers(svc *review.Service, log zerolog.Logger) *Handlers {
	return &Handlers{svc: svc, log: log}
}

// Register adds review_git_diff and repo_info to server.
func Register(server *mcp.Server, svc *review.Service, log zerolog.Logger) error {
	h := NewHandlers(svc, log)

	schema, err := reviewGitDiffSchema()
	if err != nil {
		return errors.Wrapf(err, "failed to build %s input schema", ReviewGitDiffName)
	}
	mcp.AddTool(server, &mcp.Tool{
		Name: ReviewGitDiffName,
		Description: "Review the staged, working-tree or branch diff of a local git repository. " +
			"Returns JSON with a summary and a list of issues.",
		InputSchema: schema,
	}, h.ReviewGitDiff)

	mcp.AddTool(server, &mcp.Tool{
		Name:        RepoInfoName,
		Description: "Report the toplevel path, current branch and remotes of a local git repository.",
	}, h.RepoInfo)
	return nil
}

// reviewGitDiffSchema infers the input schema and restricts diff_source to
// the known sources.
func reviewGitDiffSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[ReviewGitDiffParams]()
	if err != nil {
		return nil, err
	}
	if prop, ok := schema.Properties["diff_source"]; ok {
		for _, s := range diff.Sources {
			prop.Enum = append(prop.Enum, string(s))
		}
	}
	return schema, nil
}

func (h *Handlers) ReviewGitDiff(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[ReviewGitDiffParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	includeContext := true
	if args.IncludeContextFiles != nil {
		includeContext = *args.IncludeContextFiles
	}

	h.log.Info().
		Str("tool", ReviewGitDiffName).
		Str("repo_root", args.RepoRoot).
		Str("diff_source", args.DiffSource).
		Bool("include_context_files", includeContext).
		Msg("tool called")

	result, err := h.svc.ReviewGitDiff(ctx, review.DiffParams{
		RepoRoot:            args.RepoRoot,
		DiffSource:          diff.Source(args.DiffSource),
		BaseRef:             args.BaseRef,
		HeadRef:             args.HeadRef,
		Focus:               args.Focus,
		Model:               args.Model,
		IncludeContextFiles: includeContext,
	})
	if err != nil {
		h.log.Error().Err(err).Str("tool", ReviewGitDiffName).Str("kind", errors.KindOf(err).String()).Msg("tool failed")
		return nil, err
	}
	return jsonResult(result)
}

func (h *Handlers) RepoInfo(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[RepoInfoParams]) (*mcp.CallToolResultFor[any], error) {
	h.log.Info().Str("tool", RepoInfoName).Str("repo_root", params.Arguments.RepoRoot).Msg("tool called")

	info, err := h.svc.RepoInfo(ctx, params.Arguments.RepoRoot)
	if err != nil {
		h.log.Error().Err(err).Str("tool", RepoInfoName).Str("kind", errors.KindOf(err).String()).Msg("tool failed")
		return nil, err
	}
	return jsonResult(info)
}

func jsonResult(v interface{}) (*mcp.CallToolResultFor[any], error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode tool result")
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}, nil
}
