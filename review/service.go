// Package review composes the pipeline behind the server's tools: resolve
// the repository, extract the diff, gather context and ask the model.
package review

import (
	"context"
	"strings"

	"github.com/m4xw311/review-mcp/diff"
	"github.com/m4xw311/review-mcp/errors"
	"github.com/m4xw311/review-mcp/gitexec"
	"github.com/m4xw311/review-mcp/llm"
	"github.com/rs/zerolog"
)

// DefaultFocus is used when the caller does not name one.
const DefaultFocus = "bugs, edge cases, security, performance, readability"

// Reviewer is the model capability: one request in, decoded JSON out.
type Reviewer interface {
	Review(ctx context.Context, req llm.ReviewRequest) (map[string]interface{}, error)
}

// RepoResolver turns a caller-supplied path into a verified repository root.
type RepoResolver interface {
	Resolve(ctx context.Context, path string) (string, error)
}

// DiffExtractor produces the diff text for a request.
type DiffExtractor interface {
	Extract(ctx context.Context, root string, req diff.Request) (string, error)
}

// ContextReader reads changed files from the working tree.
type ContextReader interface {
	Read(root string, files []string) map[string]string
}

// Options carries the per-process defaults the service needs.
type Options struct {
	DefaultModel string
	MaxFiles     int
}

// Service runs review_git_diff and repo_info. It holds no mutable state, so
// concurrent calls are safe.
type Service struct {
	resolver  RepoResolver
	extractor DiffExtractor
	reader    ContextReader
	reviewer  Reviewer
	git       gitexec.Runner
	opts      Options
	log       zerolog.Logger
}

func NewService(resolver RepoResolver, extractor DiffExtractor, reader ContextReader, reviewer Reviewer,
	git gitexec.Runner, opts Options, log zerolog.Logger) *Service {
	return &Service{
		resolver:  resolver,
		extractor: extractor,
		reader:    reader,
		reviewer:  reviewer,
		git:       git,
		opts:      opts,
		log:       log,
	}
}

// DiffParams are the review_git_diff arguments after defaults are applied.
type DiffParams struct {
	RepoRoot            string
	DiffSource          diff.Source
	BaseRef             string
	HeadRef             string
	Focus               string
	Model               string
	IncludeContextFiles bool
}

// NoChanges is the result returned without calling the model when the diff
// is empty.
func NoChanges() map[string]interface{} {
	return map[string]interface{}{
		"summary": "No changes.",
		"issues":  []interface{}{},
	}
}

// ReviewGitDiff reviews the selected changes of the repository.
func (s *Service) ReviewGitDiff(ctx context.Context, p DiffParams) (map[string]interface{}, error) {
	if p.DiffSource == "" {
		p.DiffSource = diff.Staged
	}
	if p.Focus == "" {
		p.Focus = DefaultFocus
	}
	if p.Model == "" {
		p.Model = s.opts.DefaultModel
	}

	root, err := s.resolver.Resolve(ctx, p.RepoRoot)
	if err != nil {
		return nil, err
	}

	d, err := s.extractor.Extract(ctx, root, diff.Request{Source: p.DiffSource, BaseRef: p.BaseRef, HeadRef: p.HeadRef})
	if err != nil {
		return nil, err
	}
	if d == "" {
		s.log.Info().Str("repo_root", root).Str("diff_source", string(p.DiffSource)).Msg("no changes to review")
		return NoChanges(), nil
	}

	files := map[string]string{}
	if p.IncludeContextFiles {
		changed := diff.ChangedFiles(d, s.opts.MaxFiles)
		files = s.reader.Read(root, changed)
		s.log.Debug().Int("changed_files", len(changed)).Int("context_files", len(files)).Msg("gathered context")
	}

	return s.reviewer.Review(ctx, llm.ReviewRequest{
		Model:   p.Model,
		Focus:   p.Focus,
		Diff:    d,
		Context: files,
	})
}

// RepoInfo is the result of repo_info.
type RepoInfo struct {
	Toplevel string `json:"toplevel"`
	Branch   string `json:"branch"`
	Remotes  string `json:"remotes"`
}

// RepoInfo reports the toplevel path, current branch and remotes.
func (s *Service) RepoInfo(ctx context.Context, repoRoot string) (*RepoInfo, error) {
	root, err := s.resolver.Resolve(ctx, repoRoot)
	if err != nil {
		return nil, err
	}

	queries := [][]string{
		{"git", "rev-parse", "--show-toplevel"},
		{"git", "rev-parse", "--abbrev-ref", "HEAD"},
		{"git", "remote", "-v"},
	}
	out := make([]string, len(queries))
	for i, argv := range queries {
		o, err := gitexec.Output(ctx, s.git, errors.CommandError, root, argv...)
		if err != nil {
			return nil, err
		}
		out[i] = strings.TrimSpace(o)
	}
	return &RepoInfo{Toplevel: out[0], Branch: out[1], Remotes: out[2]}, nil
}
