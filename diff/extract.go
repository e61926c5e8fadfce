// Package diff obtains unified diffs from git and recovers the changed file
// list from them.
package diff

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/m4xw311/review-mcp/errors"
	"github.com/m4xw311/review-mcp/gitexec"
	"github.com/rs/zerolog"
)

// Source selects which changes are diffed.
type Source string

const (
	Staged  Source = "staged"
	Working Source = "working"
	Branch  Source = "branch"
)

// Sources lists every accepted Source.
var Sources = []Source{Staged, Working, Branch}

// TruncationMarker is appended to diffs cut at the character limit.
const TruncationMarker = "\n\n... (diff truncated)"

// Request describes one diff to extract.
type Request struct {
	Source  Source
	BaseRef string
	HeadRef string
}

// Args returns the git argv for r, or an InvalidArgument error when the
// request is incomplete.
func (r Request) Args() ([]string, error) {
	switch r.Source {
	case Staged:
		return []string{"git", "diff", "--staged"}, nil
	case Working:
		return []string{"git", "diff"}, nil
	case Branch:
		if r.BaseRef == "" || r.HeadRef == "" {
			return nil, errors.InvalidArgument.New("branch diff requires base_ref and head_ref")
		}
		return []string{"git", "diff", r.BaseRef + "..." + r.HeadRef}, nil
	default:
		return nil, errors.InvalidArgument.New("unknown diff_source %q, expected staged, working or branch", r.Source)
	}
}

// Extractor runs git diff and bounds the result.
type Extractor struct {
	git      gitexec.Runner
	maxChars int
	log      zerolog.Logger
}

func NewExtractor(git gitexec.Runner, maxChars int, log zerolog.Logger) *Extractor {
	return &Extractor{git: git, maxChars: maxChars, log: log}
}

// Extract returns the trimmed diff for req in the repository at root. The
// result is empty when there are no changes.
func (e *Extractor) Extract(ctx context.Context, root string, req Request) (string, error) {
	argv, err := req.Args()
	if err != nil {
		return "", err
	}
	out, err := gitexec.Output(ctx, e.git, errors.CommandError, root, argv...)
	if err != nil {
		return "", err
	}
	d := strings.TrimSpace(out)
	truncated := Truncate(d, e.maxChars)
	if len(truncated) != len(d) {
		e.log.Debug().Int("chars", utf8.RuneCountInString(d)).Int("max_chars", e.maxChars).Msg("diff truncated")
	}
	return truncated, nil
}

// Truncate cuts s to maxChars characters and appends TruncationMarker. Text
// within the limit is returned unchanged.
func Truncate(s string, maxChars int) string {
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i] + TruncationMarker
		}
		n++
	}
	return s
}
