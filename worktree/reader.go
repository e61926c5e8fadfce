// Package worktree reads changed files from a repository's working tree to
// give the model context beyond the diff hunks.
package worktree

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/m4xw311/review-mcp/repo"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/unicode"
)

// Reader collects file contents under a cumulative byte budget.
type Reader struct {
	maxBytes int64
	hidden   []string
	log      zerolog.Logger
}

// NewReader returns a Reader that sends at most maxBytes of file content in
// total and never reads files matching one of the hidden globs.
func NewReader(maxBytes int64, hidden []string, log zerolog.Logger) *Reader {
	return &Reader{maxBytes: maxBytes, hidden: hidden, log: log}
}

// Read returns the contents of files, keyed by the path as given. root must
// be canonical. Paths that leave root, do not exist, are not regular files or
// are hidden are skipped. Reading stops at the first file that would push
// the total past the budget.
func (r *Reader) Read(root string, files []string) map[string]string {
	out := make(map[string]string)
	var used int64
	for _, rel := range files {
		path, ok := r.resolve(root, rel)
		if !ok {
			continue
		}
		b, err := os.ReadFile(path)
		if err != nil {
			r.log.Warn().Err(err).Str("path", rel).Msg("skipping unreadable context file")
			continue
		}
		if used+int64(len(b)) > r.maxBytes {
			r.log.Debug().Str("path", rel).Int64("used", used).Int64("max_bytes", r.maxBytes).
				Msg("context budget exhausted")
			break
		}
		out[rel] = decode(b)
		used += int64(len(b))
	}
	return out
}

// resolve maps rel onto a regular file strictly inside root.
func (r *Reader) resolve(root, rel string) (string, bool) {
	p := rel
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, rel)
	}
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", false
	}
	if !repo.Contains(root, resolved) {
		r.log.Warn().Str("path", rel).Msg("skipping context file outside repository")
		return "", false
	}
	info, err := os.Stat(resolved)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	if r.isHidden(root, resolved) {
		r.log.Debug().Str("path", rel).Msg("skipping hidden context file")
		return "", false
	}
	return resolved, true
}

func (r *Reader) isHidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range r.hidden {
		if match, err := doublestar.Match(pattern, rel); err == nil && match {
			return true
		}
	}
	return false
}

// decode converts b to text, replacing invalid UTF-8 with U+FFFD.
func decode(b []byte) string {
	text, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(text)
}
