// Package repo turns a caller-supplied path into a verified repository root.
package repo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/m4xw311/review-mcp/errors"
)

// Guard validates directories against an optional allowlist of roots.
type Guard struct {
	roots []string
}

// NewGuard canonicalizes the allowed roots once. Blank entries are ignored;
// an empty list disables the allowlist.
func NewGuard(allowedRoots []string) *Guard {
	g := &Guard{}
	for _, r := range allowedRoots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		g.roots = append(g.roots, Canonical(r))
	}
	return g
}

// Roots returns the canonical allowed roots.
func (g *Guard) Roots() []string { return g.roots }

// Check resolves path and verifies that it is an existing directory inside
// the allowlist. It returns the canonical path.
func (g *Guard) Check(path string) (string, error) {
	root := Canonical(path)

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", errors.NotFound.New("repo_root not found: %s", root)
	}
	if !g.Allows(root) {
		return "", errors.PermissionDenied.New("repo_root is not under REVIEW_ALLOWED_ROOTS: %s", root)
	}
	return root, nil
}

// Allows reports whether a canonical path equals or descends from an allowed
// root. The separator suffix keeps /home/me from admitting /home/me2.
func (g *Guard) Allows(path string) bool {
	if len(g.roots) == 0 {
		return true
	}
	for _, r := range g.roots {
		if path == r || strings.HasPrefix(path, withSeparator(r)) {
			return true
		}
	}
	return false
}

// Canonical expands a leading ~, makes path absolute and resolves symlinks.
// Paths that do not exist are returned cleaned but otherwise unresolved.
func Canonical(path string) string {
	p := ExpandHome(strings.TrimSpace(path))
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return filepath.Clean(p)
}

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// Contains reports whether path lies strictly inside root. Both must be
// canonical.
func Contains(root, path string) bool {
	return strings.HasPrefix(path, withSeparator(root))
}

func withSeparator(p string) string {
	if strings.HasSuffix(p, string(filepath.Separator)) {
		return p
	}
	return p + string(filepath.Separator)
}
