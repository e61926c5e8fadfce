package repo

import (
	"context"

	"github.com/m4xw311/review-mcp/errors"
	"github.com/m4xw311/review-mcp/gitexec"
	"github.com/rs/zerolog"
)

// Resolver produces verified repository roots.
type Resolver struct {
	guard *Guard
	git   gitexec.Runner
	log   zerolog.Logger
}

func NewResolver(guard *Guard, git gitexec.Runner, log zerolog.Logger) *Resolver {
	return &Resolver{guard: guard, git: git, log: log}
}

// Resolve validates path with the guard and then asks git whether the
// directory belongs to a work tree.
func (r *Resolver) Resolve(ctx context.Context, path string) (string, error) {
	root, err := r.guard.Check(path)
	if err != nil {
		r.log.Debug().Err(err).Str("repo_root", path).Msg("repo_root rejected")
		return "", err
	}
	if _, err := gitexec.Output(ctx, r.git, errors.InvalidRepo, root, "git", "rev-parse", "--show-toplevel"); err != nil {
		r.log.Debug().Err(err).Str("repo_root", root).Msg("not a git repository")
		return "", err
	}
	return root, nil
}
