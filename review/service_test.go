package review

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/m4xw311/review-mcp/diff"
	"github.com/m4xw311/review-mcp/errors"
	"github.com/m4xw311/review-mcp/gitexec"
	"github.com/m4xw311/review-mcp/llm"
	"github.com/m4xw311/review-mcp/repo"
	"github.com/m4xw311/review-mcp/worktree"
	"github.com/rs/zerolog"
)

type fakeReviewer struct {
	result   map[string]interface{}
	err      error
	requests []llm.ReviewRequest
}

func (f *fakeReviewer) Review(ctx context.Context, req llm.ReviewRequest) (map[string]interface{}, error) {
	f.requests = append(f.requests, req)
	return f.result, f.err
}

type fixture struct {
	root     string
	git      *gitexec.FakeRunner
	reviewer *fakeReviewer
	svc      *Service
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	root := repo.Canonical(t.TempDir())
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	git := gitexec.NewFakeRunner().
		On(gitexec.Result{Stdout: root + "\n"}, "git", "rev-parse", "--show-toplevel")
	reviewer := &fakeReviewer{result: map[string]interface{}{"summary": "fine", "issues": []interface{}{}}}
	log := zerolog.Nop()
	svc := NewService(
		repo.NewResolver(repo.NewGuard(nil), git, log),
		diff.NewExtractor(git, 1000, log),
		worktree.NewReader(1000, nil, log),
		reviewer,
		git,
		Options{DefaultModel: "default-model", MaxFiles: 30},
		log,
	)
	return &fixture{root: root, git: git, reviewer: reviewer, svc: svc}
}

const twoFileDiff = `diff --git a/foo.py b/foo.py
--- a/foo.py
+++ b/foo.py
@@ -1 +1 @@
-old
+new
diff --git a/gone.py b/gone.py
--- a/gone.py
+++ b/gone.py
@@ -1 +1 @@
-x
+y`

func TestReviewGitDiffEmptyStagedDiff(t *testing.T) {
	f := newFixture(t, nil)
	f.git.On(gitexec.Result{Stdout: "  \n"}, "git", "diff", "--staged")

	got, err := f.svc.ReviewGitDiff(context.Background(), DiffParams{RepoRoot: f.root, IncludeContextFiles: true})
	if err != nil {
		t.Fatalf("ReviewGitDiff failed: %v", err)
	}
	want := map[string]interface{}{"summary": "No changes.", "issues": []interface{}{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if len(f.reviewer.requests) != 0 {
		t.Errorf("model must not be called for an empty diff")
	}
}

func TestReviewGitDiffWithContext(t *testing.T) {
	f := newFixture(t, map[string]string{"foo.py": "print('new')\n"})
	f.git.On(gitexec.Result{Stdout: twoFileDiff + "\n"}, "git", "diff")

	got, err := f.svc.ReviewGitDiff(context.Background(), DiffParams{
		RepoRoot:            f.root,
		DiffSource:          diff.Working,
		Focus:               "security",
		IncludeContextFiles: true,
	})
	if err != nil {
		t.Fatalf("ReviewGitDiff failed: %v", err)
	}
	if got["summary"] != "fine" {
		t.Errorf("unexpected result %v", got)
	}

	if len(f.reviewer.requests) != 1 {
		t.Fatalf("expected one model call, got %d", len(f.reviewer.requests))
	}
	req := f.reviewer.requests[0]
	want := llm.ReviewRequest{
		Model:   "default-model",
		Focus:   "security",
		Diff:    twoFileDiff,
		Context: map[string]string{"foo.py": "print('new')\n"},
	}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestReviewGitDiffWithoutContext(t *testing.T) {
	f := newFixture(t, map[string]string{"foo.py": "print('new')\n"})
	f.git.On(gitexec.Result{Stdout: twoFileDiff}, "git", "diff", "--staged")

	_, err := f.svc.ReviewGitDiff(context.Background(), DiffParams{RepoRoot: f.root, Model: "override"})
	if err != nil {
		t.Fatalf("ReviewGitDiff failed: %v", err)
	}
	req := f.reviewer.requests[0]
	if len(req.Context) != 0 {
		t.Errorf("context must be empty when include_context_files is false, got %v", req.Context)
	}
	if req.Model != "override" || req.Focus != DefaultFocus {
		t.Errorf("unexpected defaults: model=%q focus=%q", req.Model, req.Focus)
	}
}

func TestReviewGitDiffBranch(t *testing.T) {
	f := newFixture(t, nil)
	f.git.On(gitexec.Result{Stdout: "+++ b/x.go\n+x"}, "git", "diff", "main...feature")

	_, err := f.svc.ReviewGitDiff(context.Background(), DiffParams{
		RepoRoot: f.root, DiffSource: diff.Branch, BaseRef: "main", HeadRef: "feature",
	})
	if err != nil {
		t.Fatalf("ReviewGitDiff failed: %v", err)
	}
	if diff := cmp.Diff([]string{"git rev-parse --show-toplevel", "git diff main...feature"}, f.git.Commands()); diff != "" {
		t.Errorf("git calls mismatch (-want +got):\n%s", diff)
	}
}

func TestReviewGitDiffBranchMissingHeadRef(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.ReviewGitDiff(context.Background(), DiffParams{
		RepoRoot: f.root, DiffSource: diff.Branch, BaseRef: "main",
	})
	if !errors.Is(err, errors.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	for _, c := range f.git.Commands() {
		if strings.HasPrefix(c, "git diff") {
			t.Errorf("diff must not run without head_ref, got %q", c)
		}
	}
	if len(f.reviewer.requests) != 0 {
		t.Error("model must not be called")
	}
}

func TestReviewGitDiffErrorsPropagate(t *testing.T) {
	f := newFixture(t, nil)
	f.git.On(gitexec.Result{ExitCode: 128, Stderr: "fatal: bad revision"}, "git", "diff", "--staged")

	_, err := f.svc.ReviewGitDiff(context.Background(), DiffParams{RepoRoot: f.root})
	if !errors.Is(err, errors.CommandError) {
		t.Fatalf("expected CommandError, got %v", err)
	}

	_, err = f.svc.ReviewGitDiff(context.Background(), DiffParams{RepoRoot: filepath.Join(f.root, "missing")})
	if !errors.Is(err, errors.NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestReviewGitDiffModelError(t *testing.T) {
	f := newFixture(t, nil)
	f.git.On(gitexec.Result{Stdout: "+++ b/x.go"}, "git", "diff", "--staged")
	f.reviewer.err = errors.ModelError.New("model returned invalid JSON")

	_, err := f.svc.ReviewGitDiff(context.Background(), DiffParams{RepoRoot: f.root})
	if !errors.Is(err, errors.ModelError) {
		t.Fatalf("expected ModelError, got %v", err)
	}
}

func TestRepoInfo(t *testing.T) {
	f := newFixture(t, nil)
	f.git.
		On(gitexec.Result{Stdout: "main\n"}, "git", "rev-parse", "--abbrev-ref", "HEAD").
		On(gitexec.Result{Stdout: "origin\tgit@github.com:user/repo.git (fetch)\norigin\tgit@github.com:user/repo.git (push)\n"}, "git", "remote", "-v")

	info, err := f.svc.RepoInfo(context.Background(), f.root)
	if err != nil {
		t.Fatalf("RepoInfo failed: %v", err)
	}
	want := &RepoInfo{
		Toplevel: f.root,
		Branch:   "main",
		Remotes:  "origin\tgit@github.com:user/repo.git (fetch)\norigin\tgit@github.com:user/repo.git (push)",
	}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Errorf("RepoInfo mismatch (-want +got):\n%s", diff)
	}
}

func TestRepoInfoNoRemotes(t *testing.T) {
	f := newFixture(t, nil)
	f.git.On(gitexec.Result{Stdout: "HEAD\n"}, "git", "rev-parse", "--abbrev-ref", "HEAD")

	info, err := f.svc.RepoInfo(context.Background(), f.root)
	if err != nil {
		t.Fatalf("RepoInfo failed: %v", err)
	}
	if info.Remotes != "" || info.Branch != "HEAD" {
		t.Errorf("unexpected info %+v", info)
	}
}
