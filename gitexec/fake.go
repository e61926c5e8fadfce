package gitexec

import (
	"context"
	"strings"
	"sync"
)

// FakeRunner replays scripted results keyed by the space-joined argv and
// records every call. Unscripted commands exit 0 with empty output.
type FakeRunner struct {
	mu      sync.Mutex
	Results map[string]Result
	Calls   []Call
}

// Call is one recorded invocation.
type Call struct {
	Dir  string
	Argv []string
}

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{Results: make(map[string]Result)}
}

// On scripts the result for argv.
func (f *FakeRunner) On(res Result, argv ...string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Results[strings.Join(argv, " ")] = res
	return f
}

func (f *FakeRunner) Run(ctx context.Context, dir string, argv ...string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Dir: dir, Argv: append([]string(nil), argv...)})
	return f.Results[strings.Join(argv, " ")], nil
}

// Commands returns the recorded argv of every call, space-joined.
func (f *FakeRunner) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		out = append(out, strings.Join(c.Argv, " "))
	}
	return out
}
