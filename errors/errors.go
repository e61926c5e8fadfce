package errors

import (
	stderrors "errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// Kind classifies a failure so the tool boundary can tell validation
// problems apart from failures of git or the model provider.
type Kind int

const (
	Unknown Kind = iota
	NotFound
	PermissionDenied
	InvalidRepo
	CommandError
	InvalidArgument
	ModelError
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case PermissionDenied:
		return "permission denied"
	case InvalidRepo:
		return "invalid repository"
	case CommandError:
		return "command error"
	case InvalidArgument:
		return "invalid argument"
	case ModelError:
		return "model error"
	default:
		return "unknown"
	}
}

// Error is an error tagged with a Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a new error with file and line number information.
func New(format string, a ...interface{}) error {
	return fmt.Errorf("%s %s", caller(2), fmt.Sprintf(format, a...))
}

// Wrapf adds context (including file and line number) to an existing error.
// If the provided error is nil, Wrapf returns nil.
func Wrapf(err error, format string, a ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s %s: %w", caller(2), fmt.Sprintf(format, a...), err)
}

// New creates an error of kind k with file and line number information.
func (k Kind) New(format string, a ...interface{}) error {
	return &Error{Kind: k, Msg: caller(2) + " " + fmt.Sprintf(format, a...)}
}

// Wrapf wraps err as an error of kind k. If err is nil, Wrapf returns nil.
func (k Kind) Wrapf(err error, format string, a ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Msg: caller(2) + " " + fmt.Sprintf(format, a...), Err: err}
}

// KindOf reports the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries kind k anywhere in its chain.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		file = "???"
		line = 0
	} else {
		file = filepath.Base(file)
	}
	return fmt.Sprintf("[%s:%d]", file, line)
}
