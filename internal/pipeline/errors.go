package pipeline

import (
	"errors"
	"strings"
)

var (
	// ErrFileRead marks an input directory or file that cannot be read.
	ErrFileRead = errors.New("FileReadError")
	// ErrDuplicateCommandID marks two files deriving the same command ID.
	ErrDuplicateCommandID = errors.New("DuplicateCommandID")
	// ErrOutputWrite marks an artifact that cannot be written.
	ErrOutputWrite = errors.New("OutputWriteError")
)

// FatalError aborts a run. Kind is one of the sentinels above; Err carries the
// underlying cause when there is one. Both are reachable through errors.Is.
type FatalError struct {
	Kind error
	Path string
	Err  error
}

func (e *FatalError) Error() string {
	parts := []string{"FatalError"}
	if e.Kind != nil {
		parts[0] = e.Kind.Error()
	}
	if path := strings.TrimSpace(e.Path); path != "" {
		parts = append(parts, path)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *FatalError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// ErrorMetadata exposes the kind and path for structured error reporting.
func (e *FatalError) ErrorMetadata() map[string]any {
	meta := map[string]any{}
	if e.Kind != nil {
		meta["kind"] = e.Kind.Error()
	}
	if path := strings.TrimSpace(e.Path); path != "" {
		meta["path"] = path
	}
	return meta
}

// IsFatal reports whether err aborts a run.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
