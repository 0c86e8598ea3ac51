package resolve

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCandidate means Locate found no plausible target for the
	// product. The orchestrator moves on to the next adapter.
	ErrNoCandidate = errors.New("no candidate reference found")
	// ErrNotFound means the adapter fetched a document but no weight
	// could be extracted from it.
	ErrNotFound = errors.New("no weight found")
	// ErrStaleReference means the fetched page no longer matches the
	// located reference. Recoverable; the attempt is re-driven from
	// Locate.
	ErrStaleReference = errors.New("stale reference")
)

// FetchError is a recoverable transport or rendering failure. The
// orchestrator retries the full Locate→Fetch→Extract sequence up to the
// attempt budget before yielding not-found.
type FetchError struct {
	Ref     string
	Timeout bool
	Err     error
}

func (e *FetchError) Error() string {
	kind := "fetch error"
	if e.Timeout {
		kind = "fetch timeout"
	}
	if e.Ref == "" {
		return fmt.Sprintf("%s: %v", kind, e.Err)
	}
	return fmt.Sprintf("%s for %s: %v", kind, e.Ref, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FatalError means the rendering substrate itself is unusable. The run
// stops issuing work; committed results are preserved.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return fmt.Sprintf("fatal: %v", e.Err) }

func (e *FatalError) Unwrap() error { return e.Err }

// IsFatal reports whether err carries a FatalError anywhere in its chain.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

func recoverable(err error) bool {
	if errors.Is(err, ErrStaleReference) {
		return true
	}
	var fe *FetchError
	return errors.As(err, &fe)
}
