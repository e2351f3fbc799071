package spawn

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolvedKey means a stable key matched nothing in the cache or
// in a fresh discovery pass; the caller should re-discover.
var ErrUnresolvedKey = errors.New("unresolved stable key")

// ErrPinUnavailable means a default was requested for a connected or
// output-direction pin.
var ErrPinUnavailable = errors.New("pin unavailable")

// Creation steps named in CreationError so callers know what to retry.
const (
	StepResolveKey = "resolve-key"
	StepPlacement  = "placement"
	StepConfigure  = "configure"
)

// CreationError reports a failed creation call with enough structure
// for the caller to retry with corrected input. When configuration
// fails for a configure-first node the placed node is left in the
// graph and NodeID identifies it; deletion is the caller's decision.
type CreationError struct {
	Step        string
	Key         string
	NodeID      string
	Suggestions []string
	Err         error
}

func (e *CreationError) Error() string {
	msg := fmt.Sprintf("create %q: %s failed: %v", e.Key, e.Step, e.Err)
	if len(e.Suggestions) > 0 {
		msg += " (did you mean: " + strings.Join(e.Suggestions, ", ") + ")"
	}
	return msg
}

func (e *CreationError) Unwrap() error {
	return e.Err
}

// Warning is a non-fatal configuration outcome: an ambiguous binding
// resolved by heuristic, or a scope fallback. Chosen identifies the
// candidate that was actually bound.
type Warning struct {
	Kind   string
	Detail string
	Chosen string
}

// Warning kinds.
const (
	WarnAmbiguousBinding = "AmbiguousBinding"
	WarnScopeFallback    = "ScopeFallback"
)

func (w Warning) String() string {
	if w.Chosen != "" {
		return fmt.Sprintf("%s: %s (chose %s)", w.Kind, w.Detail, w.Chosen)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
}
