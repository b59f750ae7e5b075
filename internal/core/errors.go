package core

import "errors"

// Error taxonomy for a reconciliation. Every failure is one of these,
// wrapped with context via fmt.Errorf and classified with errors.Is.
var (
	// ErrToolNotFound means a required external executable could not be
	// resolved before any process was spawned
	ErrToolNotFound = errors.New("required tool not found")

	// ErrInvalidRequest means the desired-state declaration was rejected
	// pre-flight, e.g. conflicting options or a missing package name
	ErrInvalidRequest = errors.New("invalid request")

	// ErrQueryFailed means the registry tool itself misbehaved; a package
	// that is simply absent is a negative result, not a query failure
	ErrQueryFailed = errors.New("registry query failed")

	// ErrActionFailed means the mutating command exited non-zero without
	// the benign already-satisfied marker
	ErrActionFailed = errors.New("action failed")

	// ErrReconcileFailed means the action reported success but the
	// post-action query disagreed with the desired state
	ErrReconcileFailed = errors.New("reconcile failed: post-action state does not match desired state")
)
