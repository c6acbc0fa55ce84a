package relay

import "errors"

// Domain-specific errors for the relay pipeline.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrMissingDependency is returned by New when a required dependency is nil.
	ErrMissingDependency = errors.New("relay: missing required dependency")

	// ErrUnknownRoute is returned when a message arrives for a route that
	// is no longer configured.
	ErrUnknownRoute = errors.New("relay: unknown route")
)
