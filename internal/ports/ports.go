// Package ports defines the driving interfaces of the application: the
// surfaces that start, serve and stop around the core triage service.
package ports

import (
	"context"

	"github.com/ewfx/gaied-aivengers/internal/core"
)

// ReviewSurface exposes processed results for human review and accepts
// classification corrections. It consumes results as a ResultSink.
type ReviewSurface interface {
	core.ResultSink

	// Start begins serving; it returns once the listener is bound
	Start() error

	// Stop shuts the surface down, honoring the context deadline
	Stop(ctx context.Context) error
}

// Ingestor is an email source with a lifecycle, such as an SMTP listener
// that must be bound before mail can arrive.
type Ingestor interface {
	core.EmailSource

	Start() error
	Stop(ctx context.Context) error
}
