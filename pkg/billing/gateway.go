// Package billing provides the billing provider gateway the team engine
// calls: subscription lookup by identifier and seat-count mutation. Only the
// operations the engine needs are modeled; the provider's wider API is out of
// scope.
package billing

import (
	"context"
	"fmt"
)

// Gateway is the external billing collaborator. Failures are propagated to
// callers unchanged; the engine never retries.
type Gateway interface {
	// GetSubscriptionDetails fetches a subscription by its (decrypted)
	// identifier.
	GetSubscriptionDetails(ctx context.Context, subscriptionID string) (*Subscription, error)

	// UpdateMembers adjusts the purchased seat count by delta (+1 or -1).
	UpdateMembers(ctx context.Context, subscriptionID string, delta int64) error
}

// UpstreamError wraps a billing provider failure so callers can distinguish
// upstream faults from local ones without parsing messages.
type UpstreamError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("billing %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("billing %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
