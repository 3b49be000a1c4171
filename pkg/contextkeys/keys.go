// Package contextkeys provides typed context keys shared between middleware
// and handlers, avoiding collisions with string-typed keys.
package contextkeys

import "context"

// Key is the private type for context keys defined by this package
type Key int

const (
	// UserKey carries the authenticated user's id
	UserKey Key = iota
)

// WithUserID returns a context carrying the authenticated user's id
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserKey, userID)
}

// UserID extracts the authenticated user's id from the context
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserKey).(int64)
	return id, ok
}
