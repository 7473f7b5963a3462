// Package ratelimit provides pluggable request rate limiting stores.
// The store interface lets the HTTP layer stay agnostic of whether limits are
// tracked in process memory or in an external cache shared across instances.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of a single rate limit check.
type Result struct {
	// Limited is true when the request should be rejected.
	Limited bool
	// RetryAfter is the suggested wait before retrying, zero when unknown.
	RetryAfter time.Duration
}

// Store tracks request counts per key (typically a client IP).
type Store interface {
	// Check records one request for key and reports whether it exceeds the
	// configured limit.
	Check(ctx context.Context, key string) (Result, error)
}
