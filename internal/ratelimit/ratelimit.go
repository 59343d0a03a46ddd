// Package ratelimit throttles requests per client key.
package ratelimit

import "context"

type Limiter interface {
	// Allow consumes one request for key and reports whether it may proceed.
	Allow(ctx context.Context, key string) (bool, error)
}
