// Package timeout defines centralized timeout constants for AI operations.
package timeout

import "time"

// AI operation timeout constants.
const (
	// OracleTimeout bounds a single completion call. Expiry is handled as an
	// unavailable oracle, never retried.
	OracleTimeout = 30 * time.Second

	// RequestTimeout bounds a whole HTTP request, including persistence.
	RequestTimeout = 45 * time.Second

	// ShutdownTimeout is the grace period for in-flight requests on exit.
	ShutdownTimeout = 10 * time.Second

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	MaxTruncateLength = 200
)
