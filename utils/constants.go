// File: utils/constants.go
package utils

import "time"

// StatsCacheKey is the Redis key holding the cached collection counts.
const StatsCacheKey = "stats:counts"

// StatsCacheTTL is the time-to-live for the cached collection counts.
const StatsCacheTTL = time.Minute
