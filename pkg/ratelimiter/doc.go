// Package ratelimiter provides token bucket rate limiting with pluggable
// storage and an HTTP middleware.
//
// A Bucket holds up to Capacity tokens and gains RefillRate tokens every
// RefillInterval. Each request consumes one token; a request that finds the
// bucket empty is denied and leaves the bucket untouched.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     5,
//		RefillInterval: time.Minute,
//	})
//	if err != nil {
//		return err
//	}
//
//	mw := ratelimiter.Middleware(limiter, func(r *http.Request) string {
//		return clientip.FromContext(r.Context())
//	})
//
// Two stores are available. MemoryStore keeps state in process and evicts
// idle buckets in the background. RedisStore keeps state in Redis and
// applies every refill-and-consume step atomically through a Lua script,
// so several replicas can share one limit.
//
// The middleware sets X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset on every response and Retry-After on denials. Denied
// requests are answered by the handler passed via WithLimitedHandler, or a
// plain 429 by default.
package ratelimiter
