// Package redis connects to an optional Redis server.
//
// Redis is used for shared rate limit state when the service runs as more
// than one replica. Leaving REDIS_URL empty disables it and callers fall
// back to in-process storage.
//
//	client, err := redis.Connect(ctx, cfg.Redis, log)
//	switch {
//	case errors.Is(err, redis.ErrEmptyConnectionURL):
//		// not configured
//	case err != nil:
//		return err
//	}
//	defer client.Close()
//
// Healthcheck returns a probe suitable for a readiness endpoint.
package redis
