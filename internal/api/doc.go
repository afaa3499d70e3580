// Package api exposes the tips catalogue and the leaderboard over HTTP.
//
// Routes live under /api/v1. Both realtime endpoints speak Server-Sent
// Events and honour the Last-Event-ID header to replay what a reconnecting
// client missed. /health and /metrics sit at the root.
package api
