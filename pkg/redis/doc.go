// Package redis wraps the go-redis client with retrying connection setup and
// a readiness-probe helper. Configuration comes from the environment; an
// empty REDIS_URL means the application runs without Redis.
package redis
