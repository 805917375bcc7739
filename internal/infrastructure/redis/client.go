package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// Options tune how the client connects at startup.
type Options struct {
	PingTimeout time.Duration // per attempt
	MaxWait     time.Duration // total time spent retrying the first ping
}

// NewClient creates a new Redis client and waits for the server to answer.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	return NewClientWithOptions(ctx, redisURL, Options{})
}

// NewClientWithOptions is NewClient with explicit connect options.
func NewClientWithOptions(ctx context.Context, redisURL string, o Options) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = 2 * time.Second
	}

	client := redis.NewClient(opts)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxElapsedTime = o.MaxWait

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, o.PingTimeout)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}

	var policy backoff.BackOff = &backoff.StopBackOff{}
	if o.MaxWait > 0 {
		policy = b
	}
	if err := backoff.Retry(ping, backoff.WithContext(policy, ctx)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// Checker reports whether the redis server is reachable.
type Checker struct {
	client *redis.Client
}

// NewChecker wraps client for health checks.
func NewChecker(client *redis.Client) *Checker {
	return &Checker{client: client}
}

// Name identifies the dependency in health output.
func (c *Checker) Name() string { return "redis" }

// Check pings the server.
func (c *Checker) Check(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
