package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewClientSuccess(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	ctx := context.Background()
	client, err := NewClient(ctx, fmt.Sprintf("redis://%s", s.Addr()))
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestNewClientInvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "://bad-url")
	if err == nil {
		t.Fatalf("expected error for invalid URL")
	}
}

func TestNewClientPingFailure(t *testing.T) {
	s := miniredis.RunT(t)
	url := fmt.Sprintf("redis://%s", s.Addr())
	s.Close() // close before attempting to connect

	_, err := NewClient(context.Background(), url)
	if err == nil {
		t.Fatalf("expected ping error when server is down")
	}
}

func TestNewClientWaitsForServer(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	addr := s.Addr()
	s.Close() // first pings fail until the restart below

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = s.Restart()
	}()
	defer s.Close()

	client, err := NewClientWithOptions(context.Background(), fmt.Sprintf("redis://%s", addr), Options{
		PingTimeout: 100 * time.Millisecond,
		MaxWait:     3 * time.Second,
	})
	if err != nil {
		t.Fatalf("expected client once server is up, got: %v", err)
	}
	defer client.Close()
}

func TestChecker(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := NewClient(context.Background(), fmt.Sprintf("redis://%s", s.Addr()))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	defer client.Close()

	c := NewChecker(client)
	if c.Name() != "redis" {
		t.Fatalf("unexpected name %q", c.Name())
	}
	if err := c.Check(context.Background()); err != nil {
		t.Fatalf("check failed: %v", err)
	}

	s.Close()
	if err := c.Check(context.Background()); err == nil {
		t.Fatal("expected check to fail with server down")
	}
}
