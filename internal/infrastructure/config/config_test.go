package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/VineetPaun/expense-management/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.JWTSecret != "" {
		t.Fatalf("expected JWT secret default to be empty, got %q", cfg.JWTSecret)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.Storage != config.StoragePostgres || cfg.IDFormat != config.IDFormatUUID {
		t.Fatalf("unexpected storage defaults: %s %s", cfg.Storage, cfg.IDFormat)
	}

	if cfg.StatementCacheTTL != 5*time.Minute || !cfg.ReconcileOnStartup {
		t.Fatalf("unexpected ledger defaults: %+v", cfg)
	}

	if !cfg.GRPCEnabled() {
		t.Fatalf("expected gRPC to be enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9091")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("STORAGE", "memory")
	t.Setenv("GRPC_PORT", "0")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("OUTBOX_INTERVAL", "250ms")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9091" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.JWTSecret != "top-secret" {
		t.Fatalf("expected JWT secret to be set, got %s", cfg.JWTSecret)
	}

	if cfg.Storage != config.StorageMemory || cfg.GRPCEnabled() {
		t.Fatalf("expected memory storage without gRPC, got %s grpc=%v", cfg.Storage, cfg.GRPCEnabled())
	}

	if cfg.NATSURL != "nats://localhost:4222" || cfg.OutboxInterval != 250*time.Millisecond {
		t.Fatalf("expected event settings, got %s %s", cfg.NATSURL, cfg.OutboxInterval)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"valid", func(*config.Config) {}, false},
		{"missing secret", func(c *config.Config) { c.JWTSecret = "" }, true},
		{"unknown storage", func(c *config.Config) { c.Storage = "sqlite" }, true},
		{"unknown id format", func(c *config.Config) { c.IDFormat = "snowflake" }, true},
		{"zero batch", func(c *config.Config) { c.OutboxBatchSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Storage:         config.StoragePostgres,
				IDFormat:        config.IDFormatULID,
				JWTSecret:       "s",
				OutboxBatchSize: 10,
			}
			tt.mutate(cfg)

			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	original := os.Getenv("HTTP_READ_TIMEOUT")
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")
	t.Cleanup(func() {
		t.Setenv("HTTP_READ_TIMEOUT", original)
	})

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
