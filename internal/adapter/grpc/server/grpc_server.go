package server

import (
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/VineetPaun/expense-management/internal/adapter/grpc/middleware"
	pb "github.com/VineetPaun/expense-management/internal/adapter/grpc/pb/expense/v1"
	"github.com/VineetPaun/expense-management/internal/infrastructure/metrics"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

// Config holds dependencies for the gRPC server.
type Config struct {
	Accounts AccountReader
	Entries  EntryService
	Verifier middleware.TokenVerifier

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// New builds a gRPC server exposing LedgerService and the standard health service.
// Interceptors run in order: logging, recovery, metrics, auth, idempotency.
func New(cfg Config) (*grpc.Server, *health.Server) {
	interceptors := []grpc.UnaryServerInterceptor{
		middleware.LoggingInterceptor(cfg.Logger),
		middleware.RecoveryInterceptor(cfg.Logger),
	}
	if cfg.Metrics != nil {
		interceptors = append(interceptors, middleware.MetricsInterceptor(cfg.Metrics))
	}
	interceptors = append(interceptors, middleware.AuthInterceptor(cfg.Verifier))
	if cfg.IdempotencyStore != nil {
		interceptors = append(interceptors, middleware.IdempotencyInterceptor(middleware.IdempotencyConfig{
			Store:       cfg.IdempotencyStore,
			TTL:         cfg.IdempotencyTTL,
			ReadOnly:    pb.IsReadOnly,
			NewResponse: pb.NewResponse,
			Logger:      cfg.Logger,
		}))
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	pb.RegisterLedgerServiceServer(srv, NewLedgerServer(cfg.Accounts, cfg.Entries))

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthSrv)
	healthSrv.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv, healthSrv
}
