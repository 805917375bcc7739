package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	grpcserver "github.com/VineetPaun/expense-management/internal/adapter/grpc/server"
	httpAdapter "github.com/VineetPaun/expense-management/internal/adapter/http"
	"github.com/VineetPaun/expense-management/internal/adapter/http/handler"
	"github.com/VineetPaun/expense-management/internal/adapter/http/middleware"
	"github.com/VineetPaun/expense-management/internal/adapter/repository/memory"
	postgresRepo "github.com/VineetPaun/expense-management/internal/adapter/repository/postgres"
	redisRepo "github.com/VineetPaun/expense-management/internal/adapter/repository/redis"
	"github.com/VineetPaun/expense-management/internal/infrastructure/auth"
	"github.com/VineetPaun/expense-management/internal/infrastructure/config"
	"github.com/VineetPaun/expense-management/internal/infrastructure/eventpublisher"
	"github.com/VineetPaun/expense-management/internal/infrastructure/logger"
	"github.com/VineetPaun/expense-management/internal/infrastructure/metrics"
	"github.com/VineetPaun/expense-management/internal/infrastructure/postgres"
	"github.com/VineetPaun/expense-management/internal/infrastructure/redis"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

// storage is the set of repositories behind the use cases.
type storage struct {
	txManager usecase.TransactionManager
	accounts  usecase.AccountRepository
	entries   usecase.EntryRepository
	users     usecase.UserRepository
	audit     usecase.AuditRepository
	outbox    usecase.OutboxRepository
	ledger    usecase.LedgerRepository
	checkers  []handler.Checker
	opts      []usecase.Option
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.Storage == config.StorageMemory {
		store := memory.NewStore()
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return &storage{
			txManager: memory.NewTxManager(store),
			accounts:  memory.NewAccountRepository(store),
			entries:   memory.NewEntryRepository(store),
			users:     memory.NewUserRepository(store),
			audit:     memory.NewAuditRepository(store),
			outbox:    memory.NewOutboxRepository(store),
			ledger:    memory.NewLedgerRepository(store),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, log); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &storage{
		txManager: postgresRepo.NewTxManager(pool),
		accounts:  postgresRepo.NewAccountRepository(pool),
		entries:   postgresRepo.NewEntryRepository(pool),
		users:     postgresRepo.NewUserRepository(pool),
		audit:     postgresRepo.NewAuditRepository(pool),
		outbox:    postgresRepo.NewOutboxRepository(pool),
		ledger:    postgresRepo.NewLedgerRepository(pool),
		checkers:  []handler.Checker{handler.CheckFunc{N: "postgres", Fn: pool.Ping}},
		opts:      []usecase.Option{usecase.WithRetrier(postgresRepo.NewRetrier(logger.Component(log, "retrier")))},
		close:     pool.Close,
	}, nil
}

func newIDGenerator(format string) usecase.IDGenerator {
	if format == config.IDFormatULID {
		return postgresRepo.NewULIDGenerator()
	}
	return postgresRepo.NewUUIDGenerator()
}

type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	handler http.Handler

	grpcServer *grpc.Server
	grpcHealth *health.Server

	reconciler  *usecase.ReconciliationUseCase
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter

	closers []func()
}

// newApp connects storage, Redis and NATS and wires every component.
func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.close)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	checkers := store.checkers
	opts := append([]usecase.Option{
		usecase.WithAudit(store.audit),
		usecase.WithOutbox(store.outbox),
		usecase.WithMetrics(m),
		usecase.WithLogger(logger.Component(log, "ledger")),
	}, store.opts...)

	var idempotency usecase.IdempotencyStore
	if cfg.RedisEnabled {
		client, err := redis.NewClientWithOptions(ctx, cfg.RedisURL, redis.Options{MaxWait: 30 * time.Second})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		log.Info().Msg("connected to redis")

		idempotency = redisRepo.NewIdempotencyStore(client)
		checkers = append(checkers, redis.NewChecker(client))
		if cfg.StatementCacheTTL > 0 {
			opts = append(opts, usecase.WithStatementCache(redisRepo.NewCache(client), cfg.StatementCacheTTL))
		}
	}

	idGen := newIDGenerator(cfg.IDFormat)
	locker := usecase.NewAccountLocker()
	jwt := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	accountUC := usecase.NewAccountUseCase(store.txManager, store.accounts, idGen, locker, opts...)
	a.reconciler = usecase.NewReconciliationUseCase(store.txManager, store.accounts, store.entries, store.ledger, idGen, locker, opts...)
	entryUC := usecase.NewEntryUseCase(store.txManager, store.accounts, store.entries, idGen, locker, a.reconciler, opts...)
	userUC := usecase.NewUserUseCase(store.users, idGen, jwt)

	publisher, err := a.newEventPublisher(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: store.outbox,
		Publisher:  publisher,
		Recorder:   m,
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})

	a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		EntryHandler:     handler.NewEntryHandler(entryUC),
		AuthHandler:      handler.NewAuthHandler(userUC),
		LedgerHandler:    handler.NewLedgerHandler(a.reconciler, accountUC),
		HealthHandler:    handler.NewHealthHandler(checkers...),
		Verifier:         jwt,
		IdempotencyStore: idempotency,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      a.rateLimiter,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:           logger.Component(log, "http"),
	})

	if cfg.GRPCEnabled() {
		a.grpcServer, a.grpcHealth = grpcserver.New(grpcserver.Config{
			Accounts:         accountUC,
			Entries:          entryUC,
			Verifier:         jwt,
			IdempotencyStore: idempotency,
			IdempotencyTTL:   cfg.IdempotencyTTL,
			Metrics:          m,
			Logger:           logger.Component(log, "grpc"),
		})
	}

	return a, nil
}

// newEventPublisher publishes to NATS JetStream when NATS_URL is set and to the log
// otherwise.
func (a *app) newEventPublisher(ctx context.Context) (eventpublisher.Publisher, error) {
	if a.cfg.NATSURL == "" {
		return eventpublisher.NewLogPublisher(logger.Component(a.log, "events")), nil
	}

	nc, js, err := eventpublisher.Connect(ctx, a.cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	a.closers = append(a.closers, func() { _ = nc.Drain() })
	a.log.Info().Str("stream", eventpublisher.StreamName).Msg("connected to nats")

	return eventpublisher.NewNATSPublisher(js), nil
}

// reconcileOnStartup repairs any balance that drifted while the process was down.
func (a *app) reconcileOnStartup(ctx context.Context) {
	results, err := a.reconciler.ReconcileAll(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("startup reconciliation failed")
	}

	repaired := 0
	for _, r := range results {
		if r.Repaired {
			repaired++
		}
	}
	a.log.Info().Int("accounts", len(results)).Int("repaired", repaired).Msg("startup reconciliation finished")
}

// run serves HTTP and gRPC until ctx is canceled or a listener fails, then shuts down.
func (a *app) run(ctx context.Context) error {
	if a.cfg.ReconcileOnStartup {
		a.reconcileOnStartup(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := a.publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error().Err(err).Msg("event publisher stopped")
		}
	}()
	go a.rateLimiter.RunCleanup(ctx, time.Minute, 10*time.Minute)

	errCh := make(chan error, 2)

	httpServer := &http.Server{
		Addr:         ":" + a.cfg.HTTPPort,
		Handler:      a.handler,
		ReadTimeout:  a.cfg.HTTPReadTimeout,
		WriteTimeout: a.cfg.HTTPWriteTimeout,
		IdleTimeout:  a.cfg.HTTPIdleTimeout,
	}
	go func() {
		a.log.Info().Str("port", a.cfg.HTTPPort).Msg("starting http server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.grpcServer != nil {
		lis, err := net.Listen("tcp", ":"+a.cfg.GRPCPort)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		go func() {
			a.log.Info().Str("port", a.cfg.GRPCPort).Msg("starting grpc server")
			if err := a.grpcServer.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	a.log.Info().Msg("shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.HTTPShutdownTimeout)
	defer cancelShutdown()

	if a.grpcServer != nil {
		a.grpcHealth.Shutdown()
		a.grpcServer.GracefulStop()
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("http shutdown: %w", err))
	}

	return runErr
}

// close releases connections in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
