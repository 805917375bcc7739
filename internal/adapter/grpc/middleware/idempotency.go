package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/VineetPaun/expense-management/internal/infrastructure/logger"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the metadata key for idempotency
	IdempotencyKeyHeader = "x-idempotency-key"

	processingMarker = "processing"
)

type releaser interface {
	Release(ctx context.Context, key string) error
}

// idempotencyRecord is stored once the first call with a key succeeds.
type idempotencyRecord struct {
	RequestHash string          `json:"request_hash"`
	Response    json.RawMessage `json:"response"`
}

// IdempotencyConfig configures IdempotencyInterceptor.
type IdempotencyConfig struct {
	Store usecase.IdempotencyStore
	TTL   time.Duration
	// ReadOnly reports methods that never need deduplication.
	ReadOnly func(fullMethod string) bool
	// NewResponse returns an empty response value to replay a stored response into.
	NewResponse func(fullMethod string) any
	Logger      zerolog.Logger
}

// IdempotencyInterceptor replays the stored response of the first successful call that
// carried the same x-idempotency-key. Keys are scoped to the caller and the method, and
// a key reused with a different request is rejected.
func IdempotencyInterceptor(cfg IdempotencyConfig) grpc.UnaryServerInterceptor {
	if cfg.TTL <= 0 {
		cfg.TTL = usecase.IdempotencyKeyTTL
	}

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if cfg.Store == nil || (cfg.ReadOnly != nil && cfg.ReadOnly(info.FullMethod)) {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return handler(ctx, req)
		}
		keys := md.Get(IdempotencyKeyHeader)
		if len(keys) == 0 {
			return handler(ctx, req)
		}
		if keys[0] == "" {
			return nil, status.Error(codes.InvalidArgument, "idempotency key cannot be empty")
		}

		userID, _ := UserIDFromContext(ctx)
		cacheKey := "grpc:" + userID + ":" + info.FullMethod + ":" + keys[0]
		log := logger.FromContext(ctx, cfg.Logger)

		requestHash, err := hashRequest(req)
		if err != nil {
			return nil, status.Error(codes.Internal, "failed to generate request hash")
		}

		exists, cached, err := cfg.Store.CheckAndSet(ctx, cacheKey, nil, cfg.TTL)
		if err != nil {
			log.Error().Err(err).Msg("idempotency check failed")
			return nil, status.Error(codes.Unavailable, "idempotency check failed")
		}

		if exists {
			return replay(info.FullMethod, requestHash, cached, cfg.NewResponse)
		}

		resp, err := handler(ctx, req)
		if err != nil {
			// Failed calls free the key so the client can retry.
			if rel, ok := cfg.Store.(releaser); ok {
				if relErr := rel.Release(ctx, cacheKey); relErr != nil {
					log.Warn().Err(relErr).Msg("failed to release idempotency key")
				}
			}
			return resp, err
		}

		body, err := json.Marshal(resp)
		if err == nil {
			body, err = json.Marshal(idempotencyRecord{RequestHash: requestHash, Response: body})
		}
		if err == nil {
			err = cfg.Store.Update(ctx, cacheKey, body, cfg.TTL)
		}
		if err != nil {
			log.Warn().Err(err).Msg("failed to store idempotent response")
		}
		return resp, nil
	}
}

func replay(method, requestHash string, cached []byte, newResponse func(string) any) (any, error) {
	if cached == nil || string(cached) == processingMarker {
		return nil, status.Error(codes.Aborted, "a request with this idempotency key is still in progress")
	}

	var record idempotencyRecord
	if err := json.Unmarshal(cached, &record); err != nil {
		return nil, status.Error(codes.Internal, "corrupt idempotency record")
	}
	if record.RequestHash != requestHash {
		return nil, status.Error(codes.InvalidArgument, "idempotency key reused with different request body")
	}

	var resp any
	if newResponse != nil {
		resp = newResponse(method)
	}
	if resp == nil {
		return nil, status.Error(codes.AlreadyExists, "request already processed")
	}
	if err := json.Unmarshal(record.Response, resp); err != nil {
		return nil, status.Error(codes.Internal, "corrupt idempotency record")
	}
	return resp, nil
}

// hashRequest fingerprints a request by its JSON encoding.
func hashRequest(req any) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
