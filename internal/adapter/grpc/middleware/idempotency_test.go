package middleware_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/VineetPaun/expense-management/internal/adapter/grpc/middleware"
	pb "github.com/VineetPaun/expense-management/internal/adapter/grpc/pb/expense/v1"
)

// memoryIdempotencyStore mimics the Redis store: SETNX with a processing marker.
type memoryIdempotencyStore struct {
	mu       sync.Mutex
	values   map[string][]byte
	err      error
	checks   int
	released []string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{values: make(map[string][]byte)}
}

func (s *memoryIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks++
	if s.err != nil {
		return false, nil, s.err
	}
	if v, ok := s.values[key]; ok {
		return true, v, nil
	}
	if response == nil {
		response = []byte("processing")
	}
	s.values[key] = response
	return false, nil, nil
}

func (s *memoryIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = response
	return nil
}

func (s *memoryIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	s.released = append(s.released, key)
	return nil
}

func newIdempotency(store *memoryIdempotencyStore) grpc.UnaryServerInterceptor {
	return middleware.IdempotencyInterceptor(middleware.IdempotencyConfig{
		Store:       store,
		TTL:         time.Minute,
		ReadOnly:    pb.IsReadOnly,
		NewResponse: pb.NewResponse,
		Logger:      zerolog.Nop(),
	})
}

func keyed(key string) context.Context {
	ctx := middleware.WithUserID(context.Background(), "user-1")
	return metadata.NewIncomingContext(ctx, metadata.Pairs(middleware.IdempotencyKeyHeader, key))
}

var applyInfo = &grpc.UnaryServerInfo{FullMethod: pb.LedgerService_ApplyEntry_FullMethodName}

func TestIdempotencyInterceptor_SkipsReadOnlyMethods(t *testing.T) {
	store := newMemoryIdempotencyStore()
	interceptor := newIdempotency(store)

	info := &grpc.UnaryServerInfo{FullMethod: pb.LedgerService_GetAccount_FullMethodName}
	resp, err := interceptor(keyed("k"), &pb.GetAccountRequest{AccountID: "acc-1"}, info,
		func(ctx context.Context, req any) (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Zero(t, store.checks)
}

func TestIdempotencyInterceptor_ReplaysResponse(t *testing.T) {
	store := newMemoryIdempotencyStore()
	interceptor := newIdempotency(store)
	req := &pb.ApplyEntryRequest{AccountID: "acc-1", Amount: "10", Direction: "credit", Category: "Salary"}

	calls := 0
	handler := func(ctx context.Context, req any) (any, error) {
		calls++
		return &pb.EntryResponse{Entry: &pb.Entry{ID: "ent-1", ClosingBalance: "10.00"}}, nil
	}

	first, err := interceptor(keyed("pay-1"), req, applyInfo, handler)
	require.NoError(t, err)

	second, err := interceptor(keyed("pay-1"), req, applyInfo, handler)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestIdempotencyInterceptor_DetectsBodyMismatch(t *testing.T) {
	store := newMemoryIdempotencyStore()
	interceptor := newIdempotency(store)
	handler := func(ctx context.Context, req any) (any, error) { return &pb.EntryResponse{}, nil }

	_, err := interceptor(keyed("pay-1"), &pb.ApplyEntryRequest{Amount: "10"}, applyInfo, handler)
	require.NoError(t, err)

	_, err = interceptor(keyed("pay-1"), &pb.ApplyEntryRequest{Amount: "11"}, applyInfo, handler)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestIdempotencyInterceptor_InProgress(t *testing.T) {
	store := newMemoryIdempotencyStore()
	store.values["grpc:user-1:"+applyInfo.FullMethod+":pay-1"] = []byte("processing")
	interceptor := newIdempotency(store)

	_, err := interceptor(keyed("pay-1"), &pb.ApplyEntryRequest{}, applyInfo, func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not run while the first call is in flight")
		return nil, nil
	})
	assert.Equal(t, codes.Aborted, status.Code(err))
}

func TestIdempotencyInterceptor_ReleasesKeyOnFailure(t *testing.T) {
	store := newMemoryIdempotencyStore()
	interceptor := newIdempotency(store)
	req := &pb.ApplyEntryRequest{Amount: "10"}

	_, err := interceptor(keyed("pay-1"), req, applyInfo, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.FailedPrecondition, "insufficient funds")
	})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Len(t, store.released, 1)

	// The retry runs the handler again.
	resp, err := interceptor(keyed("pay-1"), req, applyInfo, func(ctx context.Context, req any) (any, error) {
		return &pb.EntryResponse{Entry: &pb.Entry{ID: "ent-2"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ent-2", resp.(*pb.EntryResponse).Entry.ID)
}

func TestIdempotencyInterceptor_KeysAreScopedPerUser(t *testing.T) {
	store := newMemoryIdempotencyStore()
	interceptor := newIdempotency(store)
	req := &pb.ApplyEntryRequest{Amount: "10"}

	calls := 0
	handler := func(ctx context.Context, req any) (any, error) {
		calls++
		return &pb.EntryResponse{}, nil
	}

	_, err := interceptor(keyed("pay-1"), req, applyInfo, handler)
	require.NoError(t, err)

	other := metadata.NewIncomingContext(middleware.WithUserID(context.Background(), "user-2"),
		metadata.Pairs(middleware.IdempotencyKeyHeader, "pay-1"))
	_, err = interceptor(other, req, applyInfo, handler)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestIdempotencyInterceptor_StoreErrors(t *testing.T) {
	store := newMemoryIdempotencyStore()
	store.err = errors.New("redis down")
	interceptor := newIdempotency(store)

	_, err := interceptor(keyed("pay-1"), &pb.ApplyEntryRequest{}, applyInfo, func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not run without an idempotency claim")
		return nil, nil
	})
	assert.Equal(t, codes.Unavailable, status.Code(err))

	_, err = interceptor(keyed(""), &pb.ApplyEntryRequest{}, applyInfo, nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestIdempotencyInterceptor_NoKey(t *testing.T) {
	store := newMemoryIdempotencyStore()
	interceptor := newIdempotency(store)

	resp, err := interceptor(context.Background(), &pb.ApplyEntryRequest{}, applyInfo,
		func(ctx context.Context, req any) (any, error) { return "ran", nil })
	require.NoError(t, err)
	assert.Equal(t, "ran", resp)
	assert.Zero(t, store.checks)
}
