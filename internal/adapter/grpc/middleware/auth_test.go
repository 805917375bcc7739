package middleware_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/VineetPaun/expense-management/internal/adapter/grpc/middleware"
	"github.com/VineetPaun/expense-management/internal/domain"
	"github.com/VineetPaun/expense-management/internal/infrastructure/auth"
)

func TestAuthInterceptor(t *testing.T) {
	t.Parallel()

	jwtManager := auth.NewJWTManager("secret", time.Hour)
	interceptor := middleware.AuthInterceptor(jwtManager)
	info := &grpc.UnaryServerInfo{FullMethod: "/expense.v1.LedgerService/GetAccount"}
	mustNotRun := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called")
		return nil, nil
	}

	t.Run("missing metadata", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, info, mustNotRun)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("missing token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-other", "1"))
		_, err := interceptor(ctx, nil, info, mustNotRun)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("invalid token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer invalid"))
		_, err := interceptor(ctx, nil, info, mustNotRun)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("health checks skip auth", func(t *testing.T) {
		resp, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"},
			func(ctx context.Context, req any) (any, error) { return "serving", nil })
		require.NoError(t, err)
		assert.Equal(t, "serving", resp)
	})

	t.Run("valid token injects user id", func(t *testing.T) {
		token, err := jwtManager.Generate(&domain.User{ID: "user-1", Email: "user@example.com"})
		require.NoError(t, err)

		for _, header := range []string{"Bearer " + token, "bearer " + token, token} {
			ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", header))

			resp, err := interceptor(ctx, nil, info, func(ctx context.Context, req any) (any, error) {
				id, ok := middleware.UserIDFromContext(ctx)
				require.True(t, ok)
				return id, nil
			})
			require.NoError(t, err)
			assert.Equal(t, "user-1", resp)
		}
	})
}

func TestUserIDFromContext(t *testing.T) {
	_, ok := middleware.UserIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = middleware.UserIDFromContext(middleware.WithUserID(context.Background(), ""))
	assert.False(t, ok)

	id, ok := middleware.UserIDFromContext(middleware.WithUserID(context.Background(), "u"))
	assert.True(t, ok)
	assert.Equal(t, "u", id)
}
