package errors_test

import (
	"context"
	stdErrors "errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	grpcerrors "github.com/VineetPaun/expense-management/internal/adapter/grpc/errors"
	"github.com/VineetPaun/expense-management/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		want    codes.Code
		wantMsg string
	}{
		{"nil error", nil, codes.OK, ""},
		{"account not found", domain.ErrAccountNotFound, codes.NotFound, "account not found"},
		{"inactive account", domain.ErrAccountInactive, codes.NotFound, "account is inactive: not found"},
		{"entry not found", domain.ErrEntryNotFound, codes.NotFound, "transaction not found"},
		{"invalid amount", domain.ErrInvalidAmount, codes.InvalidArgument, "amount: amount must be a positive number"},
		{"insufficient funds", &domain.InsufficientFundsError{Balance: decimal.NewFromInt(20), Requested: decimal.NewFromInt(50)},
			codes.FailedPrecondition, "insufficient funds: balance 20.00, requested 50.00"},
		{"bad token", domain.ErrInvalidToken, codes.Unauthenticated, "unauthorized"},
		{"concurrent update", domain.ErrConcurrentUpdate, codes.Aborted, "account was modified concurrently"},
		{"consistency", &domain.ConsistencyError{Op: "apply", AccountID: "acc-1", EntryID: "ent-1", Err: stdErrors.New("commit lost")},
			codes.Internal, "apply: account acc-1 entry ent-1: commit lost"},
		{"deadline exceeded", context.DeadlineExceeded, codes.DeadlineExceeded, "operation timed out"},
		{"canceled", context.Canceled, codes.Canceled, "operation was canceled"},
		{"status passes through", status.Error(codes.PermissionDenied, "nope"), codes.PermissionDenied, "nope"},
		{"unknown error", stdErrors.New("boom"), codes.Internal, "an internal error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := grpcerrors.MapDomainError(tt.err)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}

			st, ok := status.FromError(err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, st.Code())
			assert.Equal(t, tt.wantMsg, st.Message())
		})
	}
}
