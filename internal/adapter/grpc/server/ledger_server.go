package server

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/VineetPaun/expense-management/internal/adapter/grpc/converter"
	grpcerrors "github.com/VineetPaun/expense-management/internal/adapter/grpc/errors"
	"github.com/VineetPaun/expense-management/internal/adapter/grpc/middleware"
	pb "github.com/VineetPaun/expense-management/internal/adapter/grpc/pb/expense/v1"
	"github.com/VineetPaun/expense-management/internal/domain"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

// AccountReader resolves an account owned by a user.
type AccountReader interface {
	GetAccount(ctx context.Context, id, userID string) (*domain.Account, error)
}

// EntryService is the balance engine as seen by the gRPC server.
type EntryService interface {
	Apply(ctx context.Context, input usecase.ApplyEntryInput) (*domain.Entry, error)
	Amend(ctx context.Context, input usecase.AmendEntryInput) (*domain.Entry, error)
	Remove(ctx context.Context, entryID, userID string) (*usecase.RemoveResult, error)
	ListForAccount(ctx context.Context, input usecase.ListEntriesInput) (*domain.Statement, error)
}

// LedgerServer implements the gRPC LedgerService
type LedgerServer struct {
	pb.UnimplementedLedgerServiceServer
	accounts AccountReader
	entries  EntryService
}

// NewLedgerServer creates a new LedgerServer
func NewLedgerServer(accounts AccountReader, entries EntryService) *LedgerServer {
	return &LedgerServer{accounts: accounts, entries: entries}
}

func callerID(ctx context.Context) (string, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "unauthorized")
	}
	return userID, nil
}

// GetAccount retrieves one of the caller's accounts with its current balance.
func (s *LedgerServer) GetAccount(ctx context.Context, req *pb.GetAccountRequest) (*pb.GetAccountResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetAccount(ctx, req.AccountID, userID)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return &pb.GetAccountResponse{Account: converter.AccountToPb(account)}, nil
}

// ApplyEntry records a credit or debit.
func (s *LedgerServer) ApplyEntry(ctx context.Context, req *pb.ApplyEntryRequest) (*pb.EntryResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	input, err := converter.ApplyInput(req, userID)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	entry, err := s.entries.Apply(ctx, input)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return &pb.EntryResponse{Entry: converter.EntryToPb(entry)}, nil
}

// AmendEntry changes an entry and rechains the snapshots after it.
func (s *LedgerServer) AmendEntry(ctx context.Context, req *pb.AmendEntryRequest) (*pb.EntryResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	input, err := converter.AmendInput(req, userID)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	entry, err := s.entries.Amend(ctx, input)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return &pb.EntryResponse{Entry: converter.EntryToPb(entry)}, nil
}

// RemoveEntry deletes an entry and reverses its effect.
func (s *LedgerServer) RemoveEntry(ctx context.Context, req *pb.RemoveEntryRequest) (*pb.RemoveEntryResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.entries.Remove(ctx, req.EntryID, userID)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return converter.RemoveResultToPb(result), nil
}

// ListEntries returns a filtered, sorted page of an account's entries.
func (s *LedgerServer) ListEntries(ctx context.Context, req *pb.ListEntriesRequest) (*pb.ListEntriesResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	input, err := converter.ListInput(req, userID)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	stmt, err := s.entries.ListForAccount(ctx, input)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return converter.StatementToPb(stmt), nil
}
