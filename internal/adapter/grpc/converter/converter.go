package converter

import (
	"github.com/shopspring/decimal"

	pb "github.com/VineetPaun/expense-management/internal/adapter/grpc/pb/expense/v1"
	"github.com/VineetPaun/expense-management/internal/domain"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

func money(d decimal.Decimal) string { return d.StringFixed(domain.AmountScale) }

// AccountToPb converts domain.Account to its wire form.
func AccountToPb(a *domain.Account) *pb.Account {
	if a == nil {
		return nil
	}
	return &pb.Account{
		ID:             a.ID,
		BankName:       string(a.BankName),
		AccountType:    string(a.AccountType),
		AccountNumber:  a.AccountNumber,
		Currency:       a.Currency,
		Balance:        money(a.Balance),
		OpeningBalance: money(a.OpeningBalance),
		Version:        a.Version,
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// EntryToPb converts domain.Entry to its wire form.
func EntryToPb(e *domain.Entry) *pb.Entry {
	if e == nil {
		return nil
	}
	return &pb.Entry{
		ID:             e.ID,
		AccountID:      e.AccountID,
		Sequence:       e.Sequence,
		Amount:         money(e.Amount),
		Direction:      string(e.Direction),
		Category:       string(e.Category),
		Description:    e.Description,
		Reference:      e.Reference,
		OpeningBalance: money(e.OpeningBalance),
		ClosingBalance: money(e.ClosingBalance),
		EntryDate:      e.EntryDate,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

// StatementToPb converts a statement page to a ListEntriesResponse.
func StatementToPb(s *domain.Statement) *pb.ListEntriesResponse {
	entries := make([]*pb.Entry, len(s.Entries))
	for i, e := range s.Entries {
		entries[i] = EntryToPb(e)
	}
	return &pb.ListEntriesResponse{
		Entries: entries,
		Page: pb.PageInfo{
			CurrentPage: s.Page.CurrentPage,
			TotalPages:  s.Page.TotalPages,
			TotalCount:  s.Page.TotalCount,
			Limit:       s.Page.Limit,
			HasNextPage: s.Page.HasNextPage,
			HasPrevPage: s.Page.HasPrevPage,
		},
		Summary: pb.Summary{
			TotalCredit: money(s.Summary.TotalCredit),
			CreditCount: s.Summary.CreditCount,
			TotalDebit:  money(s.Summary.TotalDebit),
			DebitCount:  s.Summary.DebitCount,
			NetFlow:     money(s.Summary.NetFlow),
		},
		CurrentBalance: money(s.CurrentBalance),
	}
}

// RemoveResultToPb converts the outcome of a removal.
func RemoveResultToPb(r *usecase.RemoveResult) *pb.RemoveEntryResponse {
	return &pb.RemoveEntryResponse{
		RemovedEntryID: r.RemovedEntryID,
		NewBalance:     money(r.NewBalance),
		AccountUpdated: r.AccountUpdated,
	}
}

// ApplyInput builds the engine input for an ApplyEntry call.
func ApplyInput(req *pb.ApplyEntryRequest, userID string) (usecase.ApplyEntryInput, error) {
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return usecase.ApplyEntryInput{}, err
	}
	return usecase.ApplyEntryInput{
		AccountID:   req.AccountID,
		UserID:      userID,
		Amount:      amount,
		Direction:   req.Direction,
		Category:    req.Category,
		Description: req.Description,
		Reference:   req.Reference,
		EntryDate:   req.EntryDate,
	}, nil
}

// AmendInput builds the engine input for an AmendEntry call.
func AmendInput(req *pb.AmendEntryRequest, userID string) (usecase.AmendEntryInput, error) {
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return usecase.AmendEntryInput{}, err
	}
	return usecase.AmendEntryInput{
		EntryID:     req.EntryID,
		UserID:      userID,
		Amount:      amount,
		Direction:   req.Direction,
		Category:    req.Category,
		Description: req.Description,
		Reference:   req.Reference,
		EntryDate:   req.EntryDate,
	}, nil
}

// ListInput builds the listing input. Unlike the HTTP query string, malformed filter
// values are rejected rather than dropped.
func ListInput(req *pb.ListEntriesRequest, userID string) (usecase.ListEntriesInput, error) {
	filter := domain.EntryFilter{
		Search:    req.Search,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}

	if req.Direction != "" {
		d, ok := domain.ParseDirection(req.Direction)
		if !ok {
			return usecase.ListEntriesInput{}, domain.NewValidationError("direction", "direction must be credit or debit")
		}
		filter.Direction = d
	}
	if req.Category != "" {
		c := domain.Category(req.Category)
		if !c.IsKnown() {
			return usecase.ListEntriesInput{}, domain.NewValidationError("category", "unknown category %q", req.Category)
		}
		filter.Category = c
	}

	var err error
	if filter.MinAmount, err = optionalAmount("min_amount", req.MinAmount); err != nil {
		return usecase.ListEntriesInput{}, err
	}
	if filter.MaxAmount, err = optionalAmount("max_amount", req.MaxAmount); err != nil {
		return usecase.ListEntriesInput{}, err
	}

	sort, err := domain.ParseEntrySort(req.SortBy, req.SortOrder)
	if err != nil {
		return usecase.ListEntriesInput{}, err
	}

	return usecase.ListEntriesInput{
		AccountID: req.AccountID,
		UserID:    userID,
		Filter:    filter,
		Sort:      sort,
		Page:      domain.PageRequest{Page: req.Page, Limit: req.Limit}.Normalize(),
	}, nil
}

func optionalAmount(field, s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil, domain.NewValidationError(field, "%s must be a non-negative number", field)
	}
	return &d, nil
}
