package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryFilter narrows an account's entries. Zero-valued fields do not filter.
type EntryFilter struct {
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	Direction Direction
	Category  Category
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// Matches reports whether e passes every set criterion. Search is a case-insensitive
// substring match on description, reference and category. Date and amount bounds are
// inclusive.
func (f EntryFilter) Matches(e *Entry) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Description), q) &&
			!strings.Contains(strings.ToLower(e.Reference), q) &&
			!strings.Contains(strings.ToLower(string(e.Category)), q) {
			return false
		}
	}
	if f.StartDate != nil && e.EntryDate.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && e.EntryDate.After(*f.EndDate) {
		return false
	}
	if f.Direction != "" && e.Direction != f.Direction {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.MinAmount != nil && e.Amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && e.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}
	return true
}

// SortField is a column an entry listing can be ordered by.
type SortField string

const (
	SortByEntryDate SortField = "entry_date"
	SortByAmount    SortField = "amount"
	SortByCreatedAt SortField = "created_at"
	SortByType      SortField = "type"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// EntrySort orders a listing. Ties are broken by created_at then id, in the same order.
type EntrySort struct {
	Field SortField
	Order SortOrder
}

// DefaultEntrySort is newest entry date first.
var DefaultEntrySort = EntrySort{Field: SortByEntryDate, Order: SortDesc}

// ParseEntrySort validates raw sort parameters, applying defaults for empty values.
func ParseEntrySort(field, order string) (EntrySort, error) {
	s := DefaultEntrySort
	if field != "" {
		switch f := SortField(strings.ToLower(field)); f {
		case SortByEntryDate, SortByAmount, SortByCreatedAt, SortByType:
			s.Field = f
		default:
			return s, NewValidationError("sort_by", "cannot sort by %q", field)
		}
	}
	if order != "" {
		switch o := SortOrder(strings.ToLower(order)); o {
		case SortAsc, SortDesc:
			s.Order = o
		default:
			return s, NewValidationError("sort_order", "sort order must be asc or desc")
		}
	}
	return s, nil
}

// Less reports whether a sorts before b.
func (s EntrySort) Less(a, b *Entry) bool {
	c := compareBy(s.Field, a, b)
	if c == 0 {
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if c == 0 {
		c = strings.Compare(a.ID, b.ID)
	}
	if s.Order == SortAsc {
		return c < 0
	}
	return c > 0
}

func compareBy(f SortField, a, b *Entry) int {
	switch f {
	case SortByAmount:
		return a.Amount.Cmp(b.Amount)
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortByType:
		return strings.Compare(string(a.Direction), string(b.Direction))
	default:
		return a.EntryDate.Compare(b.EntryDate)
	}
}

// PageRequest is a 1-indexed page of Limit entries.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize clamps the request into the supported range.
func (p PageRequest) Normalize() PageRequest {
	p.Page, p.Limit = ValidatePagination(p.Page, p.Limit)
	return p
}

// Offset returns the number of entries skipped before this page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageMeta describes where a page sits in the full result.
type PageMeta struct {
	CurrentPage int
	TotalPages  int
	TotalCount  int
	Limit       int
	HasNextPage bool
	HasPrevPage bool
}

// NewPageMeta builds the paging metadata for total matching entries.
func NewPageMeta(p PageRequest, total int) PageMeta {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return PageMeta{
		CurrentPage: p.Page,
		TotalPages:  pages,
		TotalCount:  total,
		Limit:       p.Limit,
		HasNextPage: p.Page < pages,
		HasPrevPage: p.Page > 1,
	}
}

// EntrySummary aggregates every entry matching a filter, regardless of paging.
type EntrySummary struct {
	TotalCredit decimal.Decimal
	CreditCount int
	TotalDebit  decimal.Decimal
	DebitCount  int
	NetFlow     decimal.Decimal
}

// Add folds e into the summary.
func (s *EntrySummary) Add(e *Entry) {
	if e.Direction == DirectionCredit {
		s.TotalCredit = s.TotalCredit.Add(e.Amount)
		s.CreditCount++
	} else {
		s.TotalDebit = s.TotalDebit.Add(e.Amount)
		s.DebitCount++
	}
	s.NetFlow = s.TotalCredit.Sub(s.TotalDebit)
}

// Count is the number of entries summarized.
func (s EntrySummary) Count() int {
	return s.CreditCount + s.DebitCount
}

// Statement is one page of an account's entries with aggregate figures.
type Statement struct {
	AccountID      string
	Entries        []*Entry
	Page           PageMeta
	Summary        EntrySummary
	CurrentBalance decimal.Decimal
}
