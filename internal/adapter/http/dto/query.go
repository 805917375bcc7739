package dto

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/VineetPaun/expense-management/internal/domain"
)

// StatementQuery holds the parsed listing parameters.
type StatementQuery struct {
	Filter domain.EntryFilter
	Sort   domain.EntrySort
	Page   domain.PageRequest
}

// ParseStatementQuery reads page, limit, search, start_date, end_date, type, category,
// min_amount, max_amount, sort_by and sort_order. Invalid values are dropped, never
// rejected. A date-only end_date covers the whole day.
func ParseStatementQuery(q url.Values) StatementQuery {
	var sq StatementQuery

	sq.Page = domain.PageRequest{
		Page:  atoiOr(q.Get("page"), 1),
		Limit: atoiOr(q.Get("limit"), domain.DefaultPageSize),
	}.Normalize()

	sq.Filter.Search = strings.TrimSpace(q.Get("search"))

	if t, ok := queryDate(q.Get("start_date")); ok {
		sq.Filter.StartDate = &t
	}
	if raw := strings.TrimSpace(q.Get("end_date")); raw != "" {
		if t, ok := queryDate(raw); ok {
			if len(raw) == len(time.DateOnly) {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			sq.Filter.EndDate = &t
		}
	}

	if d, ok := domain.ParseDirection(q.Get("type")); ok {
		sq.Filter.Direction = d
	}
	if c := domain.Category(strings.TrimSpace(q.Get("category"))); c.IsKnown() {
		sq.Filter.Category = c
	}

	sq.Filter.MinAmount = queryAmount(q.Get("min_amount"))
	sq.Filter.MaxAmount = queryAmount(q.Get("max_amount"))

	sort, err := domain.ParseEntrySort(q.Get("sort_by"), "")
	if err != nil {
		sort = domain.DefaultEntrySort
	}
	if order, err := domain.ParseEntrySort("", q.Get("sort_order")); err == nil {
		sort.Order = order.Order
	}
	sq.Sort = sort

	return sq
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func queryDate(s string) (time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	t, err := ParseDate(s)
	return t, err == nil
}

func queryAmount(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil
	}
	return &d
}
