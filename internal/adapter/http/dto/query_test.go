package dto

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VineetPaun/expense-management/internal/domain"
)

func TestParseStatementQuery_Defaults(t *testing.T) {
	q := ParseStatementQuery(url.Values{})

	assert.Equal(t, domain.PageRequest{Page: 1, Limit: domain.DefaultPageSize}, q.Page)
	assert.Equal(t, domain.DefaultEntrySort, q.Sort)
	assert.Equal(t, domain.EntryFilter{}, q.Filter)
}

func TestParseStatementQuery_AllParams(t *testing.T) {
	v, err := url.ParseQuery("page=2&limit=10&search=%20rent%20&start_date=2026-01-01&end_date=2026-01-31" +
		"&type=CREDIT&category=Salary&min_amount=100&max_amount=1000&sort_by=amount&sort_order=asc")
	require.NoError(t, err)

	q := ParseStatementQuery(v)

	assert.Equal(t, domain.PageRequest{Page: 2, Limit: 10}, q.Page)
	assert.Equal(t, "rent", q.Filter.Search)
	assert.Equal(t, domain.DirectionCredit, q.Filter.Direction)
	assert.Equal(t, domain.Category("Salary"), q.Filter.Category)
	assert.Equal(t, "100", q.Filter.MinAmount.String())
	assert.Equal(t, "1000", q.Filter.MaxAmount.String())
	assert.Equal(t, domain.EntrySort{Field: domain.SortByAmount, Order: domain.SortAsc}, q.Sort)

	require.NotNil(t, q.Filter.StartDate)
	require.NotNil(t, q.Filter.EndDate)
	assert.True(t, q.Filter.StartDate.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, q.Filter.EndDate.Equal(time.Date(2026, 1, 31, 23, 59, 59, 999999999, time.UTC)))
}

func TestParseStatementQuery_DropsInvalid(t *testing.T) {
	v, err := url.ParseQuery("page=abc&limit=5000&start_date=yesterday&type=transfer&category=Nope" +
		"&min_amount=-1&max_amount=lots&sort_by=balance&sort_order=sideways")
	require.NoError(t, err)

	q := ParseStatementQuery(v)

	assert.Equal(t, domain.PageRequest{Page: 1, Limit: domain.MaxPageSize}, q.Page)
	assert.Equal(t, domain.EntryFilter{}, q.Filter)
	assert.Equal(t, domain.DefaultEntrySort, q.Sort)
}

func TestParseStatementQuery_SortOrderWithoutField(t *testing.T) {
	q := ParseStatementQuery(url.Values{"sort_order": {"asc"}})
	assert.Equal(t, domain.EntrySort{Field: domain.SortByEntryDate, Order: domain.SortAsc}, q.Sort)
}
