package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/VineetPaun/expense-management/internal/domain"
	"github.com/VineetPaun/expense-management/internal/infrastructure/postgres/generated"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

const entryColumns = `id, user_id, account_id, sequence, amount, type, category, description, reference,
       opening_balance, closing_balance, entry_date, created_at, updated_at`

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	db      generated.DBTX
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository. db is usually a *pgxpool.Pool.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{
		db:      db,
		queries: generated.New(db),
	}
}

// Create creates a new entry.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	return queriesFor(tx).CreateEntry(ctx, generated.CreateEntryParams{
		ID:             entry.ID,
		UserID:         entry.UserID,
		AccountID:      entry.AccountID,
		Sequence:       entry.Sequence,
		Amount:         decimalToNumeric(entry.Amount),
		Type:           string(entry.Direction),
		Category:       string(entry.Category),
		Description:    entry.Description,
		Reference:      entry.Reference,
		OpeningBalance: decimalToNumeric(entry.OpeningBalance),
		ClosingBalance: decimalToNumeric(entry.ClosingBalance),
		EntryDate:      timeToPgTimestamptz(entry.EntryDate),
		CreatedAt:      timeToPgTimestamptz(entry.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(entry.UpdatedAt),
	})
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	row, err := r.queries.GetEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}

	return rowToEntry(row), nil
}

// GetByIDForUpdate retrieves an entry by ID with a FOR UPDATE lock.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	row, err := queriesFor(tx).GetEntryByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}

	return rowToEntry(row), nil
}

// Update rewrites an entry's mutable fields and snapshots.
func (r *EntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	n, err := queriesFor(tx).UpdateEntry(ctx, generated.UpdateEntryParams{
		ID:             entry.ID,
		Amount:         decimalToNumeric(entry.Amount),
		Type:           string(entry.Direction),
		Category:       string(entry.Category),
		Description:    entry.Description,
		Reference:      entry.Reference,
		OpeningBalance: decimalToNumeric(entry.OpeningBalance),
		ClosingBalance: decimalToNumeric(entry.ClosingBalance),
		EntryDate:      timeToPgTimestamptz(entry.EntryDate),
		UpdatedAt:      timeToPgTimestamptz(entry.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// Delete removes an entry.
func (r *EntryRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	n, err := queriesFor(tx).DeleteEntry(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// ShiftAfter moves the snapshots of every later entry by delta.
func (r *EntryRepository) ShiftAfter(ctx context.Context, tx usecase.Transaction, accountID string, sequence int64, delta decimal.Decimal) error {
	return queriesFor(tx).ShiftEntriesAfter(ctx, generated.ShiftEntriesAfterParams{
		AccountID: accountID,
		Sequence:  sequence,
		Delta:     decimalToNumeric(delta),
	})
}

// ListByAccount returns every entry of the account in application order.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Entry, error) {
	rows, err := r.queries.ListEntriesByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries, nil
}

// List returns one page of the account's entries matching filter.
func (r *EntryRepository) List(ctx context.Context, accountID string, filter domain.EntryFilter, sort domain.EntrySort, page domain.PageRequest) ([]*domain.Entry, error) {
	q := newEntryQuery(accountID, filter)
	sql := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE ` + q.where() +
		` ORDER BY ` + orderBy(sort) +
		` LIMIT ` + q.bind(page.Limit) + ` OFFSET ` + q.bind(page.Offset())

	rows, err := r.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.Entry{}
	for rows.Next() {
		var i generated.LedgerEntry
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.AccountID,
			&i.Sequence,
			&i.Amount,
			&i.Type,
			&i.Category,
			&i.Description,
			&i.Reference,
			&i.OpeningBalance,
			&i.ClosingBalance,
			&i.EntryDate,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, rowToEntry(i))
	}

	return entries, rows.Err()
}

// Summarize aggregates every entry of the account matching filter.
func (r *EntryRepository) Summarize(ctx context.Context, accountID string, filter domain.EntryFilter) (domain.EntrySummary, error) {
	q := newEntryQuery(accountID, filter)
	sql := `SELECT
       COALESCE(SUM(amount) FILTER (WHERE type = 'credit'), 0)::numeric,
       COUNT(*) FILTER (WHERE type = 'credit'),
       COALESCE(SUM(amount) FILTER (WHERE type = 'debit'), 0)::numeric,
       COUNT(*) FILTER (WHERE type = 'debit')
FROM ledger_entries WHERE ` + q.where()

	var (
		credit, debit           pgtype.Numeric
		creditCount, debitCount int64
	)
	if err := r.db.QueryRow(ctx, sql, q.args...).Scan(&credit, &creditCount, &debit, &debitCount); err != nil {
		return domain.EntrySummary{}, err
	}

	summary := domain.EntrySummary{
		TotalCredit: numericToDecimal(credit),
		CreditCount: int(creditCount),
		TotalDebit:  numericToDecimal(debit),
		DebitCount:  int(debitCount),
	}
	summary.NetFlow = summary.TotalCredit.Sub(summary.TotalDebit)

	return summary, nil
}

// entryQuery accumulates WHERE conditions and their positional arguments.
type entryQuery struct {
	conds []string
	args  []any
}

func newEntryQuery(accountID string, f domain.EntryFilter) *entryQuery {
	q := &entryQuery{}
	q.add("account_id = ", accountID)

	if f.Search != "" {
		p := q.bind("%" + escapeLike(f.Search) + "%")
		q.conds = append(q.conds, "(description ILIKE "+p+" OR reference ILIKE "+p+" OR category ILIKE "+p+")")
	}
	if f.StartDate != nil {
		q.add("entry_date >= ", timeToPgTimestamptz(*f.StartDate))
	}
	if f.EndDate != nil {
		q.add("entry_date <= ", timeToPgTimestamptz(*f.EndDate))
	}
	if f.Direction != "" {
		q.add("type = ", string(f.Direction))
	}
	if f.Category != "" {
		q.add("category = ", string(f.Category))
	}
	if f.MinAmount != nil {
		q.add("amount >= ", decimalToNumeric(*f.MinAmount))
	}
	if f.MaxAmount != nil {
		q.add("amount <= ", decimalToNumeric(*f.MaxAmount))
	}

	return q
}

// bind appends arg and returns its placeholder.
func (q *entryQuery) bind(arg any) string {
	q.args = append(q.args, arg)
	return "$" + strconv.Itoa(len(q.args))
}

func (q *entryQuery) add(cond string, arg any) {
	q.conds = append(q.conds, cond+q.bind(arg))
}

func (q *entryQuery) where() string {
	return strings.Join(q.conds, " AND ")
}

var sortColumns = map[domain.SortField]string{
	domain.SortByEntryDate: "entry_date",
	domain.SortByAmount:    "amount",
	domain.SortByCreatedAt: "created_at",
	domain.SortByType:      "type",
}

// orderBy renders s with created_at and id as tie breakers in the same direction.
func orderBy(s domain.EntrySort) string {
	col, ok := sortColumns[s.Field]
	if !ok {
		col = "entry_date"
	}
	dir := "DESC"
	if s.Order == domain.SortAsc {
		dir = "ASC"
	}
	return col + " " + dir + ", created_at " + dir + ", id " + dir
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func rowToEntry(row generated.LedgerEntry) *domain.Entry {
	return &domain.Entry{
		ID:             row.ID,
		UserID:         row.UserID,
		AccountID:      row.AccountID,
		Sequence:       row.Sequence,
		Amount:         numericToDecimal(row.Amount),
		Direction:      domain.Direction(row.Type),
		Category:       domain.Category(row.Category),
		Description:    row.Description,
		Reference:      row.Reference,
		OpeningBalance: numericToDecimal(row.OpeningBalance),
		ClosingBalance: numericToDecimal(row.ClosingBalance),
		EntryDate:      row.EntryDate.Time,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
