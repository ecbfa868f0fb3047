package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxReportingRepository struct {
	BaseRepository
}

// NewReportingRepository creates the repository the financial statements aggregate through.
func NewReportingRepository(pool *pgxpool.Pool) *PgxReportingRepository {
	return &PgxReportingRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// AggregateBalances left-joins entries onto accounts so idle accounts still
// appear with zero totals. Entry filters live in the join condition for that reason.
func (r *PgxReportingRepository) AggregateBalances(ctx context.Context, q domain.AggregateQuery) ([]domain.AccountAggregate, error) {
	var (
		args      []any
		joinConds = []string{"e.account_id = a.account_id"}
		where     []string
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.From != nil {
		joinConds = append(joinConds, "e.transaction_date >= "+arg(*q.From)+"::date")
	}
	if q.To != nil {
		joinConds = append(joinConds, "e.transaction_date <= "+arg(*q.To)+"::date")
	}
	if len(q.ExcludeReferenceTypes) > 0 {
		joinConds = append(joinConds, "e.reference_type <> ALL("+arg(q.ExcludeReferenceTypes)+"::text[])")
	}
	if len(q.TouchingAccountIDs) > 0 {
		joinConds = append(joinConds, `e.transaction_number IN (
			SELECT t.transaction_number FROM ledger_entries t WHERE t.account_id = ANY(`+arg(q.TouchingAccountIDs)+`::text[]))`)
	}
	if len(q.AccountTypes) > 0 {
		types := make([]string, len(q.AccountTypes))
		for i, t := range q.AccountTypes {
			types[i] = string(t)
		}
		where = append(where, "a.account_type = ANY("+arg(types)+"::text[])")
	}

	query := `
		SELECT a.account_id, a.code, a.name, a.account_type, a.sub_type, a.parent_account_id,
			COALESCE(SUM(e.debit), 0), COALESCE(SUM(e.credit), 0)
		FROM accounts a
		LEFT JOIN ledger_entries e ON ` + strings.Join(joinConds, " AND ")
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += `
		GROUP BY a.account_id
		ORDER BY a.code;`

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, wrap(err, "failed to aggregate balances")
	}
	defer rows.Close()

	out := []domain.AccountAggregate{}
	for rows.Next() {
		var agg domain.AccountAggregate
		if err := rows.Scan(
			&agg.AccountID,
			&agg.Code,
			&agg.Name,
			&agg.AccountType,
			&agg.SubType,
			&agg.ParentAccountID,
			&agg.TotalDebit,
			&agg.TotalCredit,
		); err != nil {
			return nil, fmt.Errorf("failed to scan balance aggregate: %w", err)
		}
		out = append(out, agg)
	}
	return out, wrap(rows.Err(), "failed to iterate balance aggregates")
}
