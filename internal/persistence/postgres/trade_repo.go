package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtlab/capmatch/internal/persistence"
)

type tradeRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewTradeRepo returns a PostgreSQL-backed simulated-trade repository.
func NewTradeRepo(db *sqlx.DB, timeout time.Duration) persistence.TradeRepo {
	return &tradeRepo{db: db, timeout: timeout}
}

func (r *tradeRepo) Insert(ctx context.Context, trade persistence.SimulatedTrade) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO simulated_trades
			(trade_signature, rule_version, config_hash, salary_match,
			 salary_diff_m, value_difference, verdict, result_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		trade.TradeSignature, trade.RuleVersion, trade.ConfigHash,
		trade.SalaryMatch, trade.SalaryDiffM, trade.ValueDifference,
		trade.Verdict, trade.ResultJSON).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert simulated trade: %w", err)
	}
	return id, nil
}

// ListBySignature returns prior evaluations of the same trade, newest
// first, so rule or config drift between runs is visible.
func (r *tradeRepo) ListBySignature(ctx context.Context, signature string, limit int) ([]persistence.SimulatedTrade, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, trade_signature, rule_version, config_hash, salary_match,
		       salary_diff_m, value_difference, verdict, result_json, created_at
		FROM simulated_trades
		WHERE trade_signature = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var trades []persistence.SimulatedTrade
	if err := r.db.SelectContext(ctx, &trades, query, signature, limit); err != nil {
		return nil, fmt.Errorf("list trades by signature: %w", err)
	}
	return trades, nil
}
