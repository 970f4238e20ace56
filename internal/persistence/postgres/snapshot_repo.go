// Package postgres implements the persistence contracts on PostgreSQL via
// sqlx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtlab/capmatch/internal/persistence"
)

type snapshotRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewSnapshotRepo returns a PostgreSQL-backed snapshot repository.
func NewSnapshotRepo(db *sqlx.DB, timeout time.Duration) persistence.SnapshotRepo {
	return &snapshotRepo{db: db, timeout: timeout}
}

// InsertRun writes a whole pipeline run atomically. RunID and ConfigHash on
// the snapshots are overwritten with the arguments so a run can never mix
// hashes.
func (r *snapshotRepo) InsertRun(ctx context.Context, runID, configHash string, snapshots []persistence.PlayerSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO player_snapshots
			(run_id, config_hash, player_name, team, age, salary_m,
			 market_value_m, surplus_value_m, trade_value, trade_value_tier)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range snapshots {
		_, err = stmt.ExecContext(ctx,
			runID, configHash, s.PlayerName, s.Team, s.Age, s.SalaryM,
			s.MarketValueM, s.SurplusValueM, s.TradeValue, s.TradeValueTier)
		if err != nil {
			return fmt.Errorf("insert snapshot for %s: %w", s.PlayerName, err)
		}
	}
	return tx.Commit()
}

// ListByRun returns a run's snapshots, highest trade value first.
func (r *snapshotRepo) ListByRun(ctx context.Context, runID string, limit int) ([]persistence.PlayerSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, run_id, config_hash, player_name, team, age, salary_m,
		       market_value_m, surplus_value_m, trade_value, trade_value_tier, created_at
		FROM player_snapshots
		WHERE run_id = $1
		ORDER BY trade_value DESC
		LIMIT $2`

	var snapshots []persistence.PlayerSnapshot
	if err := r.db.SelectContext(ctx, &snapshots, query, runID, limit); err != nil {
		return nil, fmt.Errorf("list snapshots for run %s: %w", runID, err)
	}
	return snapshots, nil
}

// LatestRunID returns the most recent run, or empty when none exist.
func (r *snapshotRepo) LatestRunID(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var runID string
	err := r.db.GetContext(ctx, &runID, `
		SELECT run_id FROM player_snapshots
		ORDER BY created_at DESC
		LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest run id: %w", err)
	}
	return runID, nil
}
