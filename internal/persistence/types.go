// Package persistence defines the storage contracts for evaluation
// snapshots and simulated trades.
package persistence

import (
	"context"
	"time"
)

// PlayerSnapshot is one player's scored row as persisted after a pipeline
// run. Snapshots from the same run share RunID and ConfigHash.
type PlayerSnapshot struct {
	ID             int64     `db:"id" json:"id"`
	RunID          string    `db:"run_id" json:"run_id"`
	ConfigHash     string    `db:"config_hash" json:"config_hash"`
	PlayerName     string    `db:"player_name" json:"player_name"`
	Team           string    `db:"team" json:"team"`
	Age            float64   `db:"age" json:"age"`
	SalaryM        float64   `db:"salary_m" json:"salary_m"`
	MarketValueM   float64   `db:"market_value_m" json:"market_value_m"`
	SurplusValueM  float64   `db:"surplus_value_m" json:"surplus_value_m"`
	TradeValue     float64   `db:"trade_value" json:"trade_value"`
	TradeValueTier string    `db:"trade_value_tier" json:"trade_value_tier"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// SimulatedTrade is one evaluated trade kept for audit and backtesting.
type SimulatedTrade struct {
	ID              int64     `db:"id" json:"id"`
	TradeSignature  string    `db:"trade_signature" json:"trade_signature"`
	RuleVersion     string    `db:"rule_version" json:"rule_version"`
	ConfigHash      string    `db:"config_hash" json:"config_hash"`
	SalaryMatch     bool      `db:"salary_match" json:"salary_match"`
	SalaryDiffM     float64   `db:"salary_diff_m" json:"salary_diff_m"`
	ValueDifference float64   `db:"value_difference" json:"value_difference"`
	Verdict         string    `db:"verdict" json:"verdict"`
	ResultJSON      []byte    `db:"result_json" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// SnapshotRepo stores and queries scored player snapshots.
type SnapshotRepo interface {
	InsertRun(ctx context.Context, runID, configHash string, snapshots []PlayerSnapshot) error
	ListByRun(ctx context.Context, runID string, limit int) ([]PlayerSnapshot, error)
	LatestRunID(ctx context.Context) (string, error)
}

// TradeRepo stores evaluated trades.
type TradeRepo interface {
	Insert(ctx context.Context, trade SimulatedTrade) (int64, error)
	ListBySignature(ctx context.Context, signature string, limit int) ([]SimulatedTrade, error)
}
