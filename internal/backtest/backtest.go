// Package backtest replays historical trades against the current scoring
// output and measures how often the value model picks the accepted winner.
package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/courtlab/capmatch/internal/domain/player"
	"github.com/courtlab/capmatch/internal/score/composite"
)

// Winner labels. The side that receives more aggregate value wins; a value
// difference inside the balance band is a draw.
const (
	WinnerTeamA    = "team_a"
	WinnerTeamB    = "team_b"
	WinnerBalanced = "balanced"
)

// HistoricalTrade is one canonical trade row. Player lists are pipe-joined
// in the CSV.
type HistoricalTrade struct {
	TradeID        string
	AGives         []string
	BGives         []string
	ExpectedWinner string
}

// TradeOutcome is the per-trade backtest verdict.
type TradeOutcome struct {
	TradeID         string  `json:"trade_id"`
	PredictedWinner string  `json:"predicted_winner"`
	ExpectedWinner  string  `json:"expected_winner"`
	SalaryMatch     bool    `json:"salary_match"`
	ValueDifference float64 `json:"value_difference"`
	Correct         bool    `json:"correct"`
}

// Result is the full backtest summary.
type Result struct {
	NumTrades int            `json:"num_trades"`
	Accuracy  float64        `json:"accuracy"`
	Details   []TradeOutcome `json:"details"`
}

// LoadTrades reads the canonical trades CSV: trade_id, team_a_gives,
// team_b_gives, expected_winner. A missing expected_winner defaults to
// balanced.
func LoadTrades(path string) ([]HistoricalTrade, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trades: %w", err)
	}
	defer f.Close()
	return ReadTrades(f)
}

// ReadTrades parses trades from any reader.
func ReadTrades(r io.Reader) ([]HistoricalTrade, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read trades header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"trade_id", "team_a_gives", "team_b_gives"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("trades missing %s column", required)
		}
	}

	var trades []HistoricalTrade
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read trade row: %w", err)
		}
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		expected := get("expected_winner")
		if expected == "" {
			expected = WinnerBalanced
		}
		trades = append(trades, HistoricalTrade{
			TradeID:        get("trade_id"),
			AGives:         splitPlayers(get("team_a_gives")),
			BGives:         splitPlayers(get("team_b_gives")),
			ExpectedWinner: expected,
		})
	}
	return trades, nil
}

func splitPlayers(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, "|") {
		if name := strings.TrimSpace(p); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Run replays every trade through the engine and scores the predictions.
func Run(engine *composite.Engine, players []player.Record, trades []HistoricalTrade) (Result, error) {
	res := Result{Details: make([]TradeOutcome, 0, len(trades))}
	correct := 0

	for _, t := range trades {
		sim, err := engine.SimulateTrade(players, t.AGives, t.BGives, composite.SimulateOptions{})
		if err != nil {
			return Result{}, fmt.Errorf("simulate trade %s: %w", t.TradeID, err)
		}

		predicted := PredictWinner(sim.ValueDifference)
		outcome := TradeOutcome{
			TradeID:         t.TradeID,
			PredictedWinner: predicted,
			ExpectedWinner:  t.ExpectedWinner,
			SalaryMatch:     sim.SalaryMatch,
			ValueDifference: sim.ValueDifference,
			Correct:         predicted == t.ExpectedWinner,
		}
		if outcome.Correct {
			correct++
		}
		res.Details = append(res.Details, outcome)
	}

	res.NumTrades = len(res.Details)
	if res.NumTrades > 0 {
		res.Accuracy = math.Round(float64(correct)/float64(res.NumTrades)*1e4) / 1e4
	}
	return res, nil
}

// PredictWinner maps a value difference to the winning side. Positive means
// side A sent out more value, so side B won the trade.
func PredictWinner(valueDiff float64) string {
	switch {
	case math.Abs(valueDiff) < 5:
		return WinnerBalanced
	case valueDiff > 0:
		return WinnerTeamB
	default:
		return WinnerTeamA
	}
}
