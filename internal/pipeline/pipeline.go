// Package pipeline runs the five-stage evaluation flow end to end: load,
// advanced stats, salary, fit, contract, then the composite trade value.
package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/courtlab/capmatch/internal/config/scoring"
	"github.com/courtlab/capmatch/internal/data"
	"github.com/courtlab/capmatch/internal/domain/player"
	"github.com/courtlab/capmatch/internal/score/composite"
	"github.com/courtlab/capmatch/internal/score/contract"
	"github.com/courtlab/capmatch/internal/score/fit"
	"github.com/courtlab/capmatch/internal/score/salary"
	"github.com/courtlab/capmatch/internal/score/stats"
)

// Output artifact names under the output directory.
const (
	FullArtifact    = "trade_value_full.csv"
	RankingArtifact = "trade_value_ranking.csv"
)

// Runner wires the scoring stages together under one config snapshot.
type Runner struct {
	cfg *scoring.Config
	log zerolog.Logger
}

func NewRunner(cfg *scoring.Config, log zerolog.Logger) *Runner {
	return &Runner{cfg: cfg, log: log}
}

// Result is the pipeline outcome: the enriched cohort plus run metadata.
type Result struct {
	Players       []player.Record
	ConfigHash    string
	LoadedCount   int
	ScoredCount   int
	FullPath      string
	RankingPath   string
}

// Run executes the full pipeline from a merged player CSV and, when
// outputDir is non-empty, writes both CSV artifacts. An empty post-filter
// cohort is insufficient data, reported as an error here because nothing
// downstream can work with it.
func (p *Runner) Run(dataPath, outputDir string) (Result, error) {
	hash := p.cfg.Hash()
	log := p.log.With().Str("config_hash", hash).Logger()

	records, err := data.LoadPlayers(dataPath)
	if err != nil {
		return Result{}, fmt.Errorf("load players: %w", err)
	}
	loaded := len(records)
	log.Info().Int("players", loaded).Str("path", dataPath).Msg("player data loaded")

	records = stats.NewAnalyzer(p.cfg.AdvancedStats).Analyze(records)
	if len(records) == 0 {
		return Result{}, fmt.Errorf("no players qualify after GP/MIN filter (loaded %d)", loaded)
	}
	log.Info().Int("qualified", len(records)).Msg("advanced stats computed")

	records = salary.NewAnalyzer(p.cfg.SalaryModel).Analyze(records)
	log.Info().Msg("salary analysis computed")

	records = fit.NewAnalyzer(p.cfg.FitModel).Analyze(records)
	log.Info().Msg("fit analysis computed")

	records = contract.NewAnalyzer().Analyze(records)
	log.Info().Msg("contract analysis computed")

	records = composite.NewEngine(p.cfg.TradeValue).Calculate(records)
	log.Info().
		Float64("top_trade_value", records[0].TradeValue).
		Str("top_player", records[0].Name).
		Msg("trade values computed")

	res := Result{
		Players:     records,
		ConfigHash:  hash,
		LoadedCount: loaded,
		ScoredCount: len(records),
	}

	if outputDir != "" {
		res.FullPath = filepath.Join(outputDir, FullArtifact)
		res.RankingPath = filepath.Join(outputDir, RankingArtifact)
		if err := data.WriteFull(res.FullPath, records); err != nil {
			return Result{}, fmt.Errorf("write full artifact: %w", err)
		}
		if err := data.WriteRanking(res.RankingPath, records); err != nil {
			return Result{}, fmt.Errorf("write ranking artifact: %w", err)
		}
		log.Info().Str("full", res.FullPath).Str("ranking", res.RankingPath).Msg("artifacts written")
	}
	return res, nil
}
