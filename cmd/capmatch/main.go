package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/courtlab/capmatch/internal/backtest"
	"github.com/courtlab/capmatch/internal/commentary"
	"github.com/courtlab/capmatch/internal/config/scoring"
	"github.com/courtlab/capmatch/internal/domain/cba"
	"github.com/courtlab/capmatch/internal/interfaces/http"
	"github.com/courtlab/capmatch/internal/metrics"
	"github.com/courtlab/capmatch/internal/persistence"
	"github.com/courtlab/capmatch/internal/persistence/postgres"
	"github.com/courtlab/capmatch/internal/pipeline"
	"github.com/courtlab/capmatch/internal/report"
	"github.com/courtlab/capmatch/internal/scenario"
	"github.com/courtlab/capmatch/internal/score/composite"
)

const (
	appName = "capmatch"
	version = "v1.0.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "NBA trade value estimation and CBA salary matching",
		Version: version,
		Long: `capmatch scores a player cohort into trade values and checks proposed
trades against tax-apron salary-matching rules.`,
	}
	rootCmd.PersistentFlags().String("config", scoring.DefaultConfigName, "Scoring config name under the config directory")
	rootCmd.PersistentFlags().String("config-dir", scoring.DefaultConfigDir, "Scoring config directory")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newTradeCmd())
	rootCmd.AddCommand(newCBACmd())
	rootCmd.AddCommand(newBacktestCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*scoring.Config, string, error) {
	name, _ := cmd.Flags().GetString("config")
	dir, _ := cmd.Flags().GetString("config-dir")
	loaded, err := scoring.NewLoader(dir).Load(name)
	if err != nil {
		return nil, "", err
	}
	return loaded.Config, loaded.Hash, nil
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full scoring pipeline over a player CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, hash, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dataPath, _ := cmd.Flags().GetString("data")
			outputDir, _ := cmd.Flags().GetString("output")

			res, err := pipeline.NewRunner(cfg, log.Logger).Run(dataPath, outputDir)
			if err != nil {
				return err
			}

			topN, _ := cmd.Flags().GetInt("top")
			if topN > len(res.Players) {
				topN = len(res.Players)
			}
			fmt.Printf("config=%s players=%d scored=%d\n", hash, res.LoadedCount, res.ScoredCount)
			fmt.Printf("%-25s %4s %6s %8s %8s %s\n", "PLAYER", "AGE", "SALARY", "VALUE", "SURPLUS", "TIER")
			for _, p := range res.Players[:topN] {
				fmt.Printf("%-25s %4.0f %6.1f %8.1f %+8.1f %s\n",
					p.Name, p.Age, p.SalaryM, p.TradeValue, p.SurplusValueM, p.TradeValueTier)
			}

			if dsn, _ := cmd.Flags().GetString("postgres"); dsn != "" {
				if err := persistRun(cmd.Context(), dsn, hash, res); err != nil {
					return fmt.Errorf("persist snapshots: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("data", "data/processed/players_with_salary.csv", "Merged player CSV path")
	cmd.Flags().String("output", "data/processed", "Artifact output directory")
	cmd.Flags().Int("top", 20, "Rows to print")
	cmd.Flags().String("postgres", "", "Postgres DSN; when set, snapshots the run")
	return cmd
}

// persistRun snapshots a scored cohort under a fresh run ID.
func persistRun(ctx context.Context, dsn, configHash string, res pipeline.Result) error {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshots := make([]persistence.PlayerSnapshot, 0, len(res.Players))
	for _, p := range res.Players {
		snapshots = append(snapshots, persistence.PlayerSnapshot{
			PlayerName:     p.Name,
			Team:           p.Team,
			Age:            p.Age,
			SalaryM:        p.SalaryM,
			MarketValueM:   p.MarketValueM,
			SurplusValueM:  p.SalarySurplusM,
			TradeValue:     p.TradeValue,
			TradeValueTier: p.TradeValueTier,
		})
	}

	runID := uuid.New().String()
	repo := postgres.NewSnapshotRepo(db, 10*time.Second)
	if err := repo.InsertRun(ctx, runID, configHash, snapshots); err != nil {
		return err
	}
	log.Info().Str("run_id", runID).Int("snapshots", len(snapshots)).Msg("run persisted")
	return nil
}

func newTradeCmd() *cobra.Command {
	rule := newRuleValue(cba.RuleSimple125)
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Simulate a trade between two player packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, hash, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dataPath, _ := cmd.Flags().GetString("data")
			aGives := splitNames(cmd, "team-a-gives")
			bGives := splitNames(cmd, "team-b-gives")

			res, err := pipeline.NewRunner(cfg, log.Logger).Run(dataPath, "")
			if err != nil {
				return err
			}

			engine := composite.NewEngine(cfg.TradeValue)
			opts := composite.SimulateOptions{Rule: rule.String()}
			if cmd.Flags().Changed("team-a-payroll") && cmd.Flags().Changed("team-b-payroll") {
				payrollA, _ := cmd.Flags().GetFloat64("team-a-payroll")
				payrollB, _ := cmd.Flags().GetFloat64("team-b-payroll")
				ctxA := cba.BuildContext("A", payrollA)
				ctxB := cba.BuildContext("B", payrollB)
				opts.ContextA = &ctxA
				opts.ContextB = &ctxB
			}

			sim, err := engine.SimulateTrade(res.Players, aGives, bGives, opts)
			if err != nil {
				return err
			}

			pills := report.BuildMetricPills(sim)
			fmt.Printf("signature=%s\n", report.TradeSignature(aGives, bGives))
			fmt.Printf("salary_match=%s value_delta=%s cap_impact=%s\n",
				pills.SalaryMatchStatus, pills.TradeValueDelta, pills.CapImpactM)
			for _, bullet := range report.BuildExplainBullets(sim) {
				fmt.Printf("- %s\n", bullet)
			}

			if saveName, _ := cmd.Flags().GetString("save"); saveName != "" {
				dir, _ := cmd.Flags().GetString("scenario-dir")
				store, err := scenario.NewStore(dir)
				if err != nil {
					return err
				}
				stored, err := store.Save(saveName, scenario.Scenario{
					AGives:      aGives,
					BGives:      bGives,
					RuleVersion: sim.RuleVersion,
					ConfigHash:  hash,
					Result:      sim,
				})
				if err != nil {
					return err
				}
				fmt.Printf("scenario saved as %q\n", stored)
			}

			if mdPath, _ := cmd.Flags().GetString("export-md"); mdPath != "" {
				md := report.BuildMarkdown(report.MarkdownInput{
					AGives: aGives, BGives: bGives, Result: sim, ConfigHash: hash,
				})
				if err := report.ExportMarkdown(mdPath, md); err != nil {
					return err
				}
				fmt.Printf("report written to %s\n", mdPath)
			}
			return nil
		},
	}
	cmd.Flags().String("data", "data/processed/players_with_salary.csv", "Merged player CSV path")
	cmd.Flags().String("team-a-gives", "", "Pipe-separated names team A sends")
	cmd.Flags().String("team-b-gives", "", "Pipe-separated names team B sends")
	cmd.Flags().Var(rule, "rule", "Salary-match rule (simple_125|tiered_2023|cba_v1)")
	cmd.Flags().Float64("team-a-payroll", 0, "Team A payroll in $M, enables full CBA evaluation")
	cmd.Flags().Float64("team-b-payroll", 0, "Team B payroll in $M, enables full CBA evaluation")
	cmd.Flags().String("save", "", "Save the result as a named scenario")
	cmd.Flags().String("scenario-dir", "data/scenarios", "Scenario storage directory")
	cmd.Flags().String("export-md", "", "Write a markdown report to this path")
	return cmd
}

func newCBACmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cba",
		Short: "Evaluate one side of a trade against the rule engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			payroll, _ := cmd.Flags().GetFloat64("payroll")
			outgoing, _ := cmd.Flags().GetFloat64("outgoing")
			incoming, _ := cmd.Flags().GetFloat64("incoming")
			players, _ := cmd.Flags().GetInt("outgoing-players")
			team, _ := cmd.Flags().GetString("team")

			ctx := cba.BuildContext(team, payroll)
			decision := cba.EvaluateSide(cba.SideInput{
				TeamCode:        team,
				OutgoingSalaryM: outgoing,
				IncomingSalaryM: incoming,
				OutgoingPlayers: players,
			}, ctx)

			raw, err := json.MarshalIndent(decision, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(raw))
			return nil
		},
	}
	cmd.Flags().String("team", "UNK", "Team code")
	cmd.Flags().Float64("payroll", 0, "Team payroll in $M")
	cmd.Flags().Float64("outgoing", 0, "Outgoing salary in $M")
	cmd.Flags().Float64("incoming", 0, "Incoming salary in $M")
	cmd.Flags().Int("outgoing-players", 1, "Number of outgoing players")
	return cmd
}

func newBacktestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay historical trades against current trade values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dataPath, _ := cmd.Flags().GetString("data")
			tradesPath, _ := cmd.Flags().GetString("trades")

			res, err := pipeline.NewRunner(cfg, log.Logger).Run(dataPath, "")
			if err != nil {
				return err
			}
			trades, err := backtest.LoadTrades(tradesPath)
			if err != nil {
				return err
			}

			engine := composite.NewEngine(cfg.TradeValue)
			result, err := backtest.Run(engine, res.Players, trades)
			if err != nil {
				return err
			}

			fmt.Printf("trades=%d accuracy=%.2f%%\n", result.NumTrades, result.Accuracy*100)
			for _, d := range result.Details {
				mark := "MISS"
				if d.Correct {
					mark = "HIT"
				}
				fmt.Printf("%-12s predicted=%-9s expected=%-9s diff=%+.1f %s\n",
					d.TradeID, d.PredictedWinner, d.ExpectedWinner, d.ValueDifference, mark)
			}
			return nil
		},
	}
	cmd.Flags().String("data", "data/processed/players_with_salary.csv", "Merged player CSV path")
	cmd.Flags().String("trades", "data/historical_trades/canonical_trades.csv", "Canonical trades CSV path")
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the evaluation API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, hash, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dataPath, _ := cmd.Flags().GetString("data")

			m := metrics.New()
			started := time.Now()
			res, err := pipeline.NewRunner(cfg, log.Logger).Run(dataPath, "")
			m.PipelineDuration.Observe(time.Since(started).Seconds())
			if err != nil {
				m.PipelineRuns.WithLabelValues("error").Inc()
				return err
			}
			m.PipelineRuns.WithLabelValues("ok").Inc()

			var cache commentary.Cache = commentary.NewMemoryCache()
			if redisAddr, _ := cmd.Flags().GetString("redis"); redisAddr != "" {
				client := redis.NewClient(&redis.Options{Addr: redisAddr})
				if err := client.Ping(cmd.Context()).Err(); err != nil {
					return fmt.Errorf("redis ping: %w", err)
				}
				cache = commentary.NewRedisCache(client, 0)
				log.Info().Str("addr", redisAddr).Msg("commentary cache on redis")
			}

			engine := composite.NewEngine(cfg.TradeValue)
			handlers := http.NewHandlers(res.Players, engine, commentary.NewGenerator(cache), hash, m, log.Logger)

			if dsn, _ := cmd.Flags().GetString("postgres"); dsn != "" {
				db, err := sqlx.ConnectContext(cmd.Context(), "postgres", dsn)
				if err != nil {
					return fmt.Errorf("postgres connect: %w", err)
				}
				defer db.Close()
				handlers.WithTradeRepo(postgres.NewTradeRepo(db, 10*time.Second))
				log.Info().Msg("simulation persistence on postgres")
			}

			serverCfg := http.DefaultServerConfig()
			serverCfg.Host, _ = cmd.Flags().GetString("host")
			serverCfg.Port, _ = cmd.Flags().GetInt("port")
			srv := http.NewServer(serverCfg, handlers, m, log.Logger)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				log.Info().Str("signal", sig.String()).Msg("shutting down")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
	cmd.Flags().String("data", "data/processed/players_with_salary.csv", "Merged player CSV path")
	cmd.Flags().String("host", "127.0.0.1", "Listen host")
	cmd.Flags().Int("port", 8080, "Listen port")
	cmd.Flags().String("redis", "", "Redis address for the commentary cache (host:port)")
	cmd.Flags().String("postgres", "", "Postgres DSN; when set, persists simulated trades")
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Validate the scoring config and print its hash",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, hash, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("config")
			fmt.Printf("config=%s hash=%s ok\n", name, hash)
			return nil
		},
	}
}

// ruleValue validates the salary-match rule at flag-parse time.
type ruleValue struct {
	name string
}

var _ pflag.Value = (*ruleValue)(nil)

func newRuleValue(def string) *ruleValue {
	return &ruleValue{name: def}
}

func (v *ruleValue) String() string { return v.name }
func (v *ruleValue) Type() string   { return "rule" }

func (v *ruleValue) Set(raw string) error {
	switch raw {
	case cba.RuleSimple125, cba.RuleTiered2023, cba.RuleCBAV1:
		v.name = raw
		return nil
	}
	return fmt.Errorf("unknown rule %q (want %s, %s or %s)",
		raw, cba.RuleSimple125, cba.RuleTiered2023, cba.RuleCBAV1)
}

func splitNames(cmd *cobra.Command, flag string) []string {
	raw, _ := cmd.Flags().GetString(flag)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var names []string
	for _, p := range strings.Split(raw, "|") {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}
