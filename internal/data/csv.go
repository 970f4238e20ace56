// Package data reads and writes the player-season CSV artifacts. Input is
// the merged stats+salary file; outputs are the full enriched table and the
// trimmed ranking table.
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/courtlab/capmatch/internal/domain/player"
)

// rankingColumns is the trimmed column set for trade_value_ranking.csv.
var rankingColumns = []string{
	"PLAYER_NAME", "TEAM_ABBREVIATION", "AGE", "GP", "MIN",
	"PTS", "REB", "AST", "STL", "BLK",
	"PIE", "TS_PCT", "NET_RATING",
	"PER_APPROX", "BPM_APPROX", "VORP_APPROX", "WIN_SHARES_APPROX",
	"VALUE_SCORE", "AGE_ADJ", "VALUE_SCORE_ADJ",
	"SALARY_M", "CAP_PCT", "SALARY_TIER",
	"MARKET_VALUE_M", "SURPLUS_VALUE_M",
	"PLAY_STYLE", "OFFENSIVE_ROLE", "DEFENSIVE_ROLE",
	"POSITIONS", "POSITION_FLEX", "FIT_VERSATILITY_SCORE",
	"TRADE_VALUE", "TRADE_VALUE_TIER",
}

// fullColumns is every raw and derived column, in pipeline order.
var fullColumns = []string{
	"PLAYER_NAME", "TEAM_ABBREVIATION", "AGE", "GP", "MIN",
	"PTS", "REB", "AST", "STL", "BLK",
	"FG_PCT", "FG3_PCT", "FT_PCT", "TS_PCT", "USG_PCT",
	"PIE", "NET_RATING", "DEF_RATING", "PLAYER_HEIGHT",
	"SALARY", "SALARY_M",
	"PER_APPROX", "BPM_APPROX", "VORP_APPROX", "WIN_SHARES_APPROX",
	"AGE_CURVE_FACTOR", "PROJECTED_VALUE",
	"VALUE_SCORE", "AGE_ADJ", "VALUE_SCORE_ADJ",
	"CAP_PCT", "SALARY_TIER", "MARKET_VALUE_M", "SALARY_SURPLUS_M", "CONTRACT_VALUE_RATIO",
	"PLAY_STYLE", "OFFENSIVE_ROLE", "DEFENSIVE_ROLE", "POSITIONS", "POSITION_FLEX", "FIT_VERSATILITY_SCORE",
	"CONTRACT_TYPE", "YEARS_REMAINING", "TOTAL_CONTRACT_VALUE", "TRADE_RESTRICTIONS",
	"TRADE_KICKER_LIKELY", "EXTENSION_ELIGIBLE", "CONTRACT_FLEXIBILITY",
	"SALARY_MATCH_MIN", "SALARY_MATCH_MAX",
	"PERF_SCORE_NORM", "CONTRACT_SCORE_NORM", "FIT_SCORE_NORM",
	"TRADE_VALUE", "TRADE_VALUE_TIER", "SURPLUS_VALUE_M",
}

// LoadPlayers reads the merged player CSV. Columns are matched by header
// name so ordering does not matter; missing numeric cells default to zero
// and SALARY_M is derived from SALARY when absent.
func LoadPlayers(path string) ([]player.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open player data: %w", err)
	}
	defer f.Close()
	return ReadPlayers(f)
}

// ReadPlayers parses player rows from any reader.
func ReadPlayers(r io.Reader) ([]player.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	if _, ok := col["PLAYER_NAME"]; !ok {
		return nil, fmt.Errorf("player data missing PLAYER_NAME column")
	}

	var records []player.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		num := func(name string) float64 {
			v, err := strconv.ParseFloat(get(name), 64)
			if err != nil {
				return 0
			}
			return v
		}

		rec := player.Record{
			Name:        get("PLAYER_NAME"),
			Team:        get("TEAM_ABBREVIATION"),
			Age:         num("AGE"),
			GamesPlayed: int(num("GP")),
			Minutes:     num("MIN"),
			Points:      num("PTS"),
			Rebounds:    num("REB"),
			Assists:     num("AST"),
			Steals:      num("STL"),
			Blocks:      num("BLK"),
			FGPct:       num("FG_PCT"),
			FG3Pct:      num("FG3_PCT"),
			FTPct:       num("FT_PCT"),
			TSPct:       num("TS_PCT"),
			UsagePct:    num("USG_PCT"),
			PIE:         num("PIE"),
			NetRating:   num("NET_RATING"),
			DefRating:   num("DEF_RATING"),
			Height:      get("PLAYER_HEIGHT"),
			Salary:      num("SALARY"),
			SalaryM:     num("SALARY_M"),
		}
		if rec.SalaryM == 0 && rec.Salary > 0 {
			rec.SalaryM = player.Round2(rec.Salary / 1e6)
		}
		if rec.Name == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteFull writes the complete enriched table.
func WriteFull(path string, records []player.Record) error {
	return writeCSV(path, fullColumns, records)
}

// WriteRanking writes the trimmed ranking table.
func WriteRanking(path string, records []player.Record) error {
	return writeCSV(path, rankingColumns, records)
}

func writeCSV(path string, columns []string, records []player.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range records {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = cellValue(&records[i], c)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func cellValue(r *player.Record, column string) string {
	switch column {
	case "PLAYER_NAME":
		return r.Name
	case "TEAM_ABBREVIATION":
		return r.Team
	case "AGE":
		return formatFloat(r.Age)
	case "GP":
		return strconv.Itoa(r.GamesPlayed)
	case "MIN":
		return formatFloat(r.Minutes)
	case "PTS":
		return formatFloat(r.Points)
	case "REB":
		return formatFloat(r.Rebounds)
	case "AST":
		return formatFloat(r.Assists)
	case "STL":
		return formatFloat(r.Steals)
	case "BLK":
		return formatFloat(r.Blocks)
	case "FG_PCT":
		return formatFloat(r.FGPct)
	case "FG3_PCT":
		return formatFloat(r.FG3Pct)
	case "FT_PCT":
		return formatFloat(r.FTPct)
	case "TS_PCT":
		return formatFloat(r.TSPct)
	case "USG_PCT":
		return formatFloat(r.UsagePct)
	case "PIE":
		return formatFloat(r.PIE)
	case "NET_RATING":
		return formatFloat(r.NetRating)
	case "DEF_RATING":
		return formatFloat(r.DefRating)
	case "PLAYER_HEIGHT":
		return r.Height
	case "SALARY":
		return formatFloat(r.Salary)
	case "SALARY_M":
		return formatFloat(r.SalaryM)
	case "PER_APPROX":
		return formatFloat(r.PERApprox)
	case "BPM_APPROX":
		return formatFloat(r.BPMApprox)
	case "VORP_APPROX":
		return formatFloat(r.VORPApprox)
	case "WIN_SHARES_APPROX":
		return formatFloat(r.WinSharesApprox)
	case "AGE_CURVE_FACTOR":
		return formatFloat(r.AgeCurveFactor)
	case "PROJECTED_VALUE":
		return formatFloat(r.ProjectedValue)
	case "VALUE_SCORE":
		return formatFloat(r.ValueScore)
	case "AGE_ADJ":
		return formatFloat(r.AgeAdj)
	case "VALUE_SCORE_ADJ":
		return formatFloat(r.ValueScoreAdj)
	case "CAP_PCT":
		return formatFloat(r.CapPct)
	case "SALARY_TIER":
		return r.SalaryTier
	case "MARKET_VALUE_M":
		return formatFloat(r.MarketValueM)
	case "SALARY_SURPLUS_M":
		return formatFloat(r.SalarySurplusM)
	case "CONTRACT_VALUE_RATIO":
		if r.ContractValueRatio == nil {
			return ""
		}
		return formatFloat(*r.ContractValueRatio)
	case "PLAY_STYLE":
		return r.PlayStyle
	case "OFFENSIVE_ROLE":
		return r.OffensiveRole
	case "DEFENSIVE_ROLE":
		return r.DefensiveRole
	case "POSITIONS":
		if len(r.Positions) == 0 {
			return "UNKNOWN"
		}
		return strings.Join(r.Positions, "/")
	case "POSITION_FLEX":
		return strconv.Itoa(r.PositionFlex)
	case "FIT_VERSATILITY_SCORE":
		return formatFloat(r.FitVersatility)
	case "CONTRACT_TYPE":
		return r.ContractType
	case "YEARS_REMAINING":
		return strconv.Itoa(r.YearsRemaining)
	case "TOTAL_CONTRACT_VALUE":
		return formatFloat(r.TotalContractValueM)
	case "TRADE_RESTRICTIONS":
		return r.TradeRestrictions
	case "TRADE_KICKER_LIKELY":
		return strconv.FormatBool(r.TradeKickerLikely)
	case "EXTENSION_ELIGIBLE":
		return r.ExtensionEligible
	case "CONTRACT_FLEXIBILITY":
		return formatFloat(r.ContractFlexibility)
	case "SALARY_MATCH_MIN":
		return formatFloat(r.SalaryMatchMinM)
	case "SALARY_MATCH_MAX":
		return formatFloat(r.SalaryMatchMaxM)
	case "PERF_SCORE_NORM":
		return formatFloat(r.PerfScoreNorm)
	case "CONTRACT_SCORE_NORM":
		return formatFloat(r.ContractScoreNorm)
	case "FIT_SCORE_NORM":
		return formatFloat(r.FitScoreNorm)
	case "TRADE_VALUE":
		return formatFloat(r.TradeValue)
	case "TRADE_VALUE_TIER":
		return r.TradeValueTier
	case "SURPLUS_VALUE_M":
		return formatFloat(r.SurplusValueM)
	default:
		return ""
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
