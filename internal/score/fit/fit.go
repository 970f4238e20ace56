// Package fit classifies play styles, offensive and defensive roles, and
// height-based positional flexibility, then blends them into a 0-100
// versatility score.
package fit

import (
	"sort"
	"strconv"
	"strings"

	"github.com/courtlab/capmatch/internal/config/scoring"
	"github.com/courtlab/capmatch/internal/domain/player"
	"github.com/courtlab/capmatch/internal/score/ranks"
)

// Play style codes, checked in order; the first matching rule wins.
const (
	StyleFloorGeneral    = "FLOOR_GENERAL"
	StylePaintBeast      = "PAINT_BEAST"
	StyleRimProtector    = "RIM_PROTECTOR"
	StyleStretchBig      = "STRETCH_BIG"
	StyleVersatileScorer = "VERSATILE_SCORER"
	StyleScoringGuard    = "SCORING_GUARD"
	StylePlaymaker       = "PLAYMAKER"
	StyleTwoWayWing      = "TWO_WAY_WING"
	StyleThreeAndD       = "THREE_AND_D"
	StyleRolePlayer      = "ROLE_PLAYER"
)

// Defensive role codes.
const (
	DefRimProtector     = "RIM_PROTECTOR"
	DefRebounder        = "REBOUNDER"
	DefPerimeterStopper = "PERIMETER_STOPPER"
	DefVersatile        = "VERSATILE_DEFENDER"
	DefSolid            = "SOLID_DEFENDER"
	DefLimited          = "LIMITED_DEFENDER"
)

// Offensive role codes.
const (
	OffPrimaryScorer      = "PRIMARY_SCORER"
	OffPrimaryPlaymaker   = "PRIMARY_PLAYMAKER"
	OffSecondaryScorer    = "SECONDARY_SCORER"
	OffSecondaryPlaymaker = "SECONDARY_PLAYMAKER"
	OffFloorSpacer        = "FLOOR_SPACER"
	OffFinisher           = "FINISHER"
)

// heightBand maps an inch range [low, high) to plausible positions.
type heightBand struct {
	low, high int
	positions []string
}

var heightBands = []heightBand{
	{72, 76, []string{"PG"}},
	{76, 79, []string{"PG", "SG"}},
	{79, 81, []string{"SG", "SF"}},
	{81, 83, []string{"SF", "PF"}},
	{83, 90, []string{"PF", "C"}},
}

const bigThresholdInches = 81 // 6-9 and up plays like a big

// Analyzer computes the fit block.
type Analyzer struct {
	cfg scoring.FitModelConfig
}

func NewAnalyzer(cfg scoring.FitModelConfig) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze fills PLAY_STYLE, OFFENSIVE_ROLE, DEFENSIVE_ROLE, POSITIONS,
// POSITION_FLEX and FIT_VERSATILITY_SCORE in place. Versatility needs the
// whole cohort for the balance ranks, so like the stats stage this operates
// on the full slice.
func (a *Analyzer) Analyze(records []player.Record) []player.Record {
	for i := range records {
		r := &records[i]
		r.PlayStyle = a.ClassifyPlayStyle(*r)
		r.OffensiveRole = a.classifyOffensiveRole(*r)
		r.DefensiveRole = a.classifyDefensiveRole(*r)
		r.Positions = EstimatePositions(r.Height)
		r.PositionFlex = len(r.Positions)
	}
	a.fillVersatility(records)
	return records
}

// ClassifyPlayStyle walks the ordered style ladder. Order matters: a tall
// playmaking center hits FLOOR_GENERAL before any big-man style.
func (a *Analyzer) ClassifyPlayStyle(r player.Record) string {
	inches := ParseHeightInches(r.Height)
	isBig := inches >= bigThresholdInches && inches > 0

	switch {
	case r.Assists >= 8 && r.UsagePct >= 0.22:
		return StyleFloorGeneral
	case isBig && r.Rebounds >= 9 && r.Points >= 18 && r.FGPct >= 0.55:
		return StylePaintBeast
	case isBig && r.Blocks >= 1.5 && r.Rebounds >= 7:
		return StyleRimProtector
	case isBig && r.FG3Pct >= 0.33:
		return StyleStretchBig
	case r.Points >= 22 && r.UsagePct >= 0.28 && r.TSPct >= 0.56:
		return StyleVersatileScorer
	case r.Points >= 18 && r.FG3Pct >= 0.35 && r.UsagePct >= 0.25:
		return StyleScoringGuard
	case r.Assists >= 5 && r.UsagePct >= 0.20:
		return StylePlaymaker
	case !isBig && r.Steals >= 1.0 && r.Points >= 12 && r.FG3Pct >= 0.33:
		return StyleTwoWayWing
	case r.FG3Pct >= 0.36 && r.UsagePct < 0.22 && r.Steals >= 0.5:
		return StyleThreeAndD
	default:
		return StyleRolePlayer
	}
}

func (a *Analyzer) classifyOffensiveRole(r player.Record) string {
	switch {
	case r.Points >= 25 && r.UsagePct >= 0.30:
		return OffPrimaryScorer
	case r.Assists >= 7:
		return OffPrimaryPlaymaker
	case r.Points >= 18 && r.UsagePct >= 0.23:
		return OffSecondaryScorer
	case r.Assists >= 4:
		return OffSecondaryPlaymaker
	case r.FG3Pct >= 0.36:
		return OffFloorSpacer
	default:
		return OffFinisher
	}
}

func (a *Analyzer) classifyDefensiveRole(r player.Record) string {
	inches := ParseHeightInches(r.Height)
	isBig := inches >= bigThresholdInches && inches > 0
	defRating := r.DefRating
	if defRating == 0 {
		defRating = 115
	}

	switch {
	case isBig && r.Blocks >= 1.5:
		return DefRimProtector
	case isBig && r.Rebounds >= 8:
		return DefRebounder
	case r.Steals >= 1.5:
		return DefPerimeterStopper
	case r.Steals >= 1.0 && r.Blocks >= 0.5:
		return DefVersatile
	case defRating <= 108:
		return DefSolid
	default:
		return DefLimited
	}
}

// ParseHeightInches converts a "feet-inches" string like "6-11" to total
// inches. Anything unparseable is 0, meaning unknown.
func ParseHeightInches(height string) int {
	parts := strings.Split(strings.TrimSpace(height), "-")
	if len(parts) != 2 {
		return 0
	}
	feet, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	inches, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return feet*12 + inches
}

// EstimatePositions returns the sorted position set for a height. Heights
// outside every band fall back to C for 7-6+ and PG for the very short;
// unknown heights get no positions.
func EstimatePositions(height string) []string {
	inches := ParseHeightInches(height)
	if inches == 0 {
		return nil
	}

	set := map[string]bool{}
	for _, band := range heightBands {
		if inches >= band.low && inches < band.high {
			for _, p := range band.positions {
				set[p] = true
			}
		}
	}
	if len(set) == 0 {
		if inches >= 83 {
			return []string{"C"}
		}
		return []string{"PG"}
	}

	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// fillVersatility blends position flexibility, defensive role quality and
// statistical balance. Balance is the player's weakest percentile across the
// five counting stats: no glaring hole means a high score.
func (a *Analyzer) fillVersatility(records []player.Record) {
	n := len(records)
	if n == 0 {
		return
	}

	pts := make([]float64, n)
	reb := make([]float64, n)
	ast := make([]float64, n)
	stl := make([]float64, n)
	blk := make([]float64, n)
	for i, r := range records {
		pts[i], reb[i], ast[i], stl[i], blk[i] = r.Points, r.Rebounds, r.Assists, r.Steals, r.Blocks
	}
	ptsRank := ranks.Percentile(pts)
	rebRank := ranks.Percentile(reb)
	astRank := ranks.Percentile(ast)
	stlRank := ranks.Percentile(stl)
	blkRank := ranks.Percentile(blk)

	w := a.cfg.VersatilityWeights
	for i := range records {
		r := &records[i]

		posScore := float64(r.PositionFlex) / 2 * 100
		if posScore > 100 {
			posScore = 100
		}

		balance := ptsRank[i]
		for _, v := range []float64{rebRank[i], astRank[i], stlRank[i], blkRank[i]} {
			if v < balance {
				balance = v
			}
		}
		balanceScore := player.Round1(balance * 100)

		r.FitVersatility = player.Round1(posScore*w.Position +
			a.defenseRoleScore(r.DefensiveRole)*w.Defense +
			balanceScore*w.Balance)
	}
}

func (a *Analyzer) defenseRoleScore(role string) float64 {
	s := a.cfg.DefenseRoleScores
	switch role {
	case DefVersatile, DefPerimeterStopper:
		return s.Elite
	case DefRimProtector, DefRebounder, DefSolid:
		return s.Solid
	default:
		return s.Weak
	}
}
