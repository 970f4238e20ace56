// Package stats turns raw box-score and advanced inputs into a normalized
// 0-100 VALUE_SCORE, age-adjusted. This is the first pipeline stage; players
// below the games/minutes thresholds are dropped here, not flagged.
package stats

import (
	"math"

	"github.com/courtlab/capmatch/internal/config/scoring"
	"github.com/courtlab/capmatch/internal/domain/player"
	"github.com/courtlab/capmatch/internal/score/ranks"
)

// Fixed replacement level for the VORP approximation, in BPM points.
const replacementLevelBPM = -2.0

// ageCurve maps integer age (clamped 19-40) to a performance-retention
// multiplier peaking at 26-27. Fixed by construction; not configurable.
var ageCurve = map[int]float64{
	19: 0.72, 20: 0.78, 21: 0.84, 22: 0.89, 23: 0.93,
	24: 0.96, 25: 0.98, 26: 1.00, 27: 1.00, 28: 0.99,
	29: 0.97, 30: 0.94, 31: 0.90, 32: 0.86, 33: 0.81,
	34: 0.75, 35: 0.69, 36: 0.62, 37: 0.55, 38: 0.48,
	39: 0.41, 40: 0.35,
}

// Production composite sub-weights inside VALUE_SCORE. Fixed.
const (
	prodWeightPTS = 0.40
	prodWeightREB = 0.25
	prodWeightAST = 0.25
	prodWeightSTL = 0.05
	prodWeightBLK = 0.05
)

// Analyzer computes the advanced-stats block for every qualifying player.
type Analyzer struct {
	MinGamesPlayed int
	MinMinutes     float64
	cfg            scoring.AdvancedStatsConfig
}

// NewAnalyzer uses the default GP>=20, MIN>=15 qualification thresholds.
func NewAnalyzer(cfg scoring.AdvancedStatsConfig) *Analyzer {
	return &Analyzer{MinGamesPlayed: 20, MinMinutes: 15, cfg: cfg}
}

// Analyze filters out non-qualifying players and fills in PER/BPM/VORP/WS
// approximations, the age-curve projection, and VALUE_SCORE_ADJ. Returns the
// surviving records; an empty result means "no qualifying players" and must
// be treated as insufficient data by the caller, not an error.
func (a *Analyzer) Analyze(records []player.Record) []player.Record {
	kept := make([]player.Record, 0, len(records))
	for _, r := range records {
		if r.GamesPlayed >= a.MinGamesPlayed && r.Minutes >= a.MinMinutes {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return kept
	}

	// PER raw values need the cohort median before they can be scaled, so
	// this is a two-pass computation.
	perRaw := make([]float64, len(kept))
	for i, r := range kept {
		perRaw[i] = a.perRaw(r)
	}
	perMedian := ranks.Median(perRaw)

	for i := range kept {
		r := &kept[i]
		if perMedian != 0 {
			r.PERApprox = round2(perRaw[i] / perMedian * 15)
		}
		r.BPMApprox = a.bpmApprox(*r)
		r.VORPApprox = round2((r.BPMApprox - replacementLevelBPM) * (r.Minutes / 48.0) * float64(r.GamesPlayed) / 82.0)
		r.WinSharesApprox = math.Max(0, round2(r.PERApprox*r.Minutes*float64(r.GamesPlayed)/(48*82*15)*10))
		r.AgeCurveFactor = AgeCurveFactor(r.Age)
		r.ProjectedValue = round2(r.PERApprox * r.AgeCurveFactor)
	}

	a.fillValueScores(kept)

	for i := range kept {
		r := &kept[i]
		r.AgeAdj = a.ageAdjustment(r.Age)
		r.ValueScoreAdj = round1(r.ValueScore + r.AgeAdj)
	}
	return kept
}

// perRaw is the pre-normalization efficiency composite. The middle term
// approximates a turnover penalty from shot volume against a floored FG%.
func (a *Analyzer) perRaw(r player.Record) float64 {
	fgPct := math.Max(r.FGPct, 0.3)
	turnoverPenalty := (r.Points/fgPct - r.Points) * 0.5
	return r.Points*1.0 +
		r.Rebounds*1.2 +
		r.Assists*1.5 +
		r.Steals*2.0 +
		r.Blocks*2.0 -
		turnoverPenalty +
		r.TSPct*10
}

func (a *Analyzer) bpmApprox(r player.Record) float64 {
	avg := a.cfg.LeagueAvg
	return round2(r.NetRating*0.3 +
		(r.Points-avg["PTS"])*0.15 +
		(r.Rebounds-avg["REB"])*0.20 +
		(r.Assists-avg["AST"])*0.25 +
		(r.Steals-avg["STL"])*1.5 +
		(r.Blocks-avg["BLK"])*1.5 +
		(r.TSPct-avg["TS_PCT"])*20)
}

// fillValueScores blends percentile ranks across the whole cohort. All raw
// stats must be present before any rank is computed; this is the pipeline's
// one synchronization barrier.
func (a *Analyzer) fillValueScores(records []player.Record) {
	n := len(records)
	pie := make([]float64, n)
	per := make([]float64, n)
	bpm := make([]float64, n)
	ws := make([]float64, n)
	pts := make([]float64, n)
	reb := make([]float64, n)
	ast := make([]float64, n)
	stl := make([]float64, n)
	blk := make([]float64, n)
	ts := make([]float64, n)

	for i, r := range records {
		pie[i], per[i], bpm[i], ws[i] = r.PIE, r.PERApprox, r.BPMApprox, r.WinSharesApprox
		pts[i], reb[i], ast[i], stl[i], blk[i], ts[i] = r.Points, r.Rebounds, r.Assists, r.Steals, r.Blocks, r.TSPct
	}

	pieRank := ranks.Percentile(pie)
	perRank := ranks.Percentile(per)
	bpmRank := ranks.Percentile(bpm)
	wsRank := ranks.Percentile(ws)
	ptsRank := ranks.Percentile(pts)
	rebRank := ranks.Percentile(reb)
	astRank := ranks.Percentile(ast)
	stlRank := ranks.Percentile(stl)
	blkRank := ranks.Percentile(blk)
	tsRank := ranks.Percentile(ts)

	w := a.cfg.ValueScoreWeights
	for i := range records {
		production := (ptsRank[i]*prodWeightPTS +
			rebRank[i]*prodWeightREB +
			astRank[i]*prodWeightAST +
			stlRank[i]*prodWeightSTL +
			blkRank[i]*prodWeightBLK) * 100

		records[i].ValueScore = round1(pieRank[i]*100*w.PIE +
			perRank[i]*100*w.PER +
			bpmRank[i]*100*w.BPM +
			production*w.Production +
			tsRank[i]*100*w.TS +
			wsRank[i]*100*w.WS)
	}
}

func (a *Analyzer) ageAdjustment(age float64) float64 {
	adj := a.cfg.AgeAdjustments
	switch {
	case age <= 0:
		return 0
	case age < 23:
		return adj.Young
	case age < 25:
		return adj.Developing
	case age <= 28:
		return adj.Prime
	case age <= 32:
		return adj.Veteran
	default:
		return adj.Aging
	}
}

// AgeCurveFactor returns the retention multiplier for an age, clamping to
// the 19-40 table range. Unknown (zero) ages project at full value.
func AgeCurveFactor(age float64) float64 {
	if age <= 0 {
		return 1.0
	}
	year := int(math.Round(age))
	if year < 19 {
		year = 19
	}
	if year > 40 {
		year = 40
	}
	return ageCurve[year]
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
