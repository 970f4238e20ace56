// Package contract infers contract structure from salary and age: type,
// remaining years, trade restrictions and a 0-100 flexibility score. It also
// prices draft picks and computes single-contract salary-match ranges.
package contract

import (
	"math"
	"sort"
	"strings"

	"github.com/courtlab/capmatch/internal/domain/cba"
	"github.com/courtlab/capmatch/internal/domain/player"
)

// Contract type codes.
const (
	TypeSupermax    = "SUPERMAX"
	TypeMax         = "MAX"
	TypeNearMax     = "NEAR_MAX"
	TypeHighValue   = "HIGH_VALUE"
	TypeMidLevel    = "MID_LEVEL"
	TypeRolePlayer  = "ROLE_PLAYER"
	TypeRookieScale = "ROOKIE_SCALE"
	TypeRookieExt   = "ROOKIE_EXT"
	TypeMinimum     = "MINIMUM"
	TypeTwoWay      = "TWO_WAY"
	TypeUnknown     = "UNKNOWN"
)

// Trade restriction flags, pipe-joined in TRADE_RESTRICTIONS.
const (
	RestrictNoTrade       = "NTC"
	RestrictRookieExtWait = "ROOKIE_EXT_WAIT"
	RestrictPossible3Mo   = "POSSIBLE_3MO_WAIT"
	RestrictHardToMatch   = "HARD_TO_MATCH"
	RestrictDifficult     = "DIFFICULT_TO_MATCH"
	RestrictNone          = "NONE"
)

// Extension eligibility states.
const (
	ExtRookieEligible  = "ROOKIE_EXTENSION_ELIGIBLE"
	ExtEligible        = "EXTENSION_ELIGIBLE"
	ExtEligibleLimited = "EXTENSION_ELIGIBLE_LIMITED"
	ExtNotYet          = "NOT_YET_ELIGIBLE"
)

// draftPickValue prices picks 1-58 in $M of trade value. Unlisted picks
// (second-round throw-ins past 58) are worth 0.5.
var draftPickValue = map[int]float64{
	1: 55.0, 2: 45.0, 3: 40.0, 4: 36.0, 5: 33.0,
	6: 30.0, 7: 28.0, 8: 26.0, 9: 24.0, 10: 22.0,
	11: 20.0, 12: 18.5, 13: 17.0, 14: 15.5, 15: 14.0,
	16: 13.0, 17: 12.0, 18: 11.0, 19: 10.0, 20: 9.5,
	21: 9.0, 22: 8.5, 23: 8.0, 24: 7.5, 25: 7.0,
	26: 6.5, 27: 6.0, 28: 5.5, 29: 5.0, 30: 4.5,
	31: 4.0, 32: 3.8, 33: 3.6, 34: 3.4, 35: 3.2,
	36: 3.0, 37: 2.8, 38: 2.6, 39: 2.4, 40: 2.2,
	41: 2.0, 42: 1.9, 43: 1.8, 44: 1.7, 45: 1.6,
	46: 1.5, 47: 1.4, 48: 1.3, 49: 1.2, 50: 1.1,
	51: 1.0, 52: 0.9, 53: 0.8, 54: 0.7, 55: 0.6,
	56: 0.5, 57: 0.4, 58: 0.3,
}

// Analyzer computes the contract block. SalaryCapM is in $M.
type Analyzer struct {
	SalaryCapM float64
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{SalaryCapM: cba.SalaryCapM}
}

// Analyze fills the contract columns in place. Each step depends on the
// previous one (type -> years -> restrictions -> flexibility), mirroring the
// column order of the output.
func (a *Analyzer) Analyze(records []player.Record) []player.Record {
	for i := range records {
		r := &records[i]
		r.ContractType = a.classifyContract(r.SalaryM, r.Age)
		r.YearsRemaining = a.estimateYearsRemaining(r.ContractType, r.Age)
		r.TotalContractValueM = player.Round2(r.SalaryM * float64(r.YearsRemaining))
		r.TradeRestrictions = a.assessRestrictions(r.ContractType, r.Age, r.SalaryM)
		r.TradeKickerLikely = a.hasTradeKicker(r.ContractType, r.SalaryM)
		r.ExtensionEligible = a.extensionEligibility(r.ContractType, r.Age, r.YearsRemaining)
		r.ContractFlexibility = a.flexibility(r.SalaryM, r.YearsRemaining, r.TradeRestrictions)
		r.SalaryMatchMinM = player.Round2(math.Max(0, (r.SalaryM-0.1)/1.25))
		r.SalaryMatchMaxM = player.Round2(r.SalaryM*1.25 + 0.1)
	}
	return records
}

func (a *Analyzer) classifyContract(salaryM, age float64) string {
	if salaryM <= 0 {
		return TypeUnknown
	}

	switch {
	case salaryM >= a.SalaryCapM*0.35:
		return TypeSupermax
	case salaryM >= a.SalaryCapM*0.30:
		return TypeMax
	case salaryM >= a.SalaryCapM*0.25:
		return TypeNearMax
	}

	// Young players in the rookie-scale salary window, before the generic
	// dollar ladders.
	if age <= 24 && salaryM >= 1.5 && salaryM <= 15 {
		if salaryM <= 6 {
			return TypeRookieScale
		}
		return TypeRookieExt
	}

	switch {
	case salaryM >= 20:
		return TypeHighValue
	case salaryM >= 10:
		return TypeMidLevel
	case salaryM >= 3:
		return TypeRolePlayer
	case salaryM < 2:
		return TypeTwoWay
	default:
		return TypeMinimum
	}
}

func (a *Analyzer) estimateYearsRemaining(contractType string, age float64) int {
	switch contractType {
	case TypeRookieScale:
		yearsInLeague := int(age) - 19
		if yearsInLeague < 0 {
			yearsInLeague = 0
		}
		if remaining := 4 - yearsInLeague; remaining > 1 {
			return remaining
		}
		return 1
	case TypeRookieExt:
		return 4
	case TypeSupermax:
		if age >= 33 {
			return 2
		}
		return 4
	case TypeMax:
		if age >= 32 {
			return 2
		}
		return 3
	case TypeNearMax, TypeHighValue:
		return 3
	case TypeMidLevel, TypeRolePlayer:
		return 2
	default:
		return 1
	}
}

func (a *Analyzer) assessRestrictions(contractType string, age, salaryM float64) string {
	var restrictions []string

	if contractType == TypeSupermax && age >= 30 {
		restrictions = append(restrictions, RestrictNoTrade)
	}
	if contractType == TypeRookieExt && age <= 25 {
		restrictions = append(restrictions, RestrictRookieExtWait)
	}
	if (contractType == TypeMax || contractType == TypeSupermax) && age <= 28 {
		restrictions = append(restrictions, RestrictPossible3Mo)
	}
	if salaryM >= 45 {
		restrictions = append(restrictions, RestrictHardToMatch)
	} else if salaryM >= 35 {
		restrictions = append(restrictions, RestrictDifficult)
	}

	if len(restrictions) == 0 {
		return RestrictNone
	}
	return strings.Join(restrictions, "|")
}

func (a *Analyzer) hasTradeKicker(contractType string, salaryM float64) bool {
	switch contractType {
	case TypeSupermax, TypeMax, TypeNearMax:
		return salaryM >= 25
	}
	return false
}

func (a *Analyzer) extensionEligibility(contractType string, age float64, yearsRemaining int) string {
	if contractType == TypeRookieScale && yearsRemaining <= 2 {
		return ExtRookieEligible
	}
	if yearsRemaining <= 2 {
		if age <= 30 {
			return ExtEligible
		}
		return ExtEligibleLimited
	}
	return ExtNotYet
}

// flexibility starts at 50 and shifts for salary size, contract length and
// restrictions, clamped to [0, 100].
func (a *Analyzer) flexibility(salaryM float64, yearsRemaining int, restrictions string) float64 {
	score := 50.0

	switch {
	case salaryM < 5:
		score += 25
	case salaryM < 10:
		score += 15
	case salaryM < 20:
		score += 5
	case salaryM < 35:
		score -= 10
	default:
		score -= 25
	}

	switch {
	case yearsRemaining == 1:
		score += 20
	case yearsRemaining == 2:
		score += 10
	case yearsRemaining >= 4:
		score -= 15
	}

	if strings.Contains(restrictions, RestrictNoTrade) {
		score -= 30
	}
	if strings.Contains(restrictions, RestrictHardToMatch) {
		score -= 20
	}
	if strings.Contains(restrictions, RestrictDifficult) {
		score -= 10
	}

	return math.Max(0, math.Min(100, player.Round1(score)))
}

// MatchOption is a salary-matching candidate for a target incoming salary.
type MatchOption struct {
	Players         []string `json:"players"`
	CombinedSalaryM float64  `json:"combined_salary_m"`
	MatchType       string   `json:"match_type"` // SINGLE or COMBO_2
	Flexibility     float64  `json:"flexibility,omitempty"`
}

// SalaryMatchingOptions finds contracts (or two-contract combos) whose total
// falls in the 125%+$100K window around targetSalaryM. Single matches are
// preferred, ranked by flexibility; combos are a fallback capped at five.
func (a *Analyzer) SalaryMatchingOptions(records []player.Record, targetSalaryM float64, team string, limit int) []MatchOption {
	if limit <= 0 {
		limit = 10
	}
	candidates := make([]player.Record, 0, len(records))
	for _, r := range records {
		if team == "" || r.Team == team {
			candidates = append(candidates, r)
		}
	}

	minMatch := (targetSalaryM - 0.1) / 1.25
	maxMatch := targetSalaryM*1.25 + 0.1

	var singles []MatchOption
	for _, r := range candidates {
		if r.SalaryM >= minMatch && r.SalaryM <= maxMatch {
			singles = append(singles, MatchOption{
				Players:         []string{r.Name},
				CombinedSalaryM: player.Round2(r.SalaryM),
				MatchType:       "SINGLE",
				Flexibility:     r.ContractFlexibility,
			})
		}
	}
	if len(singles) > 0 {
		sort.SliceStable(singles, func(i, j int) bool {
			return singles[i].Flexibility > singles[j].Flexibility
		})
		if len(singles) > limit {
			singles = singles[:limit]
		}
		return singles
	}

	sorted := make([]player.Record, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SalaryM > sorted[j].SalaryM
	})

	var combos []MatchOption
	for i := range sorted {
		if targetSalaryM-sorted[i].SalaryM <= 0 {
			continue
		}
		for j := range sorted {
			if i == j {
				continue
			}
			combined := sorted[i].SalaryM + sorted[j].SalaryM
			if combined >= minMatch && combined <= maxMatch {
				combos = append(combos, MatchOption{
					Players:         []string{sorted[i].Name, sorted[j].Name},
					CombinedSalaryM: player.Round2(combined),
					MatchType:       "COMBO_2",
				})
				if len(combos) >= 5 {
					return combos
				}
			}
		}
	}
	return combos
}

// DraftPickValue prices a pick in $M. Protections discount once by the
// strongest clause named; future picks decay 10% per year out.
func DraftPickValue(pickNumber int, protections string, yearsOut int) float64 {
	base, ok := draftPickValue[pickNumber]
	if !ok {
		base = 0.5
	}

	discount := 1.0
	switch {
	case strings.Contains(protections, "TOP_3"):
		discount = 0.7
	case strings.Contains(protections, "TOP_5"):
		discount = 0.75
	case strings.Contains(protections, "TOP_10"):
		discount = 0.8
	case strings.Contains(protections, "LOTTERY"):
		discount = 0.85
	}

	future := math.Pow(0.9, float64(yearsOut))
	return player.Round1(base * discount * future)
}
