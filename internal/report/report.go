// Package report turns simulation results into display artifacts: the
// canonical trade signature, summary metric pills, plain-language bullets
// and a markdown export.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/courtlab/capmatch/internal/score/composite"
)

// TradeSignature canonicalizes a proposed trade: each side's names sorted
// and pipe-joined, sides separated by a double underscore. Equal trades
// always produce equal signatures, which makes this usable as a cache key
// component.
func TradeSignature(aGives, bGives []string) string {
	return "A:" + joinSorted(aGives) + "__B:" + joinSorted(bGives)
}

func joinSorted(names []string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// MetricPills are the four summary figures shown above a simulation result.
type MetricPills struct {
	TradeValueDelta   string `json:"trade_value_delta"`
	SalaryMatchStatus string `json:"salary_match_status"`
	CapImpactM        string `json:"cap_impact_m"`
	FitScore          string `json:"fit_score"`
}

// BuildMetricPills formats the headline numbers. The fit pill decays from
// 100 by four points per unit of value imbalance, floored at zero.
func BuildMetricPills(res composite.TradeResult) MetricPills {
	status := "FAIL"
	if res.SalaryMatch {
		status = "PASS"
	}
	fitScore := 100.0 - abs(res.ValueDifference)*4.0
	if fitScore < 0 {
		fitScore = 0
	}
	return MetricPills{
		TradeValueDelta:   fmt.Sprintf("%+.1f", res.ValueDifference),
		SalaryMatchStatus: status,
		CapImpactM:        fmt.Sprintf("%.2fM", res.SalaryDiffM),
		FitScore:          fmt.Sprintf("%.1f", fitScore),
	}
}

// BuildExplainBullets writes the result out in plain language: match
// outcome, value balance, then any per-side CBA constraints.
func BuildExplainBullets(res composite.TradeResult) []string {
	var bullets []string

	if res.SalaryMatch {
		bullets = append(bullets, "Salary matching passed under selected rule set.")
	} else {
		bullets = append(bullets, "Salary matching failed under selected rule set.")
	}

	switch {
	case abs(res.ValueDifference) < 5:
		bullets = append(bullets, "Value exchange is broadly balanced.")
	case res.ValueDifference > 0:
		bullets = append(bullets, "Team A sends higher aggregate trade value.")
	default:
		bullets = append(bullets, "Team B sends higher aggregate trade value.")
	}

	if res.CBADecision != nil {
		if reasons := res.CBADecision.TeamA.Reasons; len(reasons) > 0 {
			bullets = append(bullets, "Team A constraints: "+strings.Join(reasons, ", "))
		}
		if reasons := res.CBADecision.TeamB.Reasons; len(reasons) > 0 {
			bullets = append(bullets, "Team B constraints: "+strings.Join(reasons, ", "))
		}
	}
	return bullets
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// MarkdownInput collects everything the markdown report needs.
type MarkdownInput struct {
	AGives     []string
	BGives     []string
	Result     composite.TradeResult
	ConfigHash string
	Now        time.Time
}

// BuildMarkdown renders the scenario report. A zero Now uses the current
// UTC time.
func BuildMarkdown(in MarkdownInput) string {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	ruleVersion := in.Result.RuleVersion
	if ruleVersion == "" {
		ruleVersion = "n/a"
	}
	configHash := in.ConfigHash
	if configHash == "" {
		configHash = "n/a"
	}

	lines := []string{
		"# Trade Scenario Report",
		"Generated: " + now.Format("2006-01-02 15:04 UTC"),
		"",
		"- Team A sends: " + orNone(in.AGives),
		"- Team B sends: " + orNone(in.BGives),
		fmt.Sprintf("- Salary Match: %t", in.Result.SalaryMatch),
		fmt.Sprintf("- Value Difference: %.1f", in.Result.ValueDifference),
		"- Rule Version: " + ruleVersion,
		"- Scoring Config Hash: " + configHash,
		"",
		"## Explain This Result",
	}
	for _, bullet := range BuildExplainBullets(in.Result) {
		lines = append(lines, "- "+bullet)
	}
	return strings.Join(lines, "\n")
}

func orNone(names []string) string {
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, ", ")
}

// ExportMarkdown writes the report, creating parent directories.
func ExportMarkdown(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
