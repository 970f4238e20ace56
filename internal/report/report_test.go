package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtlab/capmatch/internal/domain/cba"
	"github.com/courtlab/capmatch/internal/score/composite"
)

func TestTradeSignatureOrderInsensitive(t *testing.T) {
	sig1 := TradeSignature([]string{"B Player", "A Player"}, []string{"C Player"})
	sig2 := TradeSignature([]string{"A Player", "B Player"}, []string{"C Player"})
	assert.Equal(t, sig1, sig2)
	assert.Equal(t, "A:A Player|B Player__B:C Player", sig1)

	// Sides are not interchangeable.
	flipped := TradeSignature([]string{"C Player"}, []string{"A Player", "B Player"})
	assert.NotEqual(t, sig1, flipped)

	assert.Equal(t, "A:__B:", TradeSignature(nil, nil))
}

func TestBuildMetricPills(t *testing.T) {
	pills := BuildMetricPills(composite.TradeResult{
		SalaryMatch:     true,
		SalaryDiffM:     3.25,
		ValueDifference: -7.5,
	})
	assert.Equal(t, "-7.5", pills.TradeValueDelta)
	assert.Equal(t, "PASS", pills.SalaryMatchStatus)
	assert.Equal(t, "3.25M", pills.CapImpactM)
	assert.Equal(t, "70.0", pills.FitScore)

	// Fit floors at zero for huge imbalances.
	floored := BuildMetricPills(composite.TradeResult{ValueDifference: 40})
	assert.Equal(t, "0.0", floored.FitScore)
	assert.Equal(t, "FAIL", floored.SalaryMatchStatus)
	assert.Equal(t, "+40.0", floored.TradeValueDelta)
}

func TestBuildExplainBullets(t *testing.T) {
	res := composite.TradeResult{
		SalaryMatch:     false,
		ValueDifference: 9.0,
		CBADecision: &cba.TradeDecision{
			TeamA: cba.Decision{Reasons: []string{cba.ReasonApron2TakeMore}},
			TeamB: cba.Decision{Reasons: []string{}},
		},
	}
	bullets := BuildExplainBullets(res)
	require.Len(t, bullets, 3)
	assert.Equal(t, "Salary matching failed under selected rule set.", bullets[0])
	assert.Equal(t, "Team A sends higher aggregate trade value.", bullets[1])
	assert.Contains(t, bullets[2], cba.ReasonApron2TakeMore)

	balanced := BuildExplainBullets(composite.TradeResult{SalaryMatch: true, ValueDifference: -2})
	require.Len(t, balanced, 2)
	assert.Equal(t, "Value exchange is broadly balanced.", balanced[1])
}

func TestBuildMarkdown(t *testing.T) {
	md := BuildMarkdown(MarkdownInput{
		AGives: []string{"Star"},
		BGives: nil,
		Result: composite.TradeResult{
			SalaryMatch:     true,
			ValueDifference: 1.5,
			RuleVersion:     cba.RuleCBAV1,
		},
		ConfigHash: "abc123def456",
		Now:        time.Date(2026, 2, 6, 12, 30, 0, 0, time.UTC),
	})

	assert.Contains(t, md, "# Trade Scenario Report")
	assert.Contains(t, md, "Generated: 2026-02-06 12:30 UTC")
	assert.Contains(t, md, "- Team A sends: Star")
	assert.Contains(t, md, "- Team B sends: None")
	assert.Contains(t, md, "- Rule Version: cba_v1")
	assert.Contains(t, md, "- Scoring Config Hash: abc123def456")
	assert.Contains(t, md, "## Explain This Result")
}

func TestExportMarkdownCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "nested", "trade.md")
	require.NoError(t, ExportMarkdown(path, "# hi"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# hi", string(raw))
}
