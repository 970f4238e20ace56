package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, dir string, cfg *Config) string {
	t.Helper()
	raw, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(dir, cfg.Name+".yaml")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, Default())

	loader := NewLoader(dir)
	first, err := loader.Load("default")
	require.NoError(t, err)
	assert.Equal(t, "default", first.Config.Name)
	assert.Len(t, first.Hash, 12)

	// Repeated loads of the same unmodified file are cached and hash-stable.
	second, err := loader.Load("default")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, first.Hash, second.Hash)
}

func TestHashChangesWhenWeightChanges(t *testing.T) {
	base := Default()
	baseHash := base.Hash()

	changed := Default()
	changed.TradeValue.Weights.Performance = 0.55
	changed.TradeValue.Weights.Contract = 0.20

	assert.NotEqual(t, baseHash, changed.Hash())
	assert.Equal(t, baseHash, Default().Hash(), "hash is deterministic across constructions")
}

func TestLoaderMissingFile(t *testing.T) {
	loader := NewLoader(t.TempDir())
	_, err := loader.Load("nonexistent")
	require.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	raw, err := yaml.Marshal(Default())
	require.NoError(t, err)
	raw = append(raw, []byte("\nmystery_section:\n  foo: 1\n")...)

	_, err = Parse(raw)
	require.Error(t, err)
}

func TestValidateRejectsBadWeightSums(t *testing.T) {
	cfg := Default()
	cfg.TradeValue.Weights.Fit = 0.30 // 0.50 + 0.25 + 0.30 = 1.05

	err := cfg.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "trade_value.weights", verr.Field)
}

func TestValidateAcceptsFloatRoundingAtSixDecimals(t *testing.T) {
	cfg := Default()
	cfg.FitModel.VersatilityWeights = VersatilityWeights{
		Position: 0.3000000001, Defense: 0.2999999999, Balance: 0.40,
	}
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsMissingSections(t *testing.T) {
	cfg := Default()
	cfg.AdvancedStats.LeagueAvg = nil
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.SalaryModel.MarketSegments = nil
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Name = ""
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnorderedThresholds(t *testing.T) {
	cfg := Default()
	cfg.TradeValue.TierThresholds.Franchise = 90 // above untouchable
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.SalaryModel.SalaryTiers[1].MinSalaryM = 45 // above SUPERMAX rung
	require.Error(t, cfg.Validate())
}
