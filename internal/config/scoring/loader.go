package scoring

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultConfigName is the config loaded when the caller names none.
const DefaultConfigName = "default"

// DefaultConfigDir holds one YAML file per named config.
const DefaultConfigDir = "config/scoring"

// Loader loads named configs from a directory and caches them for process
// lifetime. Loading is strict: unknown keys and missing keys both fail.
type Loader struct {
	dir string

	mu    sync.Mutex
	cache map[string]*Loaded
}

// Loaded pairs a validated config with its identity metadata.
type Loaded struct {
	Config *Config
	Hash   string
	Path   string
}

// NewLoader creates a loader rooted at dir (DefaultConfigDir when empty).
func NewLoader(dir string) *Loader {
	if dir == "" {
		dir = DefaultConfigDir
	}
	return &Loader{dir: dir, cache: make(map[string]*Loaded)}
}

// Load returns the named config, reading and validating the file on first
// use and serving the cached copy afterwards.
func (l *Loader) Load(name string) (*Loaded, error) {
	if name == "" {
		name = DefaultConfigName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, ok := l.cache[name]; ok {
		return cached, nil
	}

	path := filepath.Join(l.dir, name+".yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ValidationError{Field: "file", Msg: fmt.Sprintf("config not found: %s", path)}
		}
		return nil, fmt.Errorf("read scoring config %s: %w", path, err)
	}

	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("load scoring config %s: %w", path, err)
	}

	loaded := &Loaded{Config: cfg, Hash: cfg.Hash(), Path: path}
	l.cache[name] = loaded
	return loaded, nil
}

// Parse decodes and validates one config document. Decoding rejects unknown
// keys so a typo in a weight name cannot silently fall back to zero.
func Parse(raw []byte) (*Config, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)

	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration, mirroring config/scoring/default.yaml.
// Used by tests and as the fallback for embedded tooling; file loading is the
// production path so that hash-keyed caches see exactly what operators deploy.
func Default() *Config {
	return &Config{
		Name: DefaultConfigName,
		AdvancedStats: AdvancedStatsConfig{
			LeagueAvg: map[string]float64{
				"PTS": 14.0, "REB": 4.5, "AST": 3.0, "STL": 0.7, "BLK": 0.4,
				"FG_PCT": 0.460, "FG3_PCT": 0.360, "FT_PCT": 0.780,
				"TS_PCT": 0.570, "USG_PCT": 0.200, "PIE": 0.100,
				"NET_RATING": 0.0, "MIN": 20.0,
			},
			ValueScoreWeights: ValueScoreWeights{
				PIE: 0.25, PER: 0.20, BPM: 0.15, Production: 0.20, TS: 0.10, WS: 0.10,
			},
			AgeAdjustments: AgeAdjustments{
				Young: 5, Developing: 3, Prime: 0, Veteran: -2, Aging: -5,
			},
		},
		SalaryModel: SalaryModelConfig{
			SalaryTiers: []SalaryTier{
				{Name: "SUPERMAX", MinSalaryM: 40},
				{Name: "MAX", MinSalaryM: 30},
				{Name: "NEAR_MAX", MinSalaryM: 20},
				{Name: "MID_LEVEL", MinSalaryM: 10},
				{Name: "ROLE_PLAYER", MinSalaryM: 5},
				{Name: "MINIMUM_PLUS", MinSalaryM: 2},
			},
			MarketSegments: []MarketSegment{
				{Threshold: 90, MinValueM: 40, MaxValueM: 51},
				{Threshold: 70, MinValueM: 20, MaxValueM: 40},
				{Threshold: 50, MinValueM: 8, MaxValueM: 20},
				{Threshold: 30, MinValueM: 3, MaxValueM: 8},
			},
			AgeDiscounts: []AgeDiscount{
				{MinAge: 35, Multiplier: 0.70},
				{MinAge: 33, Multiplier: 0.85},
				{MinAge: 31, Multiplier: 0.95},
			},
		},
		FitModel: FitModelConfig{
			VersatilityWeights: VersatilityWeights{Position: 0.30, Defense: 0.30, Balance: 0.40},
			DefenseRoleScores:  DefenseRoleScores{Elite: 90, Solid: 70, Weak: 40},
		},
		TradeValue: TradeValueConfig{
			Weights: TradeValueWeights{Performance: 0.50, Contract: 0.25, Fit: 0.25},
			TierThresholds: TierThresholds{
				Untouchable: 85, Franchise: 70, AllStar: 55, QualityStarter: 40, Rotation: 25,
			},
		},
	}
}
