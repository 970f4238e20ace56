// Package scenario persists saved trade scenarios as JSON files, one per
// scenario, named by a sanitized scenario name.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/courtlab/capmatch/internal/score/composite"
)

// Scenario is one saved simulation with its inputs and outcome.
type Scenario struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	AGives      []string              `json:"team_a_gives"`
	BGives      []string              `json:"team_b_gives"`
	RuleVersion string                `json:"rule_version"`
	ConfigHash  string                `json:"scoring_config_hash"`
	Result      composite.TradeResult `json:"result"`
	SavedAt     time.Time             `json:"saved_at"`
}

// Store keeps scenarios under one base directory.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scenario dir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// sanitizeName keeps letters, digits, underscore, hyphen and spaces, so a
// scenario name can never escape the base directory. An empty result falls
// back to "scenario".
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '_', r == '-', r == ' ':
			b.WriteRune(r)
		}
	}
	safe := strings.TrimSpace(b.String())
	if safe == "" {
		return "scenario"
	}
	return safe
}

func (s *Store) path(name string) string {
	return filepath.Join(s.baseDir, sanitizeName(name)+".json")
}

// Save writes the scenario and returns its stored name. A missing ID gets
// a fresh UUID; SavedAt is always stamped here.
func (s *Store) Save(name string, sc Scenario) (string, error) {
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	sc.Name = sanitizeName(name)
	sc.SavedAt = time.Now().UTC()

	raw, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode scenario: %w", err)
	}
	if err := os.WriteFile(s.path(name), raw, 0o644); err != nil {
		return "", fmt.Errorf("write scenario: %w", err)
	}
	return sc.Name, nil
}

// Load reads one scenario by name.
func (s *Store) Load(name string) (Scenario, error) {
	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario %q: %w", name, err)
	}
	var sc Scenario
	if err := json.Unmarshal(raw, &sc); err != nil {
		return Scenario{}, fmt.Errorf("decode scenario %q: %w", name, err)
	}
	return sc, nil
}

// List returns stored scenario names, sorted.
func (s *Store) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.baseDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a scenario; deleting a missing one is a no-op.
func (s *Store) Delete(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete scenario %q: %w", name, err)
	}
	return nil
}

// Rename moves a scenario to a new name and returns the stored new name.
func (s *Store) Rename(oldName, newName string) (string, error) {
	if _, err := os.Stat(s.path(oldName)); err != nil {
		return "", fmt.Errorf("rename scenario %q: %w", oldName, err)
	}
	if err := os.Rename(s.path(oldName), s.path(newName)); err != nil {
		return "", fmt.Errorf("rename scenario %q: %w", oldName, err)
	}
	return sanitizeName(newName), nil
}
