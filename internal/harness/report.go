package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/samdwyer/questforge/internal/quest"
)

// Capabilities records which optional features a run (or any run of a
// scenario) produced.
type Capabilities struct {
	Door     bool `json:"door" yaml:"door"`
	Trap     bool `json:"trap_terrain" yaml:"trap_terrain"`
	Treasure bool `json:"treasure_terrain" yaml:"treasure_terrain"`
}

func (c Capabilities) or(o Capabilities) Capabilities {
	return Capabilities{
		Door:     c.Door || o.Door,
		Trap:     c.Trap || o.Trap,
		Treasure: c.Treasure || o.Treasure,
	}
}

// Summary holds aggregate counts. PatchPassRate is nil when patches were
// not applied.
type Summary struct {
	ScenarioCount     int          `json:"scenario_count,omitempty" yaml:"scenario_count,omitempty"`
	Total             int          `json:"total" yaml:"total"`
	Pass              int          `json:"pass" yaml:"pass"`
	Fail              int          `json:"fail" yaml:"fail"`
	DeterministicRate float64      `json:"deterministic_rate" yaml:"deterministic_rate"`
	PatchPassRate     *float64     `json:"patch_pass_rate" yaml:"patch_pass_rate"`
	Capabilities      Capabilities `json:"capabilities" yaml:"capabilities"`
}

// ScenarioStats is the per-scenario breakdown.
type ScenarioStats struct {
	ScenarioID   string `json:"scenario_id" yaml:"scenario_id"`
	Name         string `json:"name" yaml:"name"`
	IsRandomized bool   `json:"is_randomized" yaml:"is_randomized"`
	Summary      `yaml:",inline"`
}

// PatchSummary condenses a patch batch for a failure record.
type PatchSummary struct {
	Accepted      int      `json:"accepted" yaml:"accepted"`
	Rejected      int      `json:"rejected" yaml:"rejected"`
	FinalOK       bool     `json:"final_ok" yaml:"final_ok"`
	FinalErrors   []string `json:"final_errors,omitempty" yaml:"final_errors,omitempty"`
	FinalHash     string   `json:"final_hash" yaml:"final_hash"`
	RejectReasons []string `json:"reject_reasons,omitempty" yaml:"reject_reasons,omitempty"`
}

// FailureRecord keeps full context for a failing run.
type FailureRecord struct {
	ScenarioID string        `json:"scenario_id" yaml:"scenario_id"`
	Seed       string        `json:"seed" yaml:"seed"`
	Request    quest.Request `json:"request" yaml:"request"`
	Errors     []string      `json:"errors" yaml:"errors"`
	Warnings   []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	HashA      string        `json:"hash_a" yaml:"hash_a"`
	HashB      string        `json:"hash_b" yaml:"hash_b"`
	HashMatch  bool          `json:"hash_match" yaml:"hash_match"`
	Patch      *PatchSummary `json:"patch,omitempty" yaml:"patch,omitempty"`
	Reason     string        `json:"reason" yaml:"reason"`
}

// ReplayCase is the minimum needed to reproduce a failure.
type ReplayCase struct {
	ScenarioID     string        `json:"scenario_id" yaml:"scenario_id"`
	Seed           string        `json:"seed" yaml:"seed"`
	Request        quest.Request `json:"request" yaml:"request"`
	IncludePatches bool          `json:"include_patches" yaml:"include_patches"`
	Reason         string        `json:"reason" yaml:"reason"`
}

// OptionsSnapshot records the effective options of a run.
type OptionsSnapshot struct {
	RunsPerScenario     int    `json:"runs_per_scenario" yaml:"runs_per_scenario"`
	RandomScenarioCount int    `json:"random_scenario_count" yaml:"random_scenario_count"`
	RandomScenarioSeed  string `json:"random_scenario_seed" yaml:"random_scenario_seed"`
	IncludePatches      bool   `json:"include_patches" yaml:"include_patches"`
	MaxFailureRecords   int    `json:"max_failure_records" yaml:"max_failure_records"`
	ScenarioCount       int    `json:"scenario_count" yaml:"scenario_count"`
}

func optionsSnapshot(o Options, scenarioCount int) OptionsSnapshot {
	return OptionsSnapshot{
		RunsPerScenario:     o.RunsPerScenario,
		RandomScenarioCount: o.RandomScenarioCount,
		RandomScenarioSeed:  o.RandomScenarioSeed,
		IncludePatches:      o.IncludePatches,
		MaxFailureRecords:   o.MaxFailureRecords,
		ScenarioCount:       scenarioCount,
	}
}

// Report is the result of RunSuite.
type Report struct {
	ID              string          `json:"id" yaml:"id"`
	StartedAt       time.Time       `json:"started_at" yaml:"started_at"`
	DurationMS      int64           `json:"duration_ms" yaml:"duration_ms"`
	Version         string          `json:"version" yaml:"version"`
	Options         OptionsSnapshot `json:"options" yaml:"options"`
	Summary         Summary         `json:"summary" yaml:"summary"`
	Scenarios       []ScenarioStats `json:"scenarios" yaml:"scenarios"`
	Failures        []FailureRecord `json:"failures" yaml:"failures"`
	DroppedFailures int             `json:"dropped_failures" yaml:"dropped_failures"`
	ReplayCases     []ReplayCase    `json:"replay_cases" yaml:"replay_cases"`
	Interrupted     bool            `json:"interrupted,omitempty" yaml:"interrupted,omitempty"`
}

// OK reports whether every run passed.
func (r *Report) OK() bool {
	return r.Summary.Fail == 0 && !r.Interrupted
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteYAML writes the report as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// SaveFile writes the report to path, choosing YAML for .yaml/.yml and
// JSON otherwise.
func (r *Report) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = r.WriteYAML(f)
	default:
		err = r.WriteJSON(f)
	}
	if err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// LoadReplayCases reads replay cases from a saved report file.
func LoadReplayCases(path string) ([]ReplayCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var report Report
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &report)
	default:
		err = json.Unmarshal(data, &report)
	}
	if err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return report.ReplayCases, nil
}
