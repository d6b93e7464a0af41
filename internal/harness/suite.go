package harness

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/questforge/internal/logger"
	"github.com/samdwyer/questforge/internal/patch"
	"github.com/samdwyer/questforge/internal/quest"
	"github.com/samdwyer/questforge/internal/telemetry"
	"github.com/samdwyer/questforge/internal/world"
)

// Suite defaults.
const (
	DefaultRunsPerScenario     = 20
	DefaultRandomScenarioCount = 3
	DefaultRandomScenarioSeed  = "reliability-suite"
	DefaultMaxFailureRecords   = 25
)

// Options configures RunSuite. A nil Scenarios slice means the library.
type Options struct {
	Scenarios           []Scenario `json:"scenarios,omitempty" yaml:"scenarios,omitempty"`
	RunsPerScenario     int        `json:"runs_per_scenario" yaml:"runs_per_scenario"`
	RandomScenarioCount int        `json:"random_scenario_count" yaml:"random_scenario_count"`
	RandomScenarioSeed  string     `json:"random_scenario_seed" yaml:"random_scenario_seed"`
	IncludePatches      bool       `json:"include_patches" yaml:"include_patches"`
	MaxFailureRecords   int        `json:"max_failure_records" yaml:"max_failure_records"`
}

// DefaultOptions returns the options used by the CLI when nothing is set.
func DefaultOptions() Options {
	return Options{
		RunsPerScenario:     DefaultRunsPerScenario,
		RandomScenarioCount: DefaultRandomScenarioCount,
		RandomScenarioSeed:  DefaultRandomScenarioSeed,
		IncludePatches:      true,
		MaxFailureRecords:   DefaultMaxFailureRecords,
	}
}

func (o Options) normalized() Options {
	if o.RunsPerScenario <= 0 {
		o.RunsPerScenario = DefaultRunsPerScenario
	}
	if o.RandomScenarioCount < 0 {
		o.RandomScenarioCount = 0
	}
	if o.RandomScenarioSeed == "" {
		o.RandomScenarioSeed = DefaultRandomScenarioSeed
	}
	if o.MaxFailureRecords < 0 {
		o.MaxFailureRecords = 0
	}
	return o
}

// RunSeed is the seed string for run i of a scenario.
func RunSeed(scenarioID string, i int) string {
	return fmt.Sprintf("%s-run-%d", scenarioID, i)
}

// RunResult is the outcome of one seeded run.
type RunResult struct {
	ScenarioID    string
	Seed          string
	Request       quest.Request
	Result        *world.GenerationResult
	HashA         string
	HashB         string
	Deterministic bool
	Patch         *patch.ApplyResult
	Capabilities  Capabilities
	Pass          bool
	Reason        string
}

// runOnce is swapped out in tests to force failures.
var runOnce = RunOnce

// RunOnce generates the request twice on fresh generators with the given
// seed, optionally applies simulated patches, and judges the run.
func RunOnce(ctx context.Context, scenarioID string, req quest.Request, seed string, includePatches bool) RunResult {
	req.Seed = seed
	spec := quest.BuildMapSpec(req)

	first := world.NewGenerator().Generate(ctx, spec)
	second := world.NewGenerator().Generate(ctx, spec)

	run := RunResult{
		ScenarioID:    scenarioID,
		Seed:          seed,
		Request:       req,
		Result:        first,
		HashA:         first.Hash,
		HashB:         second.Hash,
		Deterministic: first.Hash == second.Hash,
		Capabilities:  capabilitiesOf(first.Map),
	}

	var reasons []string
	if !first.Validation.OK {
		reasons = append(reasons, "validation failed: "+strings.Join(first.Validation.Errors, "; "))
	}
	if !run.Deterministic {
		reasons = append(reasons, fmt.Sprintf("hash mismatch: %s != %s", run.HashA, run.HashB))
	}
	if includePatches {
		run.Patch = patch.ApplyWithValidation(ctx, first.Map, first.Spec, first.Spawn, patch.CreateSimulatedPatches(first))
		if !run.Patch.FinalValidation.OK {
			reasons = append(reasons, "patch validation failed: "+strings.Join(run.Patch.FinalValidation.Errors, "; "))
		}
	}

	run.Pass = len(reasons) == 0
	run.Reason = strings.Join(reasons, " | ")
	return run
}

// RunSuite runs every scenario RunsPerScenario times and aggregates the
// results. Failure records are capped at MaxFailureRecords; the rest are
// only counted.
func RunSuite(ctx context.Context, opts Options) *Report {
	opts = opts.normalized()
	ctx, span := telemetry.Tracer("harness").Start(ctx, "suite.run")
	defer span.End()

	scenarios := opts.Scenarios
	if scenarios == nil {
		scenarios = ScenarioLibrary()
	}
	scenarios = append(append([]Scenario{}, scenarios...),
		RandomizedScenarioBatch(scenarios, opts.RandomScenarioCount, opts.RandomScenarioSeed)...)

	report := &Report{
		ID:          uuid.NewString(),
		StartedAt:   time.Now().UTC(),
		Version:     world.Version,
		Options:     optionsSnapshot(opts, len(scenarios)),
		Scenarios:   make([]ScenarioStats, 0, len(scenarios)),
		Failures:    []FailureRecord{},
		ReplayCases: []ReplayCase{},
	}
	logger.Infof("Reliability suite %s: %d scenarios x %d runs (patches=%v)",
		report.ID, len(scenarios), opts.RunsPerScenario, opts.IncludePatches)

	var global tally
	for _, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			report.Interrupted = true
			logger.Warningf("Reliability suite %s interrupted: %v", report.ID, err)
			break
		}
		stats := runScenario(ctx, sc, opts, report)
		global.merge(stats.tally)
		report.Scenarios = append(report.Scenarios, stats.ScenarioStats)
	}

	report.Summary = global.summary(opts.IncludePatches)
	report.Summary.ScenarioCount = len(report.Scenarios)
	report.DurationMS = time.Since(report.StartedAt).Milliseconds()

	span.SetAttributes(
		attribute.String("suite.id", report.ID),
		attribute.Int("suite.total", report.Summary.Total),
		attribute.Int("suite.fail", report.Summary.Fail),
		attribute.Float64("suite.deterministic_rate", report.Summary.DeterministicRate),
	)
	logger.Always("reliability suite finished",
		"id", report.ID,
		"total", report.Summary.Total,
		"pass", report.Summary.Pass,
		"fail", report.Summary.Fail,
		"deterministic_rate", report.Summary.DeterministicRate,
	)
	return report
}

type scenarioResult struct {
	ScenarioStats
	tally tally
}

func runScenario(ctx context.Context, sc Scenario, opts Options, report *Report) scenarioResult {
	ctx, span := telemetry.Tracer("harness").Start(ctx, "suite.scenario")
	defer span.End()

	var t tally
	for i := 0; i < opts.RunsPerScenario; i++ {
		run := runOnce(ctx, sc.ID, sc.Request, RunSeed(sc.ID, i), opts.IncludePatches)
		t.add(run)
		if run.Pass {
			continue
		}

		logger.Debugf("Scenario %s seed %s failed: %s", sc.ID, run.Seed, run.Reason)
		if len(report.Failures) >= opts.MaxFailureRecords {
			report.DroppedFailures++
			continue
		}
		report.Failures = append(report.Failures, failureRecord(run))
		report.ReplayCases = append(report.ReplayCases, ReplayCase{
			ScenarioID:     sc.ID,
			Seed:           run.Seed,
			Request:        run.Request,
			IncludePatches: opts.IncludePatches,
			Reason:         run.Reason,
		})
	}

	summary := t.summary(opts.IncludePatches)
	if summary.Fail > 0 {
		logger.Warningf("Scenario %s: %d/%d runs failed", sc.ID, summary.Fail, summary.Total)
	} else {
		logger.Infof("Scenario %s: %d/%d runs passed", sc.ID, summary.Pass, summary.Total)
	}

	span.SetAttributes(
		attribute.String("scenario.id", sc.ID),
		attribute.Bool("scenario.randomized", sc.IsRandomized),
		attribute.Int("scenario.fail", summary.Fail),
	)
	return scenarioResult{
		ScenarioStats: ScenarioStats{
			ScenarioID:   sc.ID,
			Name:         sc.Name,
			IsRandomized: sc.IsRandomized,
			Summary:      summary,
		},
		tally: t,
	}
}

// Replay re-runs one recorded failure exactly.
func Replay(ctx context.Context, rc ReplayCase) RunResult {
	return RunOnce(ctx, rc.ScenarioID, rc.Request, rc.Seed, rc.IncludePatches)
}

func failureRecord(run RunResult) FailureRecord {
	rec := FailureRecord{
		ScenarioID: run.ScenarioID,
		Seed:       run.Seed,
		Request:    run.Request,
		Errors:     []string{},
		HashA:      run.HashA,
		HashB:      run.HashB,
		HashMatch:  run.Deterministic,
		Reason:     run.Reason,
	}
	if run.Result != nil {
		rec.Errors = run.Result.Validation.Errors
		rec.Warnings = run.Result.Validation.Warnings
	}
	if run.Patch != nil {
		ps := &PatchSummary{
			Accepted:    len(run.Patch.Accepted),
			Rejected:    len(run.Patch.Rejected),
			FinalOK:     run.Patch.FinalValidation.OK,
			FinalErrors: run.Patch.FinalValidation.Errors,
			FinalHash:   run.Patch.FinalHash,
		}
		for _, r := range run.Patch.Rejected {
			ps.RejectReasons = append(ps.RejectReasons, fmt.Sprintf("%s %s: %s", r.Patch.Op, r.Patch.Key, r.Reason))
		}
		rec.Patch = ps
	}
	return rec
}

func capabilitiesOf(m *world.Map) Capabilities {
	var c Capabilities
	if m == nil {
		return c
	}
	m.Each(func(t *world.Tile) {
		switch t.Terrain {
		case world.TerrainDoor:
			c.Door = true
		case world.TerrainTrap:
			c.Trap = true
		case world.TerrainTreasure:
			c.Treasure = true
		}
	})
	return c
}

// tally accumulates raw counts for a scenario or the whole suite.
type tally struct {
	total, pass, deterministic, patchPass int
	caps                                  Capabilities
}

func (t *tally) add(run RunResult) {
	t.total++
	if run.Pass {
		t.pass++
	}
	if run.Deterministic {
		t.deterministic++
	}
	if run.Patch != nil && run.Patch.FinalValidation.OK {
		t.patchPass++
	}
	t.caps = t.caps.or(run.Capabilities)
}

func (t *tally) merge(o tally) {
	t.total += o.total
	t.pass += o.pass
	t.deterministic += o.deterministic
	t.patchPass += o.patchPass
	t.caps = t.caps.or(o.caps)
}

func (t tally) summary(includePatches bool) Summary {
	s := Summary{
		Total:        t.total,
		Pass:         t.pass,
		Fail:         t.total - t.pass,
		Capabilities: t.caps,
	}
	if t.total > 0 {
		s.DeterministicRate = float64(t.deterministic) / float64(t.total)
		if includePatches {
			rate := float64(t.patchPass) / float64(t.total)
			s.PatchPassRate = &rate
		}
	}
	return s
}
