package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samdwyer/questforge/internal/config"
	"github.com/samdwyer/questforge/internal/harness"
	"github.com/samdwyer/questforge/internal/logger"
	"github.com/samdwyer/questforge/internal/patch"
	"github.com/samdwyer/questforge/internal/quest"
	"github.com/samdwyer/questforge/internal/schema"
	"github.com/samdwyer/questforge/internal/server"
	"github.com/samdwyer/questforge/internal/store"
	"github.com/samdwyer/questforge/internal/viewer"
	"github.com/samdwyer/questforge/internal/world"
)

// requestFlags registers the quest request flags shared by generate,
// patch and view. The returned func resolves them after parsing; flags
// override fields loaded from -request.
func requestFlags(fs *flag.FlagSet) func() (quest.Request, error) {
	file := fs.String("request", "", "quest request file (JSON or YAML)")
	seed := fs.String("seed", "", "seed string (numeric strings are used as numbers)")
	questType := fs.String("quest", "", "quest type: exploration, boss_fight, rescue, investigation")
	depth := fs.Int("depth", 0, "floor depth")
	maxDepth := fs.Int("max-depth", 0, "deepest floor of the quest")
	width := fs.Int("width", 0, "map width")
	height := fs.Int("height", 0, "map height")
	title := fs.String("title", "", "map title")

	return func() (quest.Request, error) {
		var req quest.Request
		if *file != "" {
			data, err := os.ReadFile(*file)
			if err != nil {
				return req, fmt.Errorf("read request: %w", err)
			}
			// YAML is a superset of JSON, so one decoder reads both
			if err := yaml.Unmarshal(data, &req); err != nil {
				return req, fmt.Errorf("parse request %s: %w", *file, err)
			}
		}
		setIf(&req.Seed, *seed)
		setIf(&req.QuestType, *questType)
		setIf(&req.Title, *title)
		setIntIf(&req.Depth, *depth)
		setIntIf(&req.MaxDepth, *maxDepth)
		setIntIf(&req.Width, *width)
		setIntIf(&req.Height, *height)
		return req, nil
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setIntIf(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func runGenerate(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	request := requestFlags(fs)
	format := fs.String("format", "json", "output format: json, yaml or text")
	out := fs.String("out", "", "write output to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := request()
	if err != nil {
		return err
	}
	res := world.NewGenerator().Generate(ctx, quest.BuildMapSpec(req))
	logger.Debug("Generated map", "seed", res.SeedInput, "hash", res.Hash, "valid", res.Validation.OK)

	err = withOutput(*out, func(w io.Writer) error {
		switch *format {
		case "json":
			return writeJSON(w, res)
		case "yaml":
			doc, err := summarize(res)
			if err != nil {
				return err
			}
			return writeYAML(w, doc)
		case "text":
			return writeText(w, res)
		default:
			return fmt.Errorf("unknown format %q", *format)
		}
	})
	if err != nil {
		return err
	}
	if !res.Validation.OK {
		fmt.Fprintf(os.Stderr, "map failed validation: %s\n", strings.Join(res.Validation.Errors, "; "))
		return errFailed
	}
	return nil
}

func runPatch(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("patch", flag.ContinueOnError)
	request := requestFlags(fs)
	patchFile := fs.String("patches", "", "JSON array of patches (default: simulated patches)")
	out := fs.String("out", "", "write output to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := request()
	if err != nil {
		return err
	}
	res := world.NewGenerator().Generate(ctx, quest.BuildMapSpec(req))

	patches := patch.CreateSimulatedPatches(res)
	if *patchFile != "" {
		data, err := os.ReadFile(*patchFile)
		if err != nil {
			return fmt.Errorf("read patches: %w", err)
		}
		patches = nil
		if err := json.Unmarshal(data, &patches); err != nil {
			return fmt.Errorf("parse patches %s: %w", *patchFile, err)
		}
	}

	result := patch.ApplyWithValidation(ctx, res.Map, res.Spec, res.Spawn, patches)
	for _, r := range result.Rejected {
		logger.Info("Patch rejected", "op", r.Patch.Op, "key", r.Patch.Key, "reason", r.Reason)
	}
	if err := withOutput(*out, func(w io.Writer) error { return writeJSON(w, result) }); err != nil {
		return err
	}
	if !result.FinalValidation.OK {
		return errFailed
	}
	return nil
}

func runSuite(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("suite", flag.ContinueOnError)
	runs := fs.Int("runs", cfg.Suite.RunsPerScenario, "runs per scenario")
	random := fs.Int("random", cfg.Suite.RandomScenarioCount, "randomized scenarios to add")
	randomSeed := fs.String("random-seed", cfg.Suite.RandomScenarioSeed, "seed for randomized scenarios")
	patches := fs.Bool("patches", cfg.Suite.IncludePatches, "apply simulated patches to every run")
	maxFailures := fs.Int("max-failures", cfg.Suite.MaxFailureRecords, "failure records to keep")
	scenarios := fs.String("scenarios", "", "comma-separated scenario ids (default: all)")
	out := fs.String("out", "", "write the report to a .json or .yaml file")
	archive := fs.Bool("archive", false, "store the report in the suite archive")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := cfg.SuiteOptions()
	opts.RunsPerScenario = *runs
	opts.RandomScenarioCount = *random
	opts.RandomScenarioSeed = *randomSeed
	opts.IncludePatches = *patches
	opts.MaxFailureRecords = *maxFailures
	if *scenarios != "" {
		for _, id := range strings.Split(*scenarios, ",") {
			sc, ok := harness.FindScenario(strings.TrimSpace(id))
			if !ok {
				return fmt.Errorf("unknown scenario %q", id)
			}
			opts.Scenarios = append(opts.Scenarios, sc)
		}
	}

	report := harness.RunSuite(ctx, opts)

	if *out != "" {
		if err := report.SaveFile(*out); err != nil {
			return err
		}
	} else if err := report.WriteJSON(os.Stdout); err != nil {
		return err
	}

	if *archive {
		s, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.SaveReport(ctx, report); err != nil {
			return fmt.Errorf("archive report: %w", err)
		}
	}

	if !report.OK() {
		fmt.Fprintf(os.Stderr, "%d of %d runs failed\n", report.Summary.Fail, report.Summary.Total)
		return errFailed
	}
	return nil
}

func runReplay(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	reportFile := fs.String("report", "", "suite report file to read replay cases from")
	runID := fs.String("run", "", "archived suite run id to read replay cases from")
	index := fs.Int("case", -1, "replay only this case index")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var cases []harness.ReplayCase
	var err error
	switch {
	case *reportFile != "":
		cases, err = harness.LoadReplayCases(*reportFile)
	case *runID != "":
		var s *store.Store
		s, err = store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer s.Close()
		cases, err = s.ReplayCases(ctx, *runID)
	default:
		return fmt.Errorf("one of -report or -run is required")
	}
	if err != nil {
		return err
	}

	if *index >= 0 {
		if *index >= len(cases) {
			return fmt.Errorf("case %d out of range (%d cases)", *index, len(cases))
		}
		cases = cases[*index : *index+1]
	}

	failed := 0
	for _, rc := range cases {
		run := harness.Replay(ctx, rc)
		status := "PASS"
		if !run.Pass {
			status = "FAIL"
			failed++
		}
		fmt.Printf("%s %s %s hash=%s", status, rc.ScenarioID, rc.Seed, run.HashA)
		if run.Reason != "" {
			fmt.Printf(" reason=%q", run.Reason)
		}
		fmt.Println()
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d replayed cases still fail\n", failed, len(cases))
		return errFailed
	}
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Server.Addr, "listen address")
	archive := fs.Bool("archive", true, "store suite reports in the suite archive")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := server.Options{
		MaxSuiteRuns:  cfg.Server.MaxSuiteRuns,
		SuiteDefaults: cfg.SuiteOptions(),
	}
	if *archive {
		s, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer s.Close()
		opts.Archive = s
	}

	return server.Serve(ctx, *addr, server.NewRouter(opts))
}

func runView(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	request := requestFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := request()
	if err != nil {
		return err
	}
	v, err := viewer.New(req)
	if err != nil {
		return fmt.Errorf("failed to initialize viewer: %w", err)
	}
	return v.Run(ctx)
}

func runSchema(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	name := fs.String("name", "", "schema to print: "+strings.Join(schema.Names(), ", "))
	dir := fs.String("out", "", "write every schema into this directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *dir != "":
		return schema.WriteDir(*dir)
	case *name != "":
		return schema.Write(os.Stdout, *name)
	default:
		for _, n := range schema.Names() {
			fmt.Println(n)
		}
		return nil
	}
}
