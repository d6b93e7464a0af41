package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/samdwyer/questforge/internal/harness"
	"github.com/samdwyer/questforge/internal/logger"
	"github.com/samdwyer/questforge/internal/patch"
	"github.com/samdwyer/questforge/internal/quest"
	"github.com/samdwyer/questforge/internal/store"
	"github.com/samdwyer/questforge/internal/world"
)

type handler struct {
	opts Options
}

// GenerateRequest carries either a quest request or a raw generation spec.
// When both are set the quest request wins.
type GenerateRequest struct {
	Request *quest.Request        `json:"request,omitempty"`
	Spec    *world.GenerationSpec `json:"spec,omitempty"`
}

// PatchRequest carries a map plus the patches to apply. Spec and Spawn
// drive validation of each patch. With Simulate set and no map, the map
// is generated from Request and the simulated patch batch is applied.
type PatchRequest struct {
	Map      *world.Map           `json:"map,omitempty"`
	Spec     world.GenerationSpec `json:"spec"`
	Spawn    world.Point          `json:"spawn"`
	Patches  []patch.Patch        `json:"patches"`
	Simulate bool                 `json:"simulate,omitempty"`
	Request  *quest.Request       `json:"request,omitempty"`
}

// SuiteRequest selects scenarios for POST /api/suite. Zero values take the
// server's suite defaults. IncludePatches is a pointer so false can be
// requested explicitly.
type SuiteRequest struct {
	ScenarioIDs         []string `json:"scenario_ids,omitempty"`
	RunsPerScenario     int      `json:"runs_per_scenario,omitempty"`
	RandomScenarioCount *int     `json:"random_scenario_count,omitempty"`
	RandomScenarioSeed  string   `json:"random_scenario_seed,omitempty"`
	IncludePatches      *bool    `json:"include_patches,omitempty"`
}

// Generate handles POST /api/generate
func (h *handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var spec world.GenerationSpec
	switch {
	case req.Request != nil:
		spec = quest.BuildMapSpec(*req.Request)
	case req.Spec != nil:
		spec = *req.Spec
	default:
		respondError(w, http.StatusBadRequest, "request or spec is required")
		return
	}

	res := world.NewGenerator().Generate(r.Context(), spec)
	respondJSON(w, http.StatusOK, res)
}

// Patch handles POST /api/patch
func (h *handler) Patch(w http.ResponseWriter, r *http.Request) {
	var req PatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.Map == nil {
		if !req.Simulate || req.Request == nil {
			respondError(w, http.StatusBadRequest, "map is required")
			return
		}
		res := world.NewGenerator().Generate(r.Context(), quest.BuildMapSpec(*req.Request))
		req.Map = res.Map
		req.Spec = res.Spec
		req.Spawn = res.Spawn
		req.Patches = append(patch.CreateSimulatedPatches(res), req.Patches...)
	}

	result := patch.ApplyWithValidation(r.Context(), req.Map, world.NormalizeSpec(req.Spec), req.Spawn, req.Patches)
	respondJSON(w, http.StatusOK, result)
}

// Scenarios handles GET /api/scenarios
func (h *handler) Scenarios(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, harness.ScenarioLibrary())
}

// RunSuite handles POST /api/suite
func (h *handler) RunSuite(w http.ResponseWriter, r *http.Request) {
	var req SuiteRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	opts, err := h.suiteOptions(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report := harness.RunSuite(r.Context(), opts)
	if h.opts.Archive != nil {
		if err := h.opts.Archive.SaveReport(r.Context(), report); err != nil {
			logger.Error("Failed to archive suite report", "id", report.ID, "error", err)
		}
	}
	respondJSON(w, http.StatusOK, report)
}

// suiteOptions resolves a request against the defaults and enforces the
// run limit.
func (h *handler) suiteOptions(req SuiteRequest) (harness.Options, error) {
	opts := h.opts.SuiteDefaults
	opts.Scenarios = nil

	if len(req.ScenarioIDs) > 0 {
		for _, id := range req.ScenarioIDs {
			sc, ok := harness.FindScenario(id)
			if !ok {
				return opts, fmt.Errorf("unknown scenario %q", id)
			}
			opts.Scenarios = append(opts.Scenarios, sc)
		}
	}
	if req.RunsPerScenario > 0 {
		opts.RunsPerScenario = req.RunsPerScenario
	}
	if req.RandomScenarioCount != nil {
		opts.RandomScenarioCount = *req.RandomScenarioCount
	}
	if req.RandomScenarioSeed != "" {
		opts.RandomScenarioSeed = req.RandomScenarioSeed
	}
	if req.IncludePatches != nil {
		opts.IncludePatches = *req.IncludePatches
	}

	runs := opts.RunsPerScenario
	if runs <= 0 {
		runs = harness.DefaultRunsPerScenario
	}
	scenarios := len(opts.Scenarios)
	if opts.Scenarios == nil {
		scenarios = len(harness.ScenarioLibrary())
	}
	if opts.RandomScenarioCount > 0 {
		scenarios += opts.RandomScenarioCount
	}
	if total := scenarios * runs; total > h.opts.MaxSuiteRuns {
		return opts, fmt.Errorf("suite of %d runs exceeds limit of %d", total, h.opts.MaxSuiteRuns)
	}
	return opts, nil
}

// SuiteRuns handles GET /api/suite/runs
func (h *handler) SuiteRuns(w http.ResponseWriter, r *http.Request) {
	if h.opts.Archive == nil {
		respondError(w, http.StatusNotFound, "suite archive is not configured")
		return
	}

	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	runs, err := h.opts.Archive.LatestRuns(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []store.RunRecord{}
	}
	respondJSON(w, http.StatusOK, runs)
}

// ReplayCases handles GET /api/suite/runs/{id}/replay
func (h *handler) ReplayCases(w http.ResponseWriter, r *http.Request) {
	if h.opts.Archive == nil {
		respondError(w, http.StatusNotFound, "suite archive is not configured")
		return
	}

	cases, err := h.opts.Archive.ReplayCases(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrRunNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, cases)
}
