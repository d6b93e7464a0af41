package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/questforge/internal/harness"
	"github.com/samdwyer/questforge/internal/quest"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "archive", "suite.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testReport(id string, startedAt time.Time, fail int) *harness.Report {
	mandatory := false
	rate := 0.75
	r := &harness.Report{
		ID:         id,
		StartedAt:  startedAt,
		DurationMS: 42,
		Version:    "test",
		Summary: harness.Summary{
			ScenarioCount:     1,
			Total:             4,
			Pass:              4 - fail,
			Fail:              fail,
			DeterministicRate: 1,
			PatchPassRate:     &rate,
		},
		Scenarios:   []harness.ScenarioStats{},
		Failures:    []harness.FailureRecord{},
		ReplayCases: []harness.ReplayCase{},
	}
	for i := 0; i < fail; i++ {
		r.ReplayCases = append(r.ReplayCases, harness.ReplayCase{
			ScenarioID: "rescue-standard",
			Seed:       harness.RunSeed("rescue-standard", i),
			Request: quest.Request{
				Seed:      harness.RunSeed("rescue-standard", i),
				QuestType: "rescue",
				Depth:     4,
				SpecialEvents: []quest.SpecialEvent{
					{EventType: "lore", Name: "Old map", IsMandatory: &mandatory},
				},
			},
			IncludePatches: true,
			Reason:         "validation failed: no rooms generated",
		})
	}
	return r
}

func TestSaveAndLoadReplayCases(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	r := testReport("run-a", time.Now().UTC(), 2)
	require.NoError(t, s.SaveReport(ctx, r))

	cases, err := s.ReplayCases(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, r.ReplayCases, cases)
}

func TestSaveReportIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	r := testReport("run-a", time.Now().UTC(), 1)
	require.NoError(t, s.SaveReport(ctx, r))
	require.NoError(t, s.SaveReport(ctx, r))

	cases, err := s.ReplayCases(ctx, "run-a")
	require.NoError(t, err)
	assert.Len(t, cases, 1)

	runs, err := s.LatestRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestLatestRunsNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveReport(ctx, testReport("old", base, 0)))
	require.NoError(t, s.SaveReport(ctx, testReport("new", base.Add(time.Hour), 1)))
	require.NoError(t, s.SaveReport(ctx, testReport("mid", base.Add(time.Minute), 0)))

	runs, err := s.LatestRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "mid", runs[1].ID)

	assert.Equal(t, 1, runs[0].Fail)
	assert.Equal(t, 3, runs[0].Pass)
	require.NotNil(t, runs[0].PatchPassRate)
	assert.InDelta(t, 0.75, *runs[0].PatchPassRate, 1e-9)
}

func TestPatchPassRateNullable(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	r := testReport("no-patches", time.Now().UTC(), 0)
	r.Summary.PatchPassRate = nil
	require.NoError(t, s.SaveReport(ctx, r))

	runs, err := s.LatestRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].PatchPassRate)
}

func TestReportRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	r := testReport("full", time.Now().UTC(), 1)
	require.NoError(t, s.SaveReport(ctx, r))

	got, err := s.Report(ctx, "full")
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, r.Summary, got.Summary)
	assert.Equal(t, r.ReplayCases, got.ReplayCases)
}

func TestUnknownRun(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.ReplayCases(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.Report(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunWithoutFailuresHasNoCases(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveReport(ctx, testReport("clean", time.Now().UTC(), 0)))

	cases, err := s.ReplayCases(ctx, "clean")
	require.NoError(t, err)
	assert.Empty(t, cases)
}

func TestInMemoryStoreSharesOneDatabase(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	assert.Equal(t, 1, s.db.Stats().MaxOpenConnections)

	ctx := context.Background()
	require.NoError(t, s.SaveReport(ctx, testReport("mem-run", time.Now().UTC(), 1)))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cases, err := s.ReplayCases(ctx, "mem-run")
			if err == nil && len(cases) != 1 {
				err = fmt.Errorf("got %d replay cases", len(cases))
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
