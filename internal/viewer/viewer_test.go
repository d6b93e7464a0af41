package viewer

import (
	"context"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/questforge/internal/quest"
	"github.com/samdwyer/questforge/internal/ui"
	"github.com/samdwyer/questforge/internal/world"
)

func newTestViewer(t *testing.T) *Viewer {
	t.Helper()
	screen, err := ui.Wrap(tcell.NewSimulationScreen("UTF-8"))
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	t.Cleanup(screen.Close)

	v := NewWithScreen(screen, quest.Request{Seed: "viewer", QuestType: "rescue", Depth: 2, Width: 40, Height: 24})
	v.generate(context.Background())
	return v
}

func TestViewerGeneratesFromRequest(t *testing.T) {
	v := newTestViewer(t)

	if v.result == nil || !v.result.Validation.OK {
		t.Fatalf("expected a valid map, got %+v", v.result)
	}
	if v.result.SeedInput != "viewer" {
		t.Errorf("seed = %q, want viewer", v.result.SeedInput)
	}
	if v.marker != v.result.Spawn {
		t.Errorf("marker %v should start at spawn %v", v.marker, v.result.Spawn)
	}
	v.render()
}

func TestViewerReseed(t *testing.T) {
	v := newTestViewer(t)
	first := v.result.Hash

	v.handleKey(context.Background(), tcell.KeyRune, 'n')
	if v.result.SeedInput != "viewer-1" {
		t.Errorf("seed after reseed = %q, want viewer-1", v.result.SeedInput)
	}
	if v.result.Hash == first {
		t.Error("reseed should produce a different map")
	}

	v.handleKey(context.Background(), tcell.KeyRune, 'n')
	if v.result.SeedInput != "viewer-2" {
		t.Errorf("seed after second reseed = %q, want viewer-2", v.result.SeedInput)
	}
}

func TestViewerApplyPatches(t *testing.T) {
	v := newTestViewer(t)
	original := v.result.Map

	v.handleKey(context.Background(), tcell.KeyRune, 'p')
	if v.patched == nil {
		t.Fatal("expected patches to be applied")
	}
	if v.current != v.patched.Map {
		t.Error("viewer should show the patched map")
	}
	if v.current == original {
		t.Error("patched map must be a copy")
	}
	if !v.patched.FinalValidation.OK {
		t.Errorf("patched map invalid: %v", v.patched.FinalValidation.Errors)
	}

	applied := v.patched
	v.handleKey(context.Background(), tcell.KeyRune, 'p')
	if v.patched != applied {
		t.Error("patches should apply once per seed")
	}

	v.handleKey(context.Background(), tcell.KeyRune, 'n')
	if v.patched != nil || v.current != v.result.Map {
		t.Error("reseed should clear applied patches")
	}
}

func TestViewerMarkerStaysOnWalkableTiles(t *testing.T) {
	v := newTestViewer(t)
	keys := []tcell.Key{tcell.KeyUp, tcell.KeyLeft, tcell.KeyDown, tcell.KeyRight}

	for i := 0; i < 200; i++ {
		v.handleKey(context.Background(), keys[i%len(keys)], 0)
		if !v.current.IsWalkable(v.marker.X, v.marker.Y) {
			t.Fatalf("marker moved onto %v which is not walkable", v.marker)
		}
	}
}

func TestViewerMoveBlockedByWall(t *testing.T) {
	v := newTestViewer(t)
	v.current = world.NewMap(20, 16)
	v.current.TileAt(5, 5).Terrain = world.TerrainFloor
	v.current.TileAt(6, 5).Terrain = world.TerrainFloor
	v.marker = world.Point{X: 5, Y: 5}

	v.handleKey(context.Background(), tcell.KeyUp, 0)
	if v.marker != (world.Point{X: 5, Y: 5}) {
		t.Errorf("moved into wall: %v", v.marker)
	}
	v.handleKey(context.Background(), tcell.KeyRight, 0)
	if v.marker != (world.Point{X: 6, Y: 5}) {
		t.Errorf("marker = %v, want 6,5", v.marker)
	}
}

func TestViewerQuit(t *testing.T) {
	for _, tc := range []struct {
		name string
		key  tcell.Key
		ch   rune
	}{
		{"q", tcell.KeyRune, 'q'},
		{"escape", tcell.KeyEscape, 0},
		{"ctrl-c", tcell.KeyCtrlC, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v := newTestViewer(t)
			v.handleKey(context.Background(), tc.key, tc.ch)
			if v.running {
				t.Error("viewer should stop")
			}
		})
	}
}
