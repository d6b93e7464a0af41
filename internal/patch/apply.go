// Package patch applies validated incremental edits to generated maps.
package patch

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/questforge/internal/telemetry"
	"github.com/samdwyer/questforge/internal/world"
)

// Op names a patch operation.
type Op string

const (
	OpSetTileTerrain Op = "set_tile_terrain"
	OpSetEvent       Op = "set_event"
)

// ReasonMissingTile is the rejection reason for keys that resolve to no tile.
const ReasonMissingTile = "target tile does not exist"

// mutableTerrain is the only terrain a patch may write.
var mutableTerrain = map[world.Terrain]bool{
	world.TerrainFloor:    true,
	world.TerrainDoor:     true,
	world.TerrainTrap:     true,
	world.TerrainTreasure: true,
}

// Patch is one proposed edit. Reason is free text kept for audit.
type Patch struct {
	Op        Op               `json:"op"`
	Key       string           `json:"key"`
	Terrain   world.Terrain    `json:"terrain,omitempty"`
	EventType string           `json:"event_type,omitempty"`
	EventData *world.EventData `json:"event_data,omitempty"`
	Reason    string           `json:"reason"`
}

// Rejection pairs a refused patch with why it was refused.
type Rejection struct {
	Patch  Patch  `json:"patch"`
	Reason string `json:"reason"`
}

// ApplyResult is the outcome of ApplyWithValidation. Map is a patched
// clone; the caller's map is never modified.
type ApplyResult struct {
	Map             *world.Map       `json:"map"`
	Accepted        []Patch          `json:"accepted"`
	Rejected        []Rejection      `json:"rejected"`
	FinalValidation world.Validation `json:"final_validation"`
	FinalHash       string           `json:"final_hash"`
}

// ApplyWithValidation applies patches in order to a clone of m. Every
// mutation is followed by a full validation; a patch that breaks the map is
// rolled back on its own tile and rejected with the validator's errors.
// Later patches see the effect of earlier accepted ones.
func ApplyWithValidation(ctx context.Context, m *world.Map, spec world.GenerationSpec, spawn world.Point, patches []Patch) *ApplyResult {
	_, span := telemetry.Tracer("patch").Start(ctx, "patch.apply")
	defer span.End()

	result := &ApplyResult{
		Accepted: []Patch{},
		Rejected: []Rejection{},
	}
	if m == nil {
		result.FinalValidation = world.ValidateMap(nil, spec, spawn)
		result.FinalHash = world.HashMap(nil)
		return result
	}
	work := m.Clone()
	result.Map = work

	for _, p := range patches {
		tile := resolve(work, p.Key)
		if tile == nil {
			result.Rejected = append(result.Rejected, Rejection{Patch: p, Reason: ReasonMissingTile})
			continue
		}
		if reason := check(tile, p); reason != "" {
			result.Rejected = append(result.Rejected, Rejection{Patch: p, Reason: reason})
			continue
		}

		snapshot := *tile
		mutate(tile, p)

		v := world.ValidateMap(work, spec, spawn)
		if !v.OK {
			*tile = snapshot
			result.Rejected = append(result.Rejected, Rejection{
				Patch:  p,
				Reason: "validation failed: " + strings.Join(v.Errors, "; "),
			})
			continue
		}
		result.Accepted = append(result.Accepted, p)
	}

	result.FinalValidation = world.ValidateMap(work, spec, spawn)
	result.FinalHash = world.HashMap(work)

	span.SetAttributes(
		attribute.Int("patch.count", len(patches)),
		attribute.Int("patch.accepted", len(result.Accepted)),
		attribute.Int("patch.rejected", len(result.Rejected)),
		attribute.Bool("patch.final_valid", result.FinalValidation.OK),
	)
	return result
}

// resolve returns the tile addressed by key, or nil.
func resolve(m *world.Map, key string) *world.Tile {
	p, err := world.ParseKey(key, m.Width, m.Height)
	if err != nil {
		return nil
	}
	return m.TileAt(p.X, p.Y)
}

// check reports why p may not touch tile, or "" when it may.
func check(tile *world.Tile, p Patch) string {
	key := world.Key(tile.X, tile.Y)
	switch p.Op {
	case OpSetTileTerrain:
		if tile.Terrain.IsStairs() {
			return fmt.Sprintf("stairs tile %s is immutable", key)
		}
		if !mutableTerrain[p.Terrain] {
			return fmt.Sprintf("terrain %q is not patchable", p.Terrain)
		}
	case OpSetEvent:
		if tile.Terrain.IsStairs() {
			return fmt.Sprintf("stairs tile %s cannot host an event", key)
		}
		if strings.TrimSpace(p.EventType) == "" {
			return "set_event requires event_type"
		}
	default:
		return fmt.Sprintf("unsupported patch op %q", p.Op)
	}
	return ""
}

// mutate applies an already-checked patch.
func mutate(tile *world.Tile, p Patch) {
	switch p.Op {
	case OpSetTileTerrain:
		tile.Terrain = p.Terrain
	case OpSetEvent:
		data := world.EventData{Title: p.EventType, Source: "patch"}
		if p.EventData != nil {
			data = *p.EventData
			if data.Source == "" {
				data.Source = "patch"
			}
		}
		tile.HasEvent = true
		tile.EventType = strings.TrimSpace(p.EventType)
		tile.EventData = &data
		tile.IsEventHidden = tile.EventType == world.EventTrap
		tile.EventTriggered = false
	}
}
