package patch

import (
	"slices"
	"strconv"

	"github.com/samdwyer/questforge/internal/rng"
	"github.com/samdwyer/questforge/internal/world"
)

// CreateSimulatedPatches proposes the kind of small edits a content author
// would suggest: extra loot, a lore event, a corridor trap, and one edit on
// the down stairs that must always be refused. The proposals are seeded from
// the result's seed so they replay exactly.
func CreateSimulatedPatches(res *world.GenerationResult) []Patch {
	if res == nil || res.Map == nil {
		return nil
	}
	seed := res.SeedInput
	if seed == "" {
		seed = strconv.FormatUint(uint64(res.Seed), 10)
	}
	r := rng.FromString(seed + "-patches")

	var patches []Patch

	if p, ok := pickTile(r, res, []world.RoomType{world.RoomTreasure, world.RoomNormal}, plainFloor); ok {
		patches = append(patches, Patch{
			Op:      OpSetTileTerrain,
			Key:     p.Key(),
			Terrain: world.TerrainTreasure,
			Reason:  "Scatter an extra cache of loot",
		})
	}

	if p, ok := pickTile(r, res, []world.RoomType{world.RoomSpecial, world.RoomNormal}, eventFree); ok {
		patches = append(patches, Patch{
			Op:        OpSetEvent,
			Key:       p.Key(),
			EventType: "lore",
			EventData: &world.EventData{
				Title:       "Weathered inscription",
				Description: "Runes hint at what waits deeper below.",
			},
			Reason: "Add optional lore for flavour",
		})
	}

	if p, ok := pickTile(r, res, []world.RoomType{world.RoomCorridor}, plainFloor); ok {
		patches = append(patches, Patch{
			Op:      OpSetTileTerrain,
			Key:     p.Key(),
			Terrain: world.TerrainTrap,
			Reason:  "Tighten a corridor with a trap",
		})
	}

	if res.Stairs.Down != nil {
		patches = append(patches, Patch{
			Op:      OpSetTileTerrain,
			Key:     res.Stairs.Down.Key(),
			Terrain: world.TerrainFloor,
			Reason:  "Move the exit somewhere less obvious",
		})
	}

	return patches
}

func plainFloor(t *world.Tile) bool {
	return t.Terrain == world.TerrainFloor && !t.HasEvent
}

func eventFree(t *world.Tile) bool {
	return t.IsWalkable() && !t.Terrain.IsStairs() && !t.HasEvent
}

// pickTile draws a tile satisfying ok, preferring the given room types.
// The spawn tile is never chosen.
func pickTile(r *rng.RNG, res *world.GenerationResult, prefs []world.RoomType, ok func(*world.Tile) bool) (world.Point, bool) {
	var preferred, fallback []world.Point
	res.Map.Each(func(t *world.Tile) {
		if !ok(t) || t.Point() == res.Spawn {
			return
		}
		fallback = append(fallback, t.Point())
		if slices.Contains(prefs, t.RoomType) {
			preferred = append(preferred, t.Point())
		}
	})
	if p, found := rng.Pick(r, preferred); found {
		return p, true
	}
	return rng.Pick(r, fallback)
}
