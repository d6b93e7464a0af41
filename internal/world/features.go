package world

import (
	"slices"
	"sort"

	"github.com/samdwyer/questforge/internal/rng"
)

// placeStairs puts stairs up in the entrance and stairs down in the boss
// room (or the room farthest from the entrance when there is none).
func (g *Generator) placeStairs() {
	if g.spec.RequireStairsUp {
		p := g.entrance().CenterPoint()
		if t := g.m.TileAt(p.X, p.Y); t != nil {
			t.Terrain = TerrainStairsUp
			g.stairsUp = &p
		}
	}

	if !g.spec.RequireStairsDown {
		return
	}
	idx := g.firstRoomOfType(RoomBoss)
	if idx < 0 {
		idx = g.farthestRoomFrom(0)
	}
	p := g.rooms[idx].CenterPoint()
	if t := g.m.TileAt(p.X, p.Y); t == nil || t.Terrain != TerrainFloor {
		nudged, ok := g.nearestFreeFloor(p, nudgeRadius)
		if !ok {
			nudged, ok = g.anyFreeFloor()
		}
		if !ok {
			return
		}
		p = nudged
	}
	g.m.TileAt(p.X, p.Y).Terrain = TerrainStairsDown
	g.stairsDown = &p
}

// nearestFreeFloor finds the closest plain floor tile without an event
// within radius of origin, excluding origin itself. Ties break by row then
// column.
func (g *Generator) nearestFreeFloor(origin Point, radius int) (Point, bool) {
	var candidates []Point
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			t := g.m.TileAt(origin.X+dx, origin.Y+dy)
			if t != nil && t.Terrain == TerrainFloor && !t.HasEvent {
				candidates = append(candidates, t.Point())
			}
		}
	}
	if len(candidates) == 0 {
		return Point{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := distSq(origin, candidates[i]), distSq(origin, candidates[j])
		if di != dj {
			return di < dj
		}
		if candidates[i].Y != candidates[j].Y {
			return candidates[i].Y < candidates[j].Y
		}
		return candidates[i].X < candidates[j].X
	})
	return candidates[0], true
}

// anyFreeFloor returns the first plain floor tile in row-major order.
func (g *Generator) anyFreeFloor() (Point, bool) {
	for y := range g.m.Tiles {
		for x := range g.m.Tiles[y] {
			if t := &g.m.Tiles[y][x]; t.Terrain == TerrainFloor && !t.HasEvent {
				return t.Point(), true
			}
		}
	}
	return Point{}, false
}

// placeSpecialFeatures places treasure, traps and doors.
func (g *Generator) placeSpecialFeatures() {
	treasureCount := g.spec.RequiredRooms.Treasure + 1
	for i := 0; i < treasureCount; i++ {
		p, ok := g.pickFloorTile([]RoomType{RoomTreasure})
		if !ok {
			break
		}
		g.m.TileAt(p.X, p.Y).Terrain = TerrainTreasure
	}

	trapCount := 1 + g.spec.Depth/2
	if g.spec.QuestType == QuestBossFight {
		trapCount++
	}
	for i := 0; i < trapCount; i++ {
		p, ok := g.pickFloorTile([]RoomType{RoomCorridor, RoomNormal})
		if !ok {
			break
		}
		g.m.TileAt(p.X, p.Y).Terrain = TerrainTrap
	}

	g.placeDoors()
}

// pickFloorTile draws a plain floor tile, preferring the given archetypes
// and falling back to any floor tile. Stairs are never floor, so they are
// excluded implicitly.
func (g *Generator) pickFloorTile(prefs []RoomType) (Point, bool) {
	var preferred, fallback []Point
	g.m.Each(func(t *Tile) {
		if t.Terrain != TerrainFloor || t.HasEvent {
			return
		}
		fallback = append(fallback, t.Point())
		if slices.Contains(prefs, t.RoomType) {
			preferred = append(preferred, t.Point())
		}
	})
	if p, ok := rng.Pick(g.rng, preferred); ok {
		return p, true
	}
	return rng.Pick(g.rng, fallback)
}

// placeDoors turns room/corridor thresholds into doors. Candidates are
// visited in shuffled order so the cap does not favor the top of the map.
func (g *Generator) placeDoors() {
	limit := clamp(len(g.rooms)*8/10, 1, maxDoorsCap)

	var candidates []*Tile
	g.m.Each(func(t *Tile) {
		if g.isDoorway(t) {
			candidates = append(candidates, t)
		}
	})
	rng.Shuffle(g.rng, candidates)

	placed := 0
	for _, t := range candidates {
		if placed >= limit {
			return
		}
		if g.rng.Bool(doorChance) {
			t.Terrain = TerrainDoor
			placed++
		}
	}
}

// isDoorway reports whether a floor tile sits where a corridor meets a room
// and is flanked by at least one wall.
func (g *Generator) isDoorway(t *Tile) bool {
	if t.Terrain != TerrainFloor {
		return false
	}
	touchesCorridor := t.RoomType == RoomCorridor
	touchesRoom := t.RoomID != "" && t.RoomType != RoomCorridor
	touchesWall := false
	for _, n := range g.m.neighbors4(t.X, t.Y) {
		switch {
		case n.Terrain == TerrainWall:
			touchesWall = true
		case !n.IsWalkable():
		case n.RoomType == RoomCorridor:
			touchesCorridor = true
		case n.RoomID != "":
			touchesRoom = true
		}
	}
	return touchesCorridor && touchesRoom && touchesWall
}

// pickSpawn chooses the player start: beside stairs up when present,
// otherwise the entrance center.
func (g *Generator) pickSpawn() {
	if g.stairsUp != nil {
		if p, ok := g.nearestFreeFloor(*g.stairsUp, nudgeRadius); ok {
			g.spawn = p
			return
		}
		g.spawn = *g.stairsUp
		return
	}
	g.spawn = g.entrance().CenterPoint()
}

func distSq(a, b Point) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}
