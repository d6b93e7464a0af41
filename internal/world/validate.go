package world

import (
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"
)

const (
	minWalkableTiles = 20
	minWalkableShare = 0.15
)

// ValidateMap checks the structural invariants of a map. It never panics
// and never returns an error; problems are reported in the result.
func ValidateMap(m *Map, spec GenerationSpec, spawn Point) Validation {
	v := Validation{Errors: []string{}, Warnings: []string{}}
	if m == nil || m.TileCount() == 0 {
		v.Errors = append(v.Errors, "map has no tiles")
		return v
	}

	var (
		walkable   int
		stairsUp   []Point
		stairsDown []Point
		mandatory  []*Tile
	)
	roomsByType := make(map[RoomType]mapset.Set[string])
	m.Each(func(t *Tile) {
		if t.IsWalkable() {
			walkable++
		}
		switch t.Terrain {
		case TerrainStairsUp:
			stairsUp = append(stairsUp, t.Point())
		case TerrainStairsDown:
			stairsDown = append(stairsDown, t.Point())
		}
		if t.IsMandatoryEvent() {
			mandatory = append(mandatory, t)
		}
		if t.RoomID != "" && t.RoomType != RoomCorridor {
			set, ok := roomsByType[t.RoomType]
			if !ok {
				set = mapset.New[string]()
				roomsByType[t.RoomType] = set
			}
			set.Put(t.RoomID)
		}
	})
	v.FloorCount = walkable

	if walkable == 0 {
		v.Errors = append(v.Errors, "map has no walkable tiles")
	}
	if spec.RequireStairsUp && len(stairsUp) == 0 {
		v.Errors = append(v.Errors, "required stairs_up missing")
	}
	if spec.RequireStairsDown && len(stairsDown) == 0 {
		v.Errors = append(v.Errors, "required stairs_down missing")
	}
	if spec.RequiredRooms.Boss > 0 && roomCount(roomsByType, RoomBoss) == 0 {
		v.Errors = append(v.Errors, "required boss room missing")
	}
	if n := roomCount(roomsByType, RoomEntrance); n != 1 {
		v.Errors = append(v.Errors, fmt.Sprintf("expected exactly one entrance room, found %d", n))
	}

	var targets []reachTarget
	if spec.RequireStairsDown {
		for _, p := range stairsDown {
			targets = append(targets, reachTarget{point: p, label: "stairs_down"})
		}
	}
	for _, t := range mandatory {
		targets = append(targets, reachTarget{point: t.Point(), label: "mandatory event " + t.EventType})
	}
	v.RequiredTargetCount = len(targets)

	spawnTile := m.TileAt(spawn.X, spawn.Y)
	switch {
	case spawnTile == nil:
		v.Errors = append(v.Errors, fmt.Sprintf("spawn tile %s does not exist", spawn.Key()))
	case !spawnTile.IsWalkable():
		v.Errors = append(v.Errors, fmt.Sprintf("spawn tile %s is not walkable (%s)", spawn.Key(), spawnTile.Terrain))
	default:
		reachable := FloodFill(m, spawn)
		sort.SliceStable(targets, func(i, j int) bool {
			return targets[i].point.Key() < targets[j].point.Key()
		})
		for _, target := range targets {
			if !reachable.Has(target.point) {
				v.Errors = append(v.Errors, fmt.Sprintf("required target %s (%s) is unreachable from spawn %s",
					target.point.Key(), target.label, spawn.Key()))
			}
		}
	}

	total := m.TileCount()
	threshold := max(float64(minWalkableTiles), minWalkableShare*float64(total))
	if float64(walkable) < threshold {
		v.Warnings = append(v.Warnings, fmt.Sprintf("walkable area %d below recommended minimum %.0f", walkable, threshold))
	}

	v.OK = len(v.Errors) == 0
	return v
}

type reachTarget struct {
	point Point
	label string
}

func roomCount(byType map[RoomType]mapset.Set[string], rt RoomType) int {
	set, ok := byType[rt]
	if !ok {
		return 0
	}
	return set.Size()
}

// FloodFill returns every tile reachable from start through 4-connected
// walkable tiles. An unwalkable start yields an empty set.
func FloodFill(m *Map, start Point) mapset.Set[Point] {
	visited := mapset.New[Point]()
	if !m.IsWalkable(start.X, start.Y) {
		return visited
	}

	queue := []Point{start}
	visited.Put(start)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, n := range m.neighbors4(current.X, current.Y) {
			p := n.Point()
			if n.IsWalkable() && !visited.Has(p) {
				visited.Put(p)
				queue = append(queue, p)
			}
		}
	}
	return visited
}
