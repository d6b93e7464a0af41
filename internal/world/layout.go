package world

import "github.com/samdwyer/questforge/internal/rng"

// hubAnchors are satellite centers as fractions of the map size.
var hubAnchors = [8][2]float64{
	{0.15, 0.18}, {0.50, 0.14}, {0.85, 0.18},
	{0.12, 0.50}, {0.88, 0.50},
	{0.15, 0.82}, {0.50, 0.86}, {0.85, 0.82},
}

const maxHubSatellites = len(hubAnchors)

// generateRooms lays out rooms according to the layout style.
func (g *Generator) generateRooms() {
	target := g.rng.IntRange(g.spec.MinRooms, g.spec.MaxRooms)

	switch g.spec.LayoutStyle {
	case LayoutLinear:
		g.placeLinearRooms(target)
	case LayoutHub:
		g.placeHubRooms(target)
	default:
		g.placeStandardRooms(target)
	}

	if len(g.rooms) == 0 {
		g.placeFallbackRoom()
	}
}

// placeStandardRooms rejection-samples rooms anywhere on the map. Attempts
// are capped so crowded maps still terminate.
func (g *Generator) placeStandardRooms(target int) {
	maxAttempts := target * placementAttemptsPer
	for attempt := 0; attempt < maxAttempts && len(g.rooms) < target; attempt++ {
		w := g.rng.IntRange(minRoomSize, maxRoomSize)
		h := g.rng.IntRange(minRoomSize, maxRoomSize)
		x := g.rng.IntRange(1, g.m.Width-w-1)
		y := g.rng.IntRange(1, g.m.Height-h-1)

		candidate := Room{X: x, Y: y, Width: w, Height: h}
		if g.overlapsAny(candidate) {
			continue
		}
		candidate.ID = g.nextRoomID()
		candidate.Type = RoomNormal
		g.rooms = append(g.rooms, candidate)
	}
}

// placeLinearRooms walks a single horizontal lane left to right. Widths and
// gaps shrink when the lane runs short so that as many rooms as fit at
// minimum size (up to target) are always placed.
func (g *Generator) placeLinearRooms(target int) {
	laneY := g.m.Height / 2
	right := g.m.Width - 1
	x := 1 + g.rng.IntRange(0, 2)
	guaranteed := min(target, linearCapacity(x, right))

	for len(g.rooms) < target {
		// rooms still owed after this one, each needing a minimum room and gap
		owed := max(guaranteed-len(g.rooms)-1, 0)
		maxW := min(maxRoomSize, right-x-owed*linearStep)
		if maxW < minRoomSize {
			break // Out of horizontal space
		}
		w := g.rng.IntRange(minRoomSize, maxW)
		h := g.rng.IntRange(minRoomSize, maxRoomSize)
		y := clamp(laneY-h/2+g.rng.IntRange(-2, 2), 1, g.m.Height-h-1)

		g.rooms = append(g.rooms, Room{
			ID:     g.nextRoomID(),
			X:      x,
			Y:      y,
			Width:  w,
			Height: h,
			Type:   RoomNormal,
		})

		maxGap := maxLinearGap
		if owed > 0 {
			maxGap = min(maxGap, right-(x+w)-owed*linearStep+minLinearGap)
		}
		x += w + g.rng.IntRange(minLinearGap, maxGap)
	}
}

// linearCapacity is how many minimum-size rooms fit on a lane from x to
// right inclusive.
func linearCapacity(x, right int) int {
	return max((right-x+minLinearGap)/linearStep, 0)
}

// placeHubRooms places one central hub then tries each anchor once, in
// random order, for a satellite.
func (g *Generator) placeHubRooms(target int) {
	hw := clamp(g.m.Width/3, 6, 12)
	hh := clamp(g.m.Height/3, 5, 10)
	g.rooms = append(g.rooms, Room{
		ID:     g.nextRoomID(),
		X:      (g.m.Width - hw) / 2,
		Y:      (g.m.Height - hh) / 2,
		Width:  hw,
		Height: hh,
		Type:   RoomNormal,
	})

	satellites := min(maxHubSatellites, target-1)
	order := make([]int, len(hubAnchors))
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(g.rng, order)

	placed := 0
	for _, idx := range order {
		if placed >= satellites {
			break
		}
		anchor := hubAnchors[idx]
		w := g.rng.IntRange(minRoomSize, maxRoomSize-1)
		h := g.rng.IntRange(minRoomSize, maxRoomSize-1)
		cx := int(anchor[0] * float64(g.m.Width))
		cy := int(anchor[1] * float64(g.m.Height))

		candidate := Room{
			X:      clamp(cx-w/2, 1, g.m.Width-w-1),
			Y:      clamp(cy-h/2, 1, g.m.Height-h-1),
			Width:  w,
			Height: h,
			Type:   RoomNormal,
		}
		if g.overlapsAny(candidate) {
			continue
		}
		candidate.ID = g.nextRoomID()
		g.rooms = append(g.rooms, candidate)
		placed++
	}
}

// placeFallbackRoom guarantees at least one room on degenerate specs.
func (g *Generator) placeFallbackRoom() {
	w := clamp(g.m.Width/3, minRoomSize, g.m.Width-2)
	h := clamp(g.m.Height/3, minRoomSize, g.m.Height-2)
	g.rooms = append(g.rooms, Room{
		ID:     g.nextRoomID(),
		X:      (g.m.Width - w) / 2,
		Y:      (g.m.Height - h) / 2,
		Width:  w,
		Height: h,
		Type:   RoomEntrance,
	})
}

// overlapsAny tests candidate against every placed room with the margin.
func (g *Generator) overlapsAny(candidate Room) bool {
	for _, r := range g.rooms {
		if candidate.IntersectsWithMargin(r, roomMargin) {
			return true
		}
	}
	return false
}

// carveRooms sets all tiles within each room to floor.
func (g *Generator) carveRooms() {
	for _, room := range g.rooms {
		g.carveRoom(room)
	}
}

// carveRoom stamps one room onto the grid.
func (g *Generator) carveRoom(room Room) {
	for y := room.Y; y < room.Y+room.Height; y++ {
		for x := room.X; x < room.X+room.Width; x++ {
			t := g.m.TileAt(x, y)
			if t == nil {
				continue
			}
			t.Terrain = TerrainFloor
			t.RoomID = room.ID
			t.RoomType = room.Type
		}
	}
}

// retagRoomTiles copies each room's final archetype onto its tiles.
func (g *Generator) retagRoomTiles() {
	types := make(map[string]RoomType, len(g.rooms))
	for _, r := range g.rooms {
		types[r.ID] = r.Type
	}
	g.m.Each(func(t *Tile) {
		if rt, ok := types[t.RoomID]; ok && t.RoomID != "" {
			t.RoomType = rt
		}
	})
}
