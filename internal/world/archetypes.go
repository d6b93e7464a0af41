package world

import "github.com/samdwyer/questforge/internal/rng"

// assignRoomTypes gives every room its initial archetype. Room 0 is the
// entrance; the boss room is the farthest room (or the last one on linear
// layouts); treasure and special quotas are drawn at random from the rest.
func (g *Generator) assignRoomTypes() {
	for i := range g.rooms {
		g.rooms[i].Type = RoomNormal
	}
	g.rooms[0].Type = RoomEntrance
	if len(g.rooms) == 1 {
		return
	}

	bossIdx := -1
	if g.spec.RequiredRooms.Boss > 0 {
		if g.spec.LayoutStyle == LayoutLinear {
			bossIdx = len(g.rooms) - 1
		} else {
			bossIdx = g.farthestRoomFrom(0)
		}
		g.rooms[bossIdx].Type = RoomBoss
	}

	pool := make([]int, 0, len(g.rooms)-1)
	for i := 1; i < len(g.rooms); i++ {
		if i != bossIdx {
			pool = append(pool, i)
		}
	}
	rng.Shuffle(g.rng, pool)

	for n := 0; n < g.spec.RequiredRooms.Treasure && len(pool) > 0; n++ {
		g.rooms[pool[0]].Type = RoomTreasure
		pool = pool[1:]
	}
	for n := 0; n < g.spec.RequiredRooms.Special && len(pool) > 0; n++ {
		g.rooms[pool[0]].Type = RoomSpecial
		pool = pool[1:]
	}
}

// ensureRoomTypeRequirements re-counts archetypes against the generation spec and
// converts further rooms when a quota is short. Normal rooms are converted
// first, then rooms whose own archetype is over quota. Room size is not
// considered: presence of the archetype wins over suitability.
func (g *Generator) ensureRoomTypeRequirements() {
	quotas := []struct {
		rt   RoomType
		want int
	}{
		{RoomBoss, g.spec.RequiredRooms.Boss},
		{RoomTreasure, g.spec.RequiredRooms.Treasure},
		{RoomSpecial, g.spec.RequiredRooms.Special},
	}

	for _, q := range quotas {
		for g.countRooms(q.rt) < q.want {
			idx := g.conversionCandidate()
			if idx < 0 {
				break
			}
			g.rooms[idx].Type = q.rt
		}
	}
}

// conversionCandidate picks a room that can change archetype, or -1.
func (g *Generator) conversionCandidate() int {
	var normals []int
	for i := 1; i < len(g.rooms); i++ {
		if g.rooms[i].Type == RoomNormal {
			normals = append(normals, i)
		}
	}
	if idx, ok := rng.Pick(g.rng, normals); ok {
		return idx
	}

	quota := map[RoomType]int{
		RoomTreasure: g.spec.RequiredRooms.Treasure,
		RoomSpecial:  g.spec.RequiredRooms.Special,
	}
	for i := 1; i < len(g.rooms); i++ {
		rt := g.rooms[i].Type
		if want, ok := quota[rt]; ok && g.countRooms(rt) > want {
			return i
		}
	}
	return -1
}

func (g *Generator) countRooms(rt RoomType) int {
	n := 0
	for _, r := range g.rooms {
		if r.Type == rt {
			n++
		}
	}
	return n
}
