package world

import (
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/samdwyer/questforge/internal/gamedata"
	"github.com/samdwyer/questforge/internal/rng"
)

const maxEncounters = 8

// encounterRoomTypes are where regular encounters prefer to spawn.
var encounterRoomTypes = []RoomType{RoomNormal, RoomCorridor, RoomSpecial}

// buildMonsterHints picks advisory spawn points for an external spawner.
// It does not mutate tiles.
func (g *Generator) buildMonsterHints() MonsterHints {
	profile := gamedata.Encounters().ForQuestType(string(g.spec.QuestType))

	hints := MonsterHints{
		RecommendedLevel: profile.RecommendedLevel(g.spec.Depth),
		Difficulty:       profile.Difficulty,
		EncounterCount:   clamp(profile.BaseEncounters+g.spec.Depth/2+len(g.rooms)/4, 1, maxEncounters),
		Spawns:           []MonsterSpawn{},
	}

	used := mapset.New[Point]()
	for i := 0; i < hints.EncounterCount; i++ {
		p, ok := g.pickSpawnTile(encounterRoomTypes, used)
		if !ok {
			break
		}
		used.Put(p)
		hints.Spawns = append(hints.Spawns, g.monsterSpawn(p, SpawnEncounter))
	}

	if g.spec.RequiredRooms.Boss > 0 {
		if p, ok := g.pickSpawnTile([]RoomType{RoomBoss}, used); ok {
			used.Put(p)
			hints.Spawns = append(hints.Spawns, g.monsterSpawn(p, SpawnBoss))
		}
	}

	return hints
}

// pickSpawnTile draws an unused walkable tile outside the entrance, away
// from stairs and events, preferring the given archetypes.
func (g *Generator) pickSpawnTile(prefs []RoomType, used mapset.Set[Point]) (Point, bool) {
	var preferred, fallback []Point
	g.m.Each(func(t *Tile) {
		p := t.Point()
		if !t.IsWalkable() || t.Terrain.IsStairs() || t.HasEvent || t.RoomType == RoomEntrance || used.Has(p) {
			return
		}
		fallback = append(fallback, p)
		if slices.Contains(prefs, t.RoomType) {
			preferred = append(preferred, p)
		}
	})
	if p, ok := rng.Pick(g.rng, preferred); ok {
		return p, true
	}
	return rng.Pick(g.rng, fallback)
}

func (g *Generator) monsterSpawn(p Point, kind SpawnKind) MonsterSpawn {
	return MonsterSpawn{
		Key:      p.Key(),
		X:        p.X,
		Y:        p.Y,
		Kind:     kind,
		RoomType: g.m.TileAt(p.X, p.Y).RoomType,
	}
}
