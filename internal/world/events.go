package world

import (
	"slices"

	"github.com/samdwyer/questforge/internal/rng"
)

// EventTrap is the event type whose tiles stay hidden until revealed.
const EventTrap = "trap"

// placeQuestEvents scatters each quest event over unused walkable tiles.
func (g *Generator) placeQuestEvents() {
	for _, qe := range g.spec.QuestEvents {
		for i := 0; i < qe.Count; i++ {
			p, ok := g.pickEventTile(qe.PreferredRoomTypes)
			if !ok {
				break
			}
			t := g.m.TileAt(p.X, p.Y)
			id := g.nextEventID()

			t.HasEvent = true
			t.EventType = qe.EventType
			t.EventData = &EventData{
				ID:          id,
				Title:       qe.Title,
				IsMandatory: qe.IsMandatory,
				Source:      "quest",
			}
			t.IsEventHidden = qe.EventType == EventTrap
			t.EventTriggered = false

			g.events = append(g.events, PlacedEvent{
				ID:          id,
				Key:         p.Key(),
				X:           p.X,
				Y:           p.Y,
				EventType:   qe.EventType,
				Title:       qe.Title,
				IsMandatory: qe.IsMandatory,
				RoomID:      t.RoomID,
			})
		}
	}
}

// pickEventTile draws a walkable, non-stairs tile with no event, preferring
// the given archetypes when any are listed.
func (g *Generator) pickEventTile(prefs []RoomType) (Point, bool) {
	var preferred, fallback []Point
	g.m.Each(func(t *Tile) {
		if !t.IsWalkable() || t.Terrain.IsStairs() || t.HasEvent {
			return
		}
		fallback = append(fallback, t.Point())
		if slices.Contains(prefs, t.RoomType) {
			preferred = append(preferred, t.Point())
		}
	})
	if len(prefs) > 0 {
		if p, ok := rng.Pick(g.rng, preferred); ok {
			return p, true
		}
	}
	return rng.Pick(g.rng, fallback)
}
