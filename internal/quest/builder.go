// Package quest translates external quest requests into generation specs.
package quest

import (
	"strings"

	"github.com/samdwyer/questforge/internal/world"
)

// SpecialEvent is a caller-requested event. IsMandatory defaults to true
// when omitted.
type SpecialEvent struct {
	EventType   string `json:"event_type" yaml:"event_type"`
	Name        string `json:"name" yaml:"name"`
	IsMandatory *bool  `json:"is_mandatory,omitempty" yaml:"is_mandatory,omitempty"`
}

// Request is the quest request produced by the game layer.
type Request struct {
	Seed          string         `json:"seed,omitempty" yaml:"seed,omitempty"`
	QuestType     string         `json:"quest_type" yaml:"quest_type"`
	Depth         int            `json:"depth" yaml:"depth"`
	MaxDepth      int            `json:"max_depth" yaml:"max_depth"`
	Width         int            `json:"width,omitempty" yaml:"width,omitempty"`
	Height        int            `json:"height,omitempty" yaml:"height,omitempty"`
	Title         string         `json:"title,omitempty" yaml:"title,omitempty"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty"`
	SpecialEvents []SpecialEvent `json:"special_events,omitempty" yaml:"special_events,omitempty"`
}

// layoutPlan is the per-quest-type shape of a level.
type layoutPlan struct {
	layout   world.LayoutStyle
	minRooms int
	maxRooms int
	rooms    world.RequiredRooms
}

var plans = map[world.QuestType]layoutPlan{
	world.QuestBossFight:     {world.LayoutLinear, 5, 8, world.RequiredRooms{Boss: 1, Treasure: 1}},
	world.QuestExploration:   {world.LayoutHub, 7, 9, world.RequiredRooms{Treasure: 2, Special: 2}},
	world.QuestRescue:        {world.LayoutStandard, 6, 10, world.RequiredRooms{Treasure: 1, Special: 1}},
	world.QuestInvestigation: {world.LayoutStandard, 6, 9, world.RequiredRooms{Treasure: 1, Special: 2}},
}

// Floor themes by depth band; the last entry covers everything deeper.
var themes = []struct {
	maxDepth int
	theme    string
}{
	{3, "stone"},
	{6, "moss"},
	{9, "ember"},
	{world.MaxDepth, "abyss"},
}

// BuildMapSpec chooses layout, room quotas and quest events for a request.
// The result is normalized, so out-of-range request fields are clamped.
func BuildMapSpec(req Request) world.GenerationSpec {
	questType := world.NormalizeQuestType(world.QuestType(req.QuestType))
	plan := plans[questType]

	spec := world.GenerationSpec{
		Seed:              req.Seed,
		Title:             req.Title,
		Description:       req.Description,
		QuestType:         questType,
		Width:             req.Width,
		Height:            req.Height,
		Depth:             req.Depth,
		MaxDepth:          req.MaxDepth,
		LayoutStyle:       plan.layout,
		MinRooms:          plan.minRooms,
		MaxRooms:          plan.maxRooms,
		RequiredRooms:     plan.rooms,
		RequireStairsUp:   true,
		RequireStairsDown: true,
	}
	// Normalize once up front so depth comparisons use clamped values.
	spec = world.NormalizeSpec(spec)
	spec.FloorTheme = themeForDepth(spec.Depth)

	finalFloor := IsFinalFloor(req)
	if finalFloor {
		spec.LayoutStyle = world.LayoutLinear
		spec.RequiredRooms.Boss = max(spec.RequiredRooms.Boss, 1)
	}

	if len(req.SpecialEvents) > 0 {
		for _, se := range req.SpecialEvents {
			spec.QuestEvents = append(spec.QuestEvents, convertEvent(se))
		}
	} else {
		spec.QuestEvents = defaultEvents(questType, spec.Depth, finalFloor)
	}

	return world.NormalizeSpec(spec)
}

// IsFinalFloor reports whether the request targets the last floor.
func IsFinalFloor(req Request) bool {
	s := world.NormalizeSpec(world.GenerationSpec{Depth: req.Depth, MaxDepth: req.MaxDepth})
	return s.Depth >= s.MaxDepth
}

func convertEvent(se SpecialEvent) world.QuestEvent {
	eventType := strings.ToLower(strings.TrimSpace(se.EventType))
	mandatory := true
	if se.IsMandatory != nil {
		mandatory = *se.IsMandatory
	}
	return world.QuestEvent{
		EventType:          eventType,
		Title:              se.Name,
		Count:              1,
		IsMandatory:        mandatory,
		PreferredRoomTypes: PreferredRoomTypes(eventType),
	}
}

// PreferredRoomTypes infers where an event type should be placed. Unknown
// types return nil and may land on any walkable tile.
func PreferredRoomTypes(eventType string) []world.RoomType {
	switch eventType {
	case "boss":
		return []world.RoomType{world.RoomBoss}
	case "treasure":
		return []world.RoomType{world.RoomTreasure, world.RoomSpecial}
	case world.EventTrap:
		return []world.RoomType{world.RoomCorridor, world.RoomNormal}
	case "combat":
		return []world.RoomType{world.RoomNormal, world.RoomCorridor, world.RoomSpecial}
	case "rescue", "lore", "clue":
		return []world.RoomType{world.RoomSpecial, world.RoomNormal}
	default:
		return nil
	}
}

// defaultEvents synthesizes events when the caller supplied none: one or
// two per quest type, then a single optional trap.
func defaultEvents(questType world.QuestType, depth int, finalFloor bool) []world.QuestEvent {
	var events []world.QuestEvent
	add := func(eventType, title string, count int, mandatory bool) {
		events = append(events, world.QuestEvent{
			EventType:          eventType,
			Title:              title,
			Count:              count,
			IsMandatory:        mandatory,
			PreferredRoomTypes: PreferredRoomTypes(eventType),
		})
	}

	switch questType {
	case world.QuestBossFight:
		add("boss", "Lair guardian", 1, true)
		add("combat", "Guard post", 1+depth/4, false)
	case world.QuestRescue:
		add("rescue", "Captive survivor", 1, true)
		add("combat", "Captors", 1, false)
	case world.QuestInvestigation:
		add("clue", "Scattered evidence", 2, true)
		add("lore", "Faded record", 1, false)
	default:
		add("treasure", "Lost cache", 1, true)
	}

	if finalFloor && questType != world.QuestBossFight {
		add("boss", "Floor warden", 1, true)
	}

	add(world.EventTrap, "Hidden snare", 1, false)
	return events
}

func themeForDepth(depth int) string {
	for _, band := range themes {
		if depth <= band.maxDepth {
			return band.theme
		}
	}
	return themes[len(themes)-1].theme
}
