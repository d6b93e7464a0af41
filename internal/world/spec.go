package world

import "strings"

// QuestType selects the flavour of a generated level.
type QuestType string

const (
	QuestExploration   QuestType = "exploration"
	QuestBossFight     QuestType = "boss_fight"
	QuestRescue        QuestType = "rescue"
	QuestInvestigation QuestType = "investigation"
)

// QuestTypes lists every supported quest type.
var QuestTypes = []QuestType{QuestExploration, QuestBossFight, QuestRescue, QuestInvestigation}

// LayoutStyle selects the room placement strategy.
type LayoutStyle string

const (
	LayoutStandard LayoutStyle = "standard"
	LayoutLinear   LayoutStyle = "linear"
	LayoutHub      LayoutStyle = "hub"
)

// Spec bounds.
const (
	MinDimension = 16
	MinDepth     = 1
	MaxDepth     = 99
	MinRoomCount = 2
	MaxRoomCount = 30
	MaxBossRooms = 5
	MaxTreasure  = 6
	MaxSpecial   = 8
	MinEventReps = 1
	MaxEventReps = 6

	defaultWidth     = 48
	defaultHeight    = 32
	defaultMinRooms  = 6
	defaultMaxRooms  = 10
	defaultMaxDepth  = 10
	defaultTheme     = "stone"
	defaultTitle     = "Unnamed Depths"
	defaultEventType = "combat"
)

// RequiredRooms holds minimum archetype counts.
type RequiredRooms struct {
	Boss     int `json:"boss"`
	Treasure int `json:"treasure"`
	Special  int `json:"special"`
}

// QuestEvent describes an event to scatter over the map.
type QuestEvent struct {
	EventType          string     `json:"event_type"`
	Title              string     `json:"title"`
	Count              int        `json:"count"`
	IsMandatory        bool       `json:"is_mandatory"`
	PreferredRoomTypes []RoomType `json:"preferred_room_types,omitempty"`
}

// GenerationSpec is the full input to Generator.Generate.
type GenerationSpec struct {
	Seed              string        `json:"seed,omitempty"`
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	QuestType         QuestType     `json:"quest_type"`
	Width             int           `json:"width"`
	Height            int           `json:"height"`
	Depth             int           `json:"depth"`
	MaxDepth          int           `json:"max_depth"`
	LayoutStyle       LayoutStyle   `json:"layout_style"`
	FloorTheme        string        `json:"floor_theme"`
	MinRooms          int           `json:"min_rooms"`
	MaxRooms          int           `json:"max_rooms"`
	RequiredRooms     RequiredRooms `json:"required_rooms"`
	RequireStairsUp   bool          `json:"require_stairs_up"`
	RequireStairsDown bool          `json:"require_stairs_down"`
	QuestEvents       []QuestEvent  `json:"quest_events"`
}

// NormalizeSpec clamps every numeric field into range and coerces unknown
// enum values to safe defaults. It never rejects input. Zero numeric fields
// are treated as unset.
func NormalizeSpec(raw GenerationSpec) GenerationSpec {
	s := raw

	s.Title = strings.TrimSpace(s.Title)
	if s.Title == "" {
		s.Title = defaultTitle
	}
	s.FloorTheme = strings.TrimSpace(s.FloorTheme)
	if s.FloorTheme == "" {
		s.FloorTheme = defaultTheme
	}
	s.QuestType = NormalizeQuestType(s.QuestType)
	s.LayoutStyle = NormalizeLayoutStyle(s.LayoutStyle)

	s.Width = clamp(orDefault(s.Width, defaultWidth), MinDimension, MaxDimension)
	s.Height = clamp(orDefault(s.Height, defaultHeight), MinDimension, MaxDimension)
	s.Depth = clamp(orDefault(s.Depth, MinDepth), MinDepth, MaxDepth)
	s.MaxDepth = clamp(orDefault(s.MaxDepth, max(s.Depth, defaultMaxDepth)), MinDepth, MaxDepth)
	if s.MaxDepth < s.Depth {
		s.MaxDepth = s.Depth
	}

	s.MinRooms = clamp(orDefault(s.MinRooms, defaultMinRooms), MinRoomCount, MaxRoomCount)
	s.MaxRooms = clamp(orDefault(s.MaxRooms, defaultMaxRooms), MinRoomCount, MaxRoomCount)
	if s.MaxRooms < s.MinRooms {
		s.MaxRooms = s.MinRooms
	}

	s.RequiredRooms.Boss = clamp(s.RequiredRooms.Boss, 0, MaxBossRooms)
	s.RequiredRooms.Treasure = clamp(s.RequiredRooms.Treasure, 0, MaxTreasure)
	s.RequiredRooms.Special = clamp(s.RequiredRooms.Special, 0, MaxSpecial)

	s.QuestEvents = make([]QuestEvent, 0, len(raw.QuestEvents))
	for _, e := range raw.QuestEvents {
		e.EventType = strings.TrimSpace(e.EventType)
		if e.EventType == "" {
			e.EventType = defaultEventType
		}
		if strings.TrimSpace(e.Title) == "" {
			e.Title = e.EventType
		}
		e.Count = clamp(orDefault(e.Count, MinEventReps), MinEventReps, MaxEventReps)
		e.PreferredRoomTypes = normalizeRoomTypes(e.PreferredRoomTypes)
		s.QuestEvents = append(s.QuestEvents, e)
	}

	return s
}

// NormalizeQuestType maps unknown values to exploration.
func NormalizeQuestType(q QuestType) QuestType {
	switch QuestType(strings.ToLower(strings.TrimSpace(string(q)))) {
	case QuestBossFight:
		return QuestBossFight
	case QuestRescue:
		return QuestRescue
	case QuestInvestigation:
		return QuestInvestigation
	default:
		return QuestExploration
	}
}

// NormalizeLayoutStyle maps unknown values to standard.
func NormalizeLayoutStyle(l LayoutStyle) LayoutStyle {
	switch LayoutStyle(strings.ToLower(strings.TrimSpace(string(l)))) {
	case LayoutLinear:
		return LayoutLinear
	case LayoutHub:
		return LayoutHub
	default:
		return LayoutStandard
	}
}

// normalizeRoomTypes drops unknown archetypes and duplicates.
func normalizeRoomTypes(in []RoomType) []RoomType {
	if len(in) == 0 {
		return nil
	}
	out := make([]RoomType, 0, len(in))
	seen := make(map[RoomType]bool, len(in))
	for _, rt := range in {
		switch rt {
		case RoomEntrance, RoomNormal, RoomBoss, RoomTreasure, RoomSpecial, RoomCorridor:
		default:
			continue
		}
		if seen[rt] {
			continue
		}
		seen[rt] = true
		out = append(out, rt)
	}
	return out
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
