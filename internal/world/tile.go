// Package world provides procedural map generation, validation and hashing.
package world

// Terrain identifies what occupies a tile.
type Terrain string

const (
	// TerrainWall is impassable rock.
	TerrainWall Terrain = "wall"
	// TerrainFloor is plain walkable ground.
	TerrainFloor      Terrain = "floor"
	TerrainDoor       Terrain = "door"
	TerrainTrap       Terrain = "trap"
	TerrainTreasure   Terrain = "treasure"
	TerrainStairsUp   Terrain = "stairs_up"
	TerrainStairsDown Terrain = "stairs_down"
	TerrainWater      Terrain = "water"
	TerrainLava       Terrain = "lava"
	TerrainPit        Terrain = "pit"
)

// IsWalkable returns true if a character may stand on the terrain.
func (t Terrain) IsWalkable() bool {
	switch t {
	case TerrainFloor, TerrainDoor, TerrainTrap, TerrainTreasure, TerrainStairsUp, TerrainStairsDown:
		return true
	default:
		return false
	}
}

// IsStairs returns true for either stairs terrain.
func (t Terrain) IsStairs() bool {
	return t == TerrainStairsUp || t == TerrainStairsDown
}

// Rune returns the terrain's default display character.
func (t Terrain) Rune() rune {
	switch t {
	case TerrainWall:
		return '#'
	case TerrainFloor:
		return '.'
	case TerrainDoor:
		return '+'
	case TerrainTrap:
		return '^'
	case TerrainTreasure:
		return '$'
	case TerrainStairsUp:
		return '<'
	case TerrainStairsDown:
		return '>'
	case TerrainWater:
		return '~'
	case TerrainLava:
		return '='
	case TerrainPit:
		return 'o'
	default:
		return '?'
	}
}

// EventData is the payload attached to an event tile.
type EventData struct {
	ID          string `json:"event_id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	IsMandatory bool   `json:"is_mandatory"`
	Source      string `json:"source,omitempty"`
}

// Tile is a single grid cell.
type Tile struct {
	X              int        `json:"x"`
	Y              int        `json:"y"`
	Terrain        Terrain    `json:"terrain"`
	RoomID         string     `json:"room_id,omitempty"`
	RoomType       RoomType   `json:"room_type,omitempty"`
	HasEvent       bool       `json:"has_event"`
	EventType      string     `json:"event_type,omitempty"`
	EventData      *EventData `json:"event_data,omitempty"`
	IsEventHidden  bool       `json:"is_event_hidden"`
	EventTriggered bool       `json:"event_triggered"`
	TrapDetected   bool       `json:"trap_detected"`
	TrapDisarmed   bool       `json:"trap_disarmed"`
	Items          []string   `json:"items"`
	CharacterID    string     `json:"character_id,omitempty"`
	IsExplored     bool       `json:"is_explored"`
	IsVisible      bool       `json:"is_visible"`
}

// IsWalkable returns true if the tile's terrain can be walked on.
func (t *Tile) IsWalkable() bool {
	return t.Terrain.IsWalkable()
}

// IsMandatoryEvent reports whether the tile hosts an event flagged mandatory.
func (t *Tile) IsMandatoryEvent() bool {
	return t.HasEvent && t.EventData != nil && t.EventData.IsMandatory
}

// Point returns the tile's coordinates.
func (t *Tile) Point() Point {
	return Point{X: t.X, Y: t.Y}
}

// clone returns a deep copy of the tile.
func (t Tile) clone() Tile {
	c := t
	if t.EventData != nil {
		data := *t.EventData
		c.EventData = &data
	}
	c.Items = append([]string{}, t.Items...)
	return c
}

// wallTile returns a fresh wall tile at the given coordinates.
func wallTile(x, y int) Tile {
	return Tile{X: x, Y: y, Terrain: TerrainWall, Items: []string{}}
}
