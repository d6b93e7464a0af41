package world

// Version identifies the generator revision that produced a result.
const Version = "questforge-localmap/1"

// Stairs records stairs positions; nil when not placed.
type Stairs struct {
	Up   *Point `json:"up"`
	Down *Point `json:"down"`
}

// PlacedEvent is a quest event instance placed on the map.
type PlacedEvent struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	EventType   string `json:"event_type"`
	Title       string `json:"title"`
	IsMandatory bool   `json:"is_mandatory"`
	RoomID      string `json:"room_id,omitempty"`
}

// SpawnKind tags a monster spawn hint.
type SpawnKind string

const (
	SpawnEncounter SpawnKind = "encounter"
	SpawnBoss      SpawnKind = "boss"
)

// MonsterSpawn is one advisory spawn point.
type MonsterSpawn struct {
	Key      string    `json:"key"`
	X        int       `json:"x"`
	Y        int       `json:"y"`
	Kind     SpawnKind `json:"kind"`
	RoomType RoomType  `json:"room_type,omitempty"`
}

// MonsterHints is advisory metadata for an external spawner.
type MonsterHints struct {
	RecommendedLevel int            `json:"recommended_level"`
	Difficulty       string         `json:"difficulty"`
	EncounterCount   int            `json:"encounter_count"`
	Spawns           []MonsterSpawn `json:"spawns"`
}

// Validation is the outcome of ValidateMap. It is a value, never an error.
type Validation struct {
	OK                  bool     `json:"ok"`
	Errors              []string `json:"errors"`
	Warnings            []string `json:"warnings"`
	FloorCount          int      `json:"floor_count"`
	RequiredTargetCount int      `json:"required_target_count"`
}

// Metrics summarizes a generated map.
type Metrics struct {
	RoomCount     int     `json:"room_count"`
	WalkableTiles int     `json:"walkable_tiles"`
	WalkableRatio float64 `json:"walkable_ratio"`
	EventCount    int     `json:"event_count"`
	HasStairsUp   bool    `json:"has_stairs_up"`
	HasStairsDown bool    `json:"has_stairs_down"`
}

// GenerationResult is everything produced by one Generate call.
type GenerationResult struct {
	Seed         uint32         `json:"seed"`
	SeedInput    string         `json:"seed_input"`
	Spec         GenerationSpec `json:"spec"`
	Map          *Map           `json:"map"`
	Rooms        []Room         `json:"rooms"`
	Spawn        Point          `json:"spawn"`
	Stairs       Stairs         `json:"stairs"`
	Events       []PlacedEvent  `json:"events"`
	MonsterHints MonsterHints   `json:"monster_hints"`
	Validation   Validation     `json:"validation"`
	Metrics      Metrics        `json:"metrics"`
	Hash         string         `json:"hash"`
	Version      string         `json:"version"`
}

// RoomsOfType returns the rooms with the given archetype.
func (r *GenerationResult) RoomsOfType(rt RoomType) []Room {
	var out []Room
	for _, room := range r.Rooms {
		if room.Type == rt {
			out = append(out, room)
		}
	}
	return out
}
