package gamedata

import "math"

// EncounterProfile tunes monster hints for one quest type.
type EncounterProfile struct {
	QuestType      string  `json:"questType"`      // Quest type this profile applies to
	Difficulty     string  `json:"difficulty"`     // Encounter difficulty label (e.g., "deadly")
	LevelPerDepth  float64 `json:"levelPerDepth"`  // Recommended player levels per dungeon depth
	BaseEncounters int     `json:"baseEncounters"` // Encounters before depth/room scaling
	BossTitle      string  `json:"bossTitle"`      // Default name for a synthesized boss event
}

// RecommendedLevel derives the recommended player level for a depth.
func (p *EncounterProfile) RecommendedLevel(depth int) int {
	level := int(math.Round(float64(depth) * p.LevelPerDepth))
	if level < 1 {
		return 1
	}
	return level
}

// EncountersFile represents the structure of encounters.json.
type EncountersFile struct {
	Profiles []EncounterProfile `json:"profiles"`
}

// LoadEncounters loads encounter profiles from the embedded encounters.json file.
func LoadEncounters() ([]EncounterProfile, error) {
	file, err := Load[EncountersFile]("encounters.json")
	if err != nil {
		return nil, err
	}
	return file.Profiles, nil
}
