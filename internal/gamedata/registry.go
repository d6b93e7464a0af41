package gamedata

import (
	"errors"
	"sync"
)

// fallbackProfile is used for quest types missing from encounters.json.
var fallbackProfile = EncounterProfile{
	QuestType:      "default",
	Difficulty:     "moderate",
	LevelPerDepth:  1,
	BaseEncounters: 2,
	BossTitle:      "Guardian",
}

// EncounterRegistry holds loaded encounter profiles keyed by quest type.
type EncounterRegistry struct {
	profiles map[string]*EncounterProfile
	all      []EncounterProfile
}

// NewEncounterRegistry creates a registry from loaded profiles.
func NewEncounterRegistry(profiles []EncounterProfile) *EncounterRegistry {
	registry := &EncounterRegistry{
		profiles: make(map[string]*EncounterProfile),
		all:      profiles,
	}
	for i := range profiles {
		registry.profiles[profiles[i].QuestType] = &profiles[i]
	}
	return registry
}

// LoadEncounterRegistry loads and creates a registry from the embedded encounters.json.
func LoadEncounterRegistry() (*EncounterRegistry, error) {
	profiles, err := LoadEncounters()
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, errors.New("no profiles loaded from encounters.json")
	}
	return NewEncounterRegistry(profiles), nil
}

// MustLoadEncounterRegistry loads a registry, panicking on error.
func MustLoadEncounterRegistry() *EncounterRegistry {
	registry, err := LoadEncounterRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// Encounters returns the shared registry built from the embedded data.
var Encounters = sync.OnceValue(MustLoadEncounterRegistry)

// ForQuestType returns the profile for a quest type, or a neutral fallback.
func (r *EncounterRegistry) ForQuestType(questType string) *EncounterProfile {
	if p := r.profiles[questType]; p != nil {
		return p
	}
	return &fallbackProfile
}

// All returns all encounter profiles.
func (r *EncounterRegistry) All() []EncounterProfile {
	return r.all
}

// Count returns the number of profiles in the registry.
func (r *EncounterRegistry) Count() int {
	return len(r.all)
}

// =============================================================================
// Palette
// =============================================================================

// Palette resolves terrain and marker glyph styles.
type Palette struct {
	terrain map[string]*GlyphStyle
	markers map[string]GlyphStyle
}

// NewPalette creates a palette from a loaded palette file.
func NewPalette(file PaletteFile) *Palette {
	p := &Palette{
		terrain: make(map[string]*GlyphStyle),
		markers: file.Markers,
	}
	for i := range file.Terrain {
		p.terrain[file.Terrain[i].Terrain] = &file.Terrain[i].GlyphStyle
	}
	if p.markers == nil {
		p.markers = make(map[string]GlyphStyle)
	}
	return p
}

// MustLoadPalette loads the embedded palette, panicking on error.
func MustLoadPalette() *Palette {
	file, err := LoadPalette()
	if err != nil {
		panic(err)
	}
	return NewPalette(file)
}

// Terrain returns the style for a terrain name, or nil if unknown.
func (p *Palette) Terrain(name string) *GlyphStyle {
	return p.terrain[name]
}

// Marker returns the style for an overlay marker (spawn, event, monster, boss).
func (p *Palette) Marker(name string) (GlyphStyle, bool) {
	style, ok := p.markers[name]
	return style, ok
}
