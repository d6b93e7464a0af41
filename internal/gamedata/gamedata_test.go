package gamedata

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadEncounters(t *testing.T) {
	profiles, err := LoadEncounters()
	if err != nil {
		t.Fatalf("Failed to load encounters: %v", err)
	}

	if len(profiles) != 4 {
		t.Errorf("Expected 4 profiles, got %d", len(profiles))
	}

	// Verify every quest type has a profile
	expected := map[string]bool{"exploration": false, "boss_fight": false, "rescue": false, "investigation": false}
	for _, p := range profiles {
		if _, ok := expected[p.QuestType]; ok {
			expected[p.QuestType] = true
		}
	}

	for questType, found := range expected {
		if !found {
			t.Errorf("Expected profile %q not found", questType)
		}
	}
}

func TestEncounterRegistry(t *testing.T) {
	registry, err := LoadEncounterRegistry()
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}

	boss := registry.ForQuestType("boss_fight")
	if boss.Difficulty != "deadly" {
		t.Errorf("Expected boss_fight difficulty 'deadly', got %q", boss.Difficulty)
	}

	unknown := registry.ForQuestType("heist")
	if unknown.QuestType != "default" {
		t.Errorf("Expected fallback profile for unknown quest type, got %q", unknown.QuestType)
	}

	if Encounters() != Encounters() {
		t.Error("Shared registry should be built once")
	}
}

func TestRecommendedLevel(t *testing.T) {
	p := EncounterProfile{LevelPerDepth: 1.5}

	tests := []struct {
		depth int
		want  int
	}{
		{0, 1},
		{1, 2},
		{4, 6},
		{10, 15},
	}

	for _, tt := range tests {
		if got := p.RecommendedLevel(tt.depth); got != tt.want {
			t.Errorf("RecommendedLevel(%d) = %d, want %d", tt.depth, got, tt.want)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"#FF0000", true},
		{"FF0000", true},
		{"#00FF00", true},
		{"#5a5a5a", true},
		{"#FFF", true}, // shorthand
		{"invalid", false},
		{"#FFFF", false},
		{"#GG0000", false},
		{"", false},
	}

	for _, tt := range tests {
		_, err := ParseHexColor(tt.input)
		if tt.valid && err != nil {
			t.Errorf("ParseHexColor(%q) should be valid, got error: %v", tt.input, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ParseHexColor(%q) should be invalid, got no error", tt.input)
		}
	}

	short, _ := ParseHexColor("#F80")
	long, _ := ParseHexColor("#FF8800")
	if short != long {
		t.Errorf("#F80 = %v, want %v", short, long)
	}
}

func TestPaletteColoursParse(t *testing.T) {
	file, err := LoadPalette()
	if err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	if err := file.ValidateColors(); err != nil {
		t.Error(err)
	}

	file.Markers["broken"] = GlyphStyle{Glyph: "x", Color: "nope"}
	if err := file.ValidateColors(); err == nil {
		t.Error("expected an error for an unparseable marker colour")
	}
}

func TestPalette(t *testing.T) {
	palette := MustLoadPalette()

	for _, name := range []string{"wall", "floor", "door", "trap", "treasure", "stairs_up", "stairs_down"} {
		style := palette.Terrain(name)
		if style == nil {
			t.Errorf("Palette missing terrain %q", name)
			continue
		}
		if style.GlyphRune() == '?' {
			t.Errorf("Terrain %q has no glyph", name)
		}
		if style.TCellColor() == 0 {
			t.Errorf("Terrain %q returned zero color", name)
		}
	}

	if spawn, ok := palette.Marker("spawn"); !ok || spawn.GlyphRune() != '@' {
		t.Errorf("Expected spawn marker '@', got %+v (ok=%v)", spawn, ok)
	}
}

func TestLoadErrorNamesFileAndLine(t *testing.T) {
	content := []byte("{\n  \"profiles\": [\n    {\"questType\": 7}\n  ]\n}\n")
	_, err := decode[EncountersFile]("encounters.json", content)

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected *LoadError, got %v", err)
	}
	if loadErr.File != "encounters.json" || loadErr.Line != 3 {
		t.Errorf("Expected encounters.json line 3, got %s line %d", loadErr.File, loadErr.Line)
	}
	if !strings.Contains(err.Error(), "encounters.json line 3") {
		t.Errorf("Error should name file and line: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load[EncountersFile]("missing.json")

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected *LoadError, got %v", err)
	}
	if loadErr.Line != 0 || loadErr.File != "missing.json" {
		t.Errorf("Unexpected load error %+v", loadErr)
	}
}
