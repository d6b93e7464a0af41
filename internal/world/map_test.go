package world

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		key     string
		want    Point
		wantErr bool
	}{
		{"0,0", Point{0, 0}, false},
		{"15,9", Point{15, 9}, false},
		{"16,0", Point{}, true},
		{"-1,3", Point{}, true},
		{"3", Point{}, true},
		{"a,b", Point{}, true},
		{"", Point{}, true},
		{"03,4", Point{}, true},
		{"+3,4", Point{}, true},
		{"3, 4", Point{}, true},
		{"3,-0", Point{}, true},
	}

	for _, tt := range tests {
		got, err := ParseKey(tt.key, 16, 10)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestKeyRoundTrip(t *testing.T) {
	p := Point{X: 12, Y: 7}
	got, err := ParseKey(p.Key(), 20, 20)
	if err != nil {
		t.Fatalf("ParseKey(%q) failed: %v", p.Key(), err)
	}
	if got != p {
		t.Errorf("Round trip gave %v, want %v", got, p)
	}
}

func TestNewMapIsAllWall(t *testing.T) {
	m := NewMap(5, 4)
	if m.TileCount() != 20 {
		t.Fatalf("Expected 20 tiles, got %d", m.TileCount())
	}
	m.Each(func(tile *Tile) {
		if tile.Terrain != TerrainWall {
			t.Errorf("Tile %s is %s, want wall", Key(tile.X, tile.Y), tile.Terrain)
		}
	})
	if m.TileAt(5, 0) != nil || m.TileAt(0, -1) != nil {
		t.Error("TileAt outside the grid should be nil")
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := NewMap(4, 4)
	src := m.TileAt(1, 1)
	src.Terrain = TerrainFloor
	src.HasEvent = true
	src.EventData = &EventData{ID: "event-1", IsMandatory: true}
	src.Items = []string{"key"}

	c := m.Clone()
	ct := c.TileAt(1, 1)
	ct.Terrain = TerrainTrap
	ct.EventData.IsMandatory = false
	ct.Items[0] = "coin"

	if src.Terrain != TerrainFloor || !src.EventData.IsMandatory || src.Items[0] != "key" {
		t.Errorf("Mutating the clone changed the original: %+v", src)
	}
}

func TestMapJSONRoundTrip(t *testing.T) {
	res := generate(dungeonSpec("json"))

	data, err := json.Marshal(res.Map)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Map
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got, want := HashMap(&decoded), res.Hash; got != want {
		t.Errorf("Hash after round trip = %s, want %s", got, want)
	}
	if decoded.ID != res.Map.ID || decoded.Name != res.Map.Name {
		t.Errorf("Header lost in round trip: %q %q", decoded.ID, decoded.Name)
	}
	for _, e := range res.Events {
		tile := decoded.TileByKey(e.Key)
		if tile == nil || tile.EventData == nil || tile.EventData.ID != e.ID {
			t.Errorf("Event %s lost in round trip", e.ID)
		}
	}
}

func TestUnmarshalBackfillsMissingTiles(t *testing.T) {
	input := `{"width": 3, "height": 2, "floor_theme": "moss", "tiles": {"1,1": {"terrain": "floor"}}}`

	var m Map
	if err := json.Unmarshal([]byte(input), &m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if m.TileCount() != 6 {
		t.Fatalf("Expected a dense 3x2 grid, got %d tiles", m.TileCount())
	}
	if got := m.TileAt(1, 1); got.Terrain != TerrainFloor || got.X != 1 || got.Y != 1 {
		t.Errorf("Tile 1,1 decoded as %+v", got)
	}
	if got := m.TileAt(0, 0).Terrain; got != TerrainWall {
		t.Errorf("Missing tile should be wall, got %s", got)
	}
}

func TestUnmarshalRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"zero width", `{"width": 0, "height": 4, "tiles": {}}`, "dimensions"},
		{"too tall", `{"width": 4, "height": 81, "tiles": {}}`, "dimensions"},
		{"key outside grid", `{"width": 2, "height": 2, "tiles": {"2,0": {"terrain": "floor"}}}`, "outside"},
		{"malformed key", `{"width": 2, "height": 2, "tiles": {"x": {"terrain": "floor"}}}`, "malformed"},
		{"aliased key", `{"width": 2, "height": 2, "tiles": {"1,0": {"terrain": "floor"}, "01,0": {"terrain": "water"}}}`, "canonical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Map
			err := json.Unmarshal([]byte(tt.input), &m)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestHashIgnoresPresentationState(t *testing.T) {
	res := generate(dungeonSpec("hash"))
	before := HashMap(res.Map)

	res.Map.TileAt(0, 0).IsExplored = true
	res.Map.TileAt(0, 0).IsVisible = true
	if got := HashMap(res.Map); got != before {
		t.Errorf("Fog-of-war flags changed the hash: %s != %s", got, before)
	}

	res.Map.TileAt(res.Spawn.X, res.Spawn.Y).Terrain = TerrainTreasure
	if got := HashMap(res.Map); got == before {
		t.Error("Terrain change should change the hash")
	}
}

func TestComputeMetrics(t *testing.T) {
	m := NewMap(4, 4)
	m.TileAt(1, 1).Terrain = TerrainFloor
	m.TileAt(2, 1).Terrain = TerrainStairsUp
	m.TileAt(1, 2).Terrain = TerrainWater

	metrics := ComputeMetrics(m, 1, 0)
	if metrics.WalkableTiles != 2 {
		t.Errorf("Expected 2 walkable tiles, got %d", metrics.WalkableTiles)
	}
	if metrics.WalkableRatio != 2.0/16.0 {
		t.Errorf("Expected ratio 0.125, got %v", metrics.WalkableRatio)
	}
	if !metrics.HasStairsUp || metrics.HasStairsDown {
		t.Errorf("Unexpected stairs flags: %+v", metrics)
	}
}
