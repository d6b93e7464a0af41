package world

import (
	"reflect"
	"testing"
)

func TestNormalizeSpecDefaults(t *testing.T) {
	s := NormalizeSpec(GenerationSpec{})

	if s.Width != 48 || s.Height != 32 {
		t.Errorf("Default size = %dx%d, want 48x32", s.Width, s.Height)
	}
	if s.Depth != 1 || s.MaxDepth != 10 {
		t.Errorf("Default depth = %d/%d, want 1/10", s.Depth, s.MaxDepth)
	}
	if s.MinRooms != 6 || s.MaxRooms != 10 {
		t.Errorf("Default rooms = %d..%d, want 6..10", s.MinRooms, s.MaxRooms)
	}
	if s.QuestType != QuestExploration || s.LayoutStyle != LayoutStandard {
		t.Errorf("Default enums = %s/%s", s.QuestType, s.LayoutStyle)
	}
	if s.FloorTheme != "stone" || s.Title != "Unnamed Depths" {
		t.Errorf("Default text = %q/%q", s.FloorTheme, s.Title)
	}
}

func TestNormalizeSpecClamping(t *testing.T) {
	tests := []struct {
		name  string
		in    GenerationSpec
		check func(GenerationSpec) bool
	}{
		{"narrow width", GenerationSpec{Width: 5}, func(s GenerationSpec) bool { return s.Width == 16 }},
		{"huge height", GenerationSpec{Height: 500}, func(s GenerationSpec) bool { return s.Height == 80 }},
		{"negative depth", GenerationSpec{Depth: -4}, func(s GenerationSpec) bool { return s.Depth == 1 }},
		{"max depth below depth", GenerationSpec{Depth: 12, MaxDepth: 3}, func(s GenerationSpec) bool { return s.MaxDepth == 12 }},
		{"max rooms below min", GenerationSpec{MinRooms: 9, MaxRooms: 4}, func(s GenerationSpec) bool { return s.MinRooms == 9 && s.MaxRooms == 9 }},
		{"one room", GenerationSpec{MinRooms: 1, MaxRooms: 1}, func(s GenerationSpec) bool { return s.MinRooms == 2 && s.MaxRooms == 2 }},
		{"boss cap", GenerationSpec{RequiredRooms: RequiredRooms{Boss: 9}}, func(s GenerationSpec) bool { return s.RequiredRooms.Boss == 5 }},
		{"negative treasure", GenerationSpec{RequiredRooms: RequiredRooms{Treasure: -1}}, func(s GenerationSpec) bool { return s.RequiredRooms.Treasure == 0 }},
		{"unknown layout", GenerationSpec{LayoutStyle: "spiral"}, func(s GenerationSpec) bool { return s.LayoutStyle == LayoutStandard }},
		{"layout case", GenerationSpec{LayoutStyle: " Hub "}, func(s GenerationSpec) bool { return s.LayoutStyle == LayoutHub }},
		{"unknown quest", GenerationSpec{QuestType: "heist"}, func(s GenerationSpec) bool { return s.QuestType == QuestExploration }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeSpec(tt.in); !tt.check(got) {
				t.Errorf("NormalizeSpec(%+v) = %+v", tt.in, got)
			}
		})
	}
}

func TestNormalizeQuestEvents(t *testing.T) {
	s := NormalizeSpec(GenerationSpec{QuestEvents: []QuestEvent{
		{Count: 40, PreferredRoomTypes: []RoomType{RoomBoss, "vault", RoomBoss, RoomCorridor}},
		{EventType: " lore ", Title: "Old carving"},
	}})

	if len(s.QuestEvents) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(s.QuestEvents))
	}
	first := s.QuestEvents[0]
	if first.EventType != "combat" || first.Title != "combat" || first.Count != MaxEventReps {
		t.Errorf("First event normalized to %+v", first)
	}
	if want := []RoomType{RoomBoss, RoomCorridor}; !reflect.DeepEqual(first.PreferredRoomTypes, want) {
		t.Errorf("Preferred room types = %v, want %v", first.PreferredRoomTypes, want)
	}
	second := s.QuestEvents[1]
	if second.EventType != "lore" || second.Count != 1 {
		t.Errorf("Second event normalized to %+v", second)
	}
}

func TestNormalizeDoesNotAliasInput(t *testing.T) {
	raw := GenerationSpec{QuestEvents: []QuestEvent{{EventType: "", Count: 0}}}
	_ = NormalizeSpec(raw)

	if raw.QuestEvents[0].EventType != "" || raw.QuestEvents[0].Count != 0 {
		t.Errorf("NormalizeSpec mutated its input: %+v", raw.QuestEvents[0])
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	once := NormalizeSpec(dungeonSpec("idem"))
	twice := NormalizeSpec(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("NormalizeSpec is not idempotent:\n%+v\n%+v", once, twice)
	}
}
