package quest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/questforge/internal/world"
)

func boolPtr(b bool) *bool { return &b }

func TestBuildMapSpecLayoutByQuestType(t *testing.T) {
	tests := []struct {
		questType string
		layout    world.LayoutStyle
		boss      int
	}{
		{"boss_fight", world.LayoutLinear, 1},
		{"exploration", world.LayoutHub, 0},
		{"rescue", world.LayoutStandard, 0},
		{"investigation", world.LayoutStandard, 0},
		{"unknown", world.LayoutHub, 0},
	}

	for _, tt := range tests {
		t.Run(tt.questType, func(t *testing.T) {
			spec := BuildMapSpec(Request{QuestType: tt.questType, Depth: 2, MaxDepth: 10})
			assert.Equal(t, tt.layout, spec.LayoutStyle)
			assert.Equal(t, tt.boss, spec.RequiredRooms.Boss)
			assert.True(t, spec.RequireStairsUp)
			assert.True(t, spec.RequireStairsDown)
		})
	}
}

func TestExplorationHasExtraArchetypes(t *testing.T) {
	explore := BuildMapSpec(Request{QuestType: "exploration", Depth: 1, MaxDepth: 5})
	rescue := BuildMapSpec(Request{QuestType: "rescue", Depth: 1, MaxDepth: 5})

	assert.Greater(t, explore.RequiredRooms.Treasure, rescue.RequiredRooms.Treasure)
	assert.Greater(t, explore.RequiredRooms.Special, rescue.RequiredRooms.Special)
}

func TestFinalFloorForcesBossAndLinear(t *testing.T) {
	for _, qt := range world.QuestTypes {
		t.Run(string(qt), func(t *testing.T) {
			req := Request{QuestType: string(qt), Depth: 10, MaxDepth: 10}
			require.True(t, IsFinalFloor(req))

			spec := BuildMapSpec(req)
			assert.Equal(t, world.LayoutLinear, spec.LayoutStyle)
			assert.GreaterOrEqual(t, spec.RequiredRooms.Boss, 1)

			hasBoss := false
			for _, e := range spec.QuestEvents {
				if e.EventType == "boss" && e.IsMandatory {
					hasBoss = true
				}
			}
			assert.True(t, hasBoss, "final floor should carry a mandatory boss event")
		})
	}
}

func TestDepthBeyondMaxIsFinal(t *testing.T) {
	// max_depth is raised to depth, so the floor is final
	req := Request{QuestType: "rescue", Depth: 14, MaxDepth: 3}
	assert.True(t, IsFinalFloor(req))
	assert.Equal(t, world.LayoutLinear, BuildMapSpec(req).LayoutStyle)
}

func TestSpecialEventsConverted(t *testing.T) {
	spec := BuildMapSpec(Request{
		QuestType: "rescue",
		Depth:     3,
		MaxDepth:  8,
		SpecialEvents: []SpecialEvent{
			{EventType: "Treasure", Name: "Dragon hoard"},
			{EventType: "trap", Name: "Spikes", IsMandatory: boolPtr(false)},
			{EventType: "ritual", Name: "Dark ritual", IsMandatory: boolPtr(true)},
		},
	})

	require.Len(t, spec.QuestEvents, 3)

	hoard := spec.QuestEvents[0]
	assert.Equal(t, "treasure", hoard.EventType)
	assert.Equal(t, "Dragon hoard", hoard.Title)
	assert.True(t, hoard.IsMandatory, "is_mandatory defaults to true")
	assert.Equal(t, []world.RoomType{world.RoomTreasure, world.RoomSpecial}, hoard.PreferredRoomTypes)

	spikes := spec.QuestEvents[1]
	assert.False(t, spikes.IsMandatory)
	assert.Equal(t, []world.RoomType{world.RoomCorridor, world.RoomNormal}, spikes.PreferredRoomTypes)

	assert.Nil(t, spec.QuestEvents[2].PreferredRoomTypes)
}

func TestDefaultEventsIncludeOptionalTrap(t *testing.T) {
	for _, qt := range world.QuestTypes {
		t.Run(string(qt), func(t *testing.T) {
			spec := BuildMapSpec(Request{QuestType: string(qt), Depth: 2, MaxDepth: 9})

			require.GreaterOrEqual(t, len(spec.QuestEvents), 2)
			require.LessOrEqual(t, len(spec.QuestEvents), 3)

			last := spec.QuestEvents[len(spec.QuestEvents)-1]
			assert.Equal(t, world.EventTrap, last.EventType)
			assert.False(t, last.IsMandatory)

			mandatory := 0
			for _, e := range spec.QuestEvents {
				if e.IsMandatory {
					mandatory++
				}
			}
			assert.GreaterOrEqual(t, mandatory, 1)
		})
	}
}

func TestPreferredRoomTypes(t *testing.T) {
	assert.Equal(t, []world.RoomType{world.RoomBoss}, PreferredRoomTypes("boss"))
	assert.Equal(t, []world.RoomType{world.RoomNormal, world.RoomCorridor, world.RoomSpecial}, PreferredRoomTypes("combat"))
	assert.Nil(t, PreferredRoomTypes("mystery"))
}

func TestThemeForDepth(t *testing.T) {
	assert.Equal(t, "stone", themeForDepth(1))
	assert.Equal(t, "moss", themeForDepth(4))
	assert.Equal(t, "ember", themeForDepth(9))
	assert.Equal(t, "abyss", themeForDepth(40))
}

func TestBuiltSpecsGenerateValidMaps(t *testing.T) {
	for _, qt := range world.QuestTypes {
		for depth := 1; depth <= 10; depth += 3 {
			req := Request{Seed: "builder-" + string(qt), QuestType: string(qt), Depth: depth, MaxDepth: 10, Width: 48, Height: 32}
			res := world.NewGenerator().Generate(context.Background(), BuildMapSpec(req))
			assert.True(t, res.Validation.OK, "%s depth %d: %v", qt, depth, res.Validation.Errors)
		}
	}
}

func TestBossFloorsOnNarrowMaps(t *testing.T) {
	gen := world.NewGenerator()
	for i := 0; i < 50; i++ {
		for _, req := range []Request{
			{QuestType: "boss_fight", Depth: 2, MaxDepth: 10},
			{QuestType: "rescue", Depth: 5, MaxDepth: 5},
		} {
			req.Seed = fmt.Sprintf("narrow-%s-%d", req.QuestType, i)
			req.Width, req.Height = 16, 16

			res := gen.Generate(context.Background(), BuildMapSpec(req))
			require.Equal(t, world.LayoutLinear, res.Spec.LayoutStyle)
			assert.True(t, res.Validation.OK, "%s: %v", req.Seed, res.Validation.Errors)
		}
	}
}
