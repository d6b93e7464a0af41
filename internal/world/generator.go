package world

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/questforge/internal/rng"
	"github.com/samdwyer/questforge/internal/telemetry"
)

const (
	// Room placement parameters
	minRoomSize          = 4
	maxRoomSize          = 8
	roomMargin           = 1
	minLinearGap         = 2
	maxLinearGap         = 4
	linearStep           = minRoomSize + minLinearGap
	placementAttemptsPer = 20

	// Connection parameters
	extraEdgeChance = 0.18

	// Door placement parameters
	doorChance  = 0.62
	maxDoorsCap = 18

	// Radius searched around an occupied target for a free floor tile.
	nudgeRadius = 3
)

// mapNamespace scopes deterministic map ids.
var mapNamespace = uuid.MustParse("6f1c7a52-3f0e-4f57-9d4e-8a3c1f6b2d90")

// Generator runs the generation pipeline. Counters live on the instance;
// Generate resets them so ids depend only on the seed.
type Generator struct {
	rng   *rng.RNG
	spec  GenerationSpec
	m     *Map
	rooms []Room

	roomCounter  int
	eventCounter int

	stairsUp   *Point
	stairsDown *Point
	events     []PlacedEvent
	spawn      Point
}

// NewGenerator creates a generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate normalizes raw and builds a complete level from it.
func (g *Generator) Generate(ctx context.Context, raw GenerationSpec) *GenerationResult {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "map.generate")
	defer span.End()

	startTime := time.Now()

	g.reset(raw)

	g.createEmptyMap()
	g.generateRooms()
	g.carveRooms()
	g.connectRooms()
	g.assignRoomTypes()
	g.ensureRoomTypeRequirements()
	g.retagRoomTiles()
	g.placeStairs()
	g.placeSpecialFeatures()
	g.placeQuestEvents()
	hints := g.buildMonsterHints()
	g.pickSpawn()

	validation := ValidateMap(g.m, g.spec, g.spawn)
	result := &GenerationResult{
		Seed:         g.rng.Seed(),
		SeedInput:    raw.Seed,
		Spec:         g.spec,
		Map:          g.m,
		Rooms:        append([]Room(nil), g.rooms...),
		Spawn:        g.spawn,
		Stairs:       Stairs{Up: g.stairsUp, Down: g.stairsDown},
		Events:       g.events,
		MonsterHints: hints,
		Validation:   validation,
		Metrics:      ComputeMetrics(g.m, len(g.rooms), len(g.events)),
		Hash:         HashMap(g.m),
		Version:      Version,
	}

	span.SetAttributes(
		attribute.String("map.seed_input", raw.Seed),
		attribute.Int64("map.seed", int64(result.Seed)),
		attribute.String("map.layout", string(g.spec.LayoutStyle)),
		attribute.Int("map.width", g.m.Width),
		attribute.Int("map.height", g.m.Height),
		attribute.Int("map.room_count", len(g.rooms)),
		attribute.Int("map.walkable_tiles", result.Metrics.WalkableTiles),
		attribute.Bool("map.valid", validation.OK),
		attribute.Int64("map.generation_ms", time.Since(startTime).Milliseconds()),
	)

	return result
}

// reset prepares the generator for a fresh run.
func (g *Generator) reset(raw GenerationSpec) {
	g.spec = NormalizeSpec(raw)
	g.rng = rng.FromString(raw.Seed)
	g.m = nil
	g.rooms = nil
	g.roomCounter = 0
	g.eventCounter = 0
	g.stairsUp = nil
	g.stairsDown = nil
	g.events = []PlacedEvent{}
	g.spawn = Point{}
}

// createEmptyMap allocates the full wall grid.
func (g *Generator) createEmptyMap() {
	g.m = NewMap(g.spec.Width, g.spec.Height)
	g.m.ID = uuid.NewSHA1(mapNamespace, []byte(strconv.FormatUint(uint64(g.rng.Seed()), 10)+"|"+g.spec.FloorTheme)).String()
	g.m.Name = g.spec.Title
	g.m.Description = g.spec.Description
	g.m.Depth = g.spec.Depth
	g.m.FloorTheme = g.spec.FloorTheme
}

func (g *Generator) nextRoomID() string {
	g.roomCounter++
	return fmt.Sprintf("room-%d", g.roomCounter)
}

func (g *Generator) nextEventID() string {
	g.eventCounter++
	return fmt.Sprintf("event-%d", g.eventCounter)
}

// entrance returns the entrance room. Room 0 is always the entrance.
func (g *Generator) entrance() Room {
	return g.rooms[0]
}

// firstRoomOfType returns the index of the first room with the archetype, or -1.
func (g *Generator) firstRoomOfType(rt RoomType) int {
	for i, r := range g.rooms {
		if r.Type == rt {
			return i
		}
	}
	return -1
}

// farthestRoomFrom returns the index of the room whose center is farthest
// from room idx. Ties keep the lowest index.
func (g *Generator) farthestRoomFrom(idx int) int {
	best, bestDist := idx, -1.0
	for i, r := range g.rooms {
		if i == idx {
			continue
		}
		if d := centerDistance(g.rooms[idx], r); d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
