// Package viewer provides an interactive terminal preview of generated maps.
package viewer

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/questforge/internal/gamedata"
	"github.com/samdwyer/questforge/internal/patch"
	"github.com/samdwyer/questforge/internal/quest"
	"github.com/samdwyer/questforge/internal/telemetry"
	"github.com/samdwyer/questforge/internal/ui"
	"github.com/samdwyer/questforge/internal/world"
)

// Viewer holds the preview state.
type Viewer struct {
	screen   *ui.Screen
	renderer *ui.Renderer
	gen      *world.Generator

	request  quest.Request
	baseSeed string
	reseeds  int

	result  *world.GenerationResult
	current *world.Map
	patched *patch.ApplyResult
	marker  world.Point
	message string
	running bool
}

// New creates a viewer on the terminal for the given quest request.
func New(req quest.Request) (*Viewer, error) {
	screen, err := ui.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen, req), nil
}

// NewWithScreen creates a viewer on an already initialized screen.
func NewWithScreen(screen *ui.Screen, req quest.Request) *Viewer {
	return &Viewer{
		screen:   screen,
		renderer: ui.NewRenderer(screen, gamedata.MustLoadPalette()),
		gen:      world.NewGenerator(),
		request:  req,
		baseSeed: req.Seed,
		running:  true,
	}
}

// Run executes the main preview loop.
func (v *Viewer) Run(ctx context.Context) error {
	tracer := telemetry.Tracer("viewer")

	ctx, initSpan := tracer.Start(ctx, "viewer.init")
	v.generate(ctx)
	initSpan.SetAttributes(
		attribute.String("map.seed", v.result.SeedInput),
		attribute.Int("map.rooms", len(v.result.Rooms)),
	)
	initSpan.End()

	for v.running {
		v.render()
		v.handleInput(ctx)
	}

	v.screen.Close()
	return nil
}

// generate builds the map for the current seed and resets overlays.
func (v *Viewer) generate(ctx context.Context) {
	req := v.request
	req.Seed = v.seed()
	v.result = v.gen.Generate(ctx, quest.BuildMapSpec(req))
	v.current = v.result.Map
	v.patched = nil
	v.marker = v.result.Spawn

	v.message = fmt.Sprintf("seed %q  hash %s  valid %v", v.result.SeedInput, v.result.Hash, v.result.Validation.OK)
	if !v.result.Validation.OK {
		v.message += "  " + v.result.Validation.Errors[0]
	}
}

// seed returns the base seed, suffixed after each reseed.
func (v *Viewer) seed() string {
	if v.reseeds == 0 {
		return v.baseSeed
	}
	return fmt.Sprintf("%s-%d", v.baseSeed, v.reseeds)
}

func (v *Viewer) render() {
	r := v.result
	lines := []string{
		fmt.Sprintf("%s  [%s, %s, depth %d]  rooms %d  events %d",
			r.Spec.Title, r.Spec.QuestType, r.Spec.LayoutStyle, r.Spec.Depth, len(r.Rooms), len(r.Events)),
		v.message,
		"arrows: move  n: next seed  p: apply patches  q: quit",
	}
	v.renderer.Render(ui.View{
		Map:    v.current,
		Spawn:  v.marker,
		Spawns: r.MonsterHints.Spawns,
		Status: lines,
	})
}

// handleInput processes a single input event.
func (v *Viewer) handleInput(ctx context.Context) {
	ev := v.screen.PollEvent()

	switch ev := ev.(type) {
	case *tcell.EventKey:
		v.handleKey(ctx, ev.Key(), ev.Rune())
	case *tcell.EventResize:
		v.screen.Sync()
	case nil:
		// Screen finalized
		v.running = false
	}
}

// handleKey processes keyboard input.
func (v *Viewer) handleKey(ctx context.Context, key tcell.Key, ch rune) {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		v.running = false

	case tcell.KeyUp:
		v.tryMove(0, -1)
	case tcell.KeyDown:
		v.tryMove(0, 1)
	case tcell.KeyLeft:
		v.tryMove(-1, 0)
	case tcell.KeyRight:
		v.tryMove(1, 0)

	case tcell.KeyRune:
		switch ch {
		case 'q', 'Q':
			v.running = false
		case 'n', 'N':
			v.reseeds++
			v.generate(ctx)
		case 'p', 'P':
			v.applyPatches(ctx)
		}
	}
}

// applyPatches runs the simulated patch batch against the current map
// once per seed.
func (v *Viewer) applyPatches(ctx context.Context) {
	if v.patched != nil {
		v.message = "patches already applied; press n for a new seed"
		return
	}
	v.patched = patch.ApplyWithValidation(ctx, v.result.Map, v.result.Spec, v.result.Spawn, patch.CreateSimulatedPatches(v.result))
	v.current = v.patched.Map
	v.message = fmt.Sprintf("patches: %d accepted, %d rejected  hash %s  valid %v",
		len(v.patched.Accepted), len(v.patched.Rejected), v.patched.FinalHash, v.patched.FinalValidation.OK)
}

// tryMove attempts to move the marker by the given delta.
func (v *Viewer) tryMove(dx, dy int) {
	x, y := v.marker.X+dx, v.marker.Y+dy
	if v.current.IsWalkable(x, y) {
		v.marker = world.Point{X: x, Y: y}
	}
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	if v.screen != nil {
		v.screen.Close()
	}
}
