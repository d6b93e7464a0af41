package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/questforge/internal/gamedata"
	"github.com/samdwyer/questforge/internal/world"
)

// View is everything the renderer draws in one frame.
type View struct {
	Map    *world.Map
	Spawn  world.Point
	Spawns []world.MonsterSpawn
	Status []string
}

// Renderer handles drawing a generated map to the screen.
type Renderer struct {
	screen  *Screen
	palette *gamedata.Palette
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen, palette *gamedata.Palette) *Renderer {
	return &Renderer{screen: screen, palette: palette}
}

// Render draws terrain, then event and monster markers, then the spawn
// marker, then the status lines below the map.
func (r *Renderer) Render(v View) {
	r.screen.Clear()
	if v.Map == nil {
		r.renderStatus(v.Status, 0)
		r.screen.Show()
		return
	}

	for y := 0; y < v.Map.Height; y++ {
		for x := 0; x < v.Map.Width; x++ {
			tile := v.Map.TileAt(x, y)
			r.screen.SetContent(x, y, r.terrainRune(tile.Terrain), r.terrainStyle(tile.Terrain))
		}
	}

	v.Map.Each(func(t *world.Tile) {
		if t.HasEvent {
			r.drawMarker(t.X, t.Y, "event")
		}
	})

	for _, s := range v.Spawns {
		marker := "monster"
		if s.Kind == world.SpawnBoss {
			marker = "boss"
		}
		r.drawMarker(s.X, s.Y, marker)
	}

	r.drawMarker(v.Spawn.X, v.Spawn.Y, "spawn")

	r.renderStatus(v.Status, v.Map.Height+1)
	r.screen.Show()
}

func (r *Renderer) renderStatus(lines []string, y int) {
	for i, line := range lines {
		r.RenderMessage(line, y+i)
	}
}

func (r *Renderer) drawMarker(x, y int, name string) {
	style, ok := r.palette.Marker(name)
	if !ok {
		return
	}
	r.screen.SetContent(x, y, style.GlyphRune(), tcell.StyleDefault.Foreground(style.TCellColor()).Bold(true))
}

// terrainRune returns the palette glyph, falling back to the terrain's
// built-in rune.
func (r *Renderer) terrainRune(t world.Terrain) rune {
	if style := r.palette.Terrain(string(t)); style != nil {
		return style.GlyphRune()
	}
	return t.Rune()
}

// terrainStyle returns the appropriate style for a terrain.
func (r *Renderer) terrainStyle(t world.Terrain) tcell.Style {
	if style := r.palette.Terrain(string(t)); style != nil {
		return tcell.StyleDefault.Foreground(style.TCellColor())
	}
	switch t {
	case world.TerrainWall:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	case world.TerrainFloor:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	default:
		return tcell.StyleDefault
	}
}

// RenderMessage displays a message on the given row.
func (r *Renderer) RenderMessage(msg string, y int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, ch := range []rune(msg) {
		r.screen.SetContent(i, y, ch, style)
	}
}
