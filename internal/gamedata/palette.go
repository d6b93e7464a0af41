package gamedata

import "github.com/gdamore/tcell/v2"

// GlyphStyle is a display character and its colour.
type GlyphStyle struct {
	Glyph string `json:"glyph"` // Single character for rendering (e.g., "#")
	Color string `json:"color"` // Hex color code (e.g., "#5A5A5A")
}

// GlyphRune returns the glyph as a rune for rendering.
func (g *GlyphStyle) GlyphRune() rune {
	if len(g.Glyph) == 0 {
		return '?'
	}
	return []rune(g.Glyph)[0]
}

// TCellColor returns the color as a tcell.Color.
func (g *GlyphStyle) TCellColor() tcell.Color {
	color, err := ParseHexColor(g.Color)
	if err != nil {
		return tcell.ColorWhite // fallback
	}
	return color
}

// TerrainStyle binds a terrain name to its glyph style.
type TerrainStyle struct {
	Terrain string `json:"terrain"`
	GlyphStyle
}

// PaletteFile represents the structure of palette.json.
type PaletteFile struct {
	Terrain []TerrainStyle        `json:"terrain"`
	Markers map[string]GlyphStyle `json:"markers"`
}

// LoadPalette loads the terrain palette from the embedded palette.json file.
func LoadPalette() (PaletteFile, error) {
	file, err := Load[PaletteFile]("palette.json")
	if err != nil {
		return file, err
	}
	return file, file.ValidateColors()
}
