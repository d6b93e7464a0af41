package world

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MaxDimension bounds map width and height.
const MaxDimension = 80

// Point is a tile coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key returns the point's "x,y" tile key.
func (p Point) Key() string {
	return Key(p.X, p.Y)
}

// Key formats a tile key.
func Key(x, y int) string {
	return strconv.Itoa(x) + "," + strconv.Itoa(y)
}

// ParseKey parses an "x,y" key and checks it lies inside a width×height grid.
// Only the exact form Key produces is accepted, so each tile has one key.
func ParseKey(key string, width, height int) (Point, error) {
	xs, ys, ok := strings.Cut(key, ",")
	if !ok {
		return Point{}, fmt.Errorf("malformed tile key %q", key)
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return Point{}, fmt.Errorf("malformed tile key %q: %w", key, err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return Point{}, fmt.Errorf("malformed tile key %q: %w", key, err)
	}
	if Key(x, y) != key {
		return Point{}, fmt.Errorf("tile key %q is not canonical, want %q", key, Key(x, y))
	}
	if x < 0 || x >= width || y < 0 || y >= height {
		return Point{}, fmt.Errorf("tile key %q outside %dx%d map", key, width, height)
	}
	return Point{X: x, Y: y}, nil
}

// Map is a dense tile grid. Tiles are indexed [y][x]; externally the grid is
// exchanged as an object keyed by "x,y".
type Map struct {
	ID          string
	Name        string
	Description string
	Width       int
	Height      int
	Depth       int
	FloorTheme  string
	Tiles       [][]Tile
}

// NewMap creates a map filled with walls.
func NewMap(width, height int) *Map {
	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			tiles[y][x] = wallTile(x, y)
		}
	}

	return &Map{
		Width:  width,
		Height: height,
		Depth:  1,
		Tiles:  tiles,
	}
}

// InBounds returns true if the coordinates lie on the map.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// TileAt returns the tile at the given position, or nil when out of bounds.
func (m *Map) TileAt(x, y int) *Tile {
	if !m.InBounds(x, y) {
		return nil
	}
	return &m.Tiles[y][x]
}

// TileByKey resolves an "x,y" key, returning nil for malformed or unknown keys.
func (m *Map) TileByKey(key string) *Tile {
	p, err := ParseKey(key, m.Width, m.Height)
	if err != nil {
		return nil
	}
	return m.TileAt(p.X, p.Y)
}

// IsWalkable returns true if the given position can be walked on.
func (m *Map) IsWalkable(x, y int) bool {
	t := m.TileAt(x, y)
	return t != nil && t.IsWalkable()
}

// TileCount returns the number of tiles in the grid.
func (m *Map) TileCount() int {
	n := 0
	for _, row := range m.Tiles {
		n += len(row)
	}
	return n
}

// Each calls fn for every tile in row-major order.
func (m *Map) Each(fn func(t *Tile)) {
	for y := range m.Tiles {
		for x := range m.Tiles[y] {
			fn(&m.Tiles[y][x])
		}
	}
}

// Clone returns a deep structural copy of the map.
func (m *Map) Clone() *Map {
	c := *m
	c.Tiles = make([][]Tile, len(m.Tiles))
	for y, row := range m.Tiles {
		c.Tiles[y] = make([]Tile, len(row))
		for x, t := range row {
			c.Tiles[y][x] = t.clone()
		}
	}
	return &c
}

// neighbors4 returns the in-bounds orthogonal neighbours of (x,y).
func (m *Map) neighbors4(x, y int) []*Tile {
	out := make([]*Tile, 0, 4)
	for _, d := range [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}} {
		if t := m.TileAt(x+d[0], y+d[1]); t != nil {
			out = append(out, t)
		}
	}
	return out
}

type mapJSON struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	Depth       int              `json:"depth"`
	FloorTheme  string           `json:"floor_theme"`
	Tiles       map[string]*Tile `json:"tiles"`
}

// MarshalJSON encodes the grid as an object keyed by "x,y".
func (m *Map) MarshalJSON() ([]byte, error) {
	out := mapJSON{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Width:       m.Width,
		Height:      m.Height,
		Depth:       m.Depth,
		FloorTheme:  m.FloorTheme,
		Tiles:       make(map[string]*Tile, m.TileCount()),
	}
	m.Each(func(t *Tile) {
		out.Tiles[Key(t.X, t.Y)] = t
	})
	return json.Marshal(out)
}

// UnmarshalJSON decodes a keyed tile object. Coordinates missing from the
// input are filled with walls so the grid is never sparse.
func (m *Map) UnmarshalJSON(data []byte) error {
	var in mapJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Width < 1 || in.Width > MaxDimension || in.Height < 1 || in.Height > MaxDimension {
		return fmt.Errorf("map dimensions %dx%d outside 1..%d", in.Width, in.Height, MaxDimension)
	}

	decoded := NewMap(in.Width, in.Height)
	for key, tile := range in.Tiles {
		p, err := ParseKey(key, in.Width, in.Height)
		if err != nil {
			return err
		}
		if tile == nil {
			continue
		}
		t := tile.clone()
		t.X, t.Y = p.X, p.Y
		if t.Terrain == "" {
			t.Terrain = TerrainWall
		}
		decoded.Tiles[p.Y][p.X] = t
	}

	decoded.ID = in.ID
	decoded.Name = in.Name
	decoded.Description = in.Description
	decoded.Depth = in.Depth
	decoded.FloorTheme = in.FloorTheme
	*m = *decoded
	return nil
}
