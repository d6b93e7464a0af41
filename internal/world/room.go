package world

import "math"

// RoomType is a room archetype. RoomCorridor only ever tags tiles.
type RoomType string

const (
	RoomEntrance RoomType = "entrance"
	RoomNormal   RoomType = "normal"
	RoomBoss     RoomType = "boss"
	RoomTreasure RoomType = "treasure"
	RoomSpecial  RoomType = "special"
	RoomCorridor RoomType = "corridor"
)

// Room represents a rectangular room in the map.
type Room struct {
	ID     string   `json:"id"`
	X      int      `json:"x"` // Top-left corner position
	Y      int      `json:"y"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Type   RoomType `json:"type"`
}

// Center returns the center coordinates of the room.
func (r Room) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// CenterPoint returns the room center as a Point.
func (r Room) CenterPoint() Point {
	x, y := r.Center()
	return Point{X: x, Y: y}
}

// Contains returns true if the given point is inside the room.
func (r Room) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// IntersectsWithMargin returns true if the rooms overlap once both are grown
// by margin tiles, so a margin of 1 also rejects rooms that share an edge.
func (r Room) IntersectsWithMargin(other Room, margin int) bool {
	return r.X-margin < other.X+other.Width &&
		r.X+r.Width+margin > other.X &&
		r.Y-margin < other.Y+other.Height &&
		r.Y+r.Height+margin > other.Y
}

// centerDistance is the Euclidean distance between two room centers.
func centerDistance(a, b Room) float64 {
	ax, ay := a.Center()
	bx, by := b.Center()
	return math.Hypot(float64(ax-bx), float64(ay-by))
}
