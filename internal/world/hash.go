package world

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// HashMap digests tile content only: dimensions, theme and each tile's
// (terrain, room type, event type) in sorted key order. Two maps with the
// same content hash equal regardless of how they were built.
func HashMap(m *Map) string {
	d := xxhash.New()
	if m == nil {
		return fmt.Sprintf("%016x", d.Sum64())
	}
	_, _ = fmt.Fprintf(d, "%dx%d|%s|", m.Width, m.Height, m.FloorTheme)

	keys := make([]string, 0, m.TileCount())
	m.Each(func(t *Tile) {
		keys = append(keys, Key(t.X, t.Y))
	})
	sort.Strings(keys)

	for _, key := range keys {
		t := m.TileByKey(key)
		_, _ = d.WriteString(key)
		_, _ = d.WriteString("=")
		_, _ = d.WriteString(string(t.Terrain))
		_, _ = d.WriteString(",")
		_, _ = d.WriteString(string(t.RoomType))
		_, _ = d.WriteString(",")
		_, _ = d.WriteString(t.EventType)
		_, _ = d.WriteString(";")
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

// ComputeMetrics summarizes room, tile and event counts.
func ComputeMetrics(m *Map, roomCount, eventCount int) Metrics {
	metrics := Metrics{RoomCount: roomCount, EventCount: eventCount}
	if m == nil {
		return metrics
	}
	m.Each(func(t *Tile) {
		if t.IsWalkable() {
			metrics.WalkableTiles++
		}
		switch t.Terrain {
		case TerrainStairsUp:
			metrics.HasStairsUp = true
		case TerrainStairsDown:
			metrics.HasStairsDown = true
		}
	})
	if total := m.TileCount(); total > 0 {
		metrics.WalkableRatio = float64(metrics.WalkableTiles) / float64(total)
	}
	return metrics
}
