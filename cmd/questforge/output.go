package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samdwyer/questforge/internal/world"
)

// withOutput runs write against path, or stdout when path is empty.
func withOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// summarize converts a result into a generic document keyed by the JSON
// field names, replacing the tile object with text rows so the YAML stays
// readable.
func summarize(res *world.GenerationResult) (map[string]any, error) {
	trimmed := *res
	trimmed.Map = nil

	data, err := json.Marshal(trimmed)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	delete(doc, "map")
	doc["layout"] = asciiRows(res)
	return doc, nil
}

// asciiRows draws the map one string per row, with events as '!' and the
// spawn as '@'.
func asciiRows(res *world.GenerationResult) []string {
	m := res.Map
	if m == nil {
		return nil
	}
	rows := make([]string, m.Height)
	for y := 0; y < m.Height; y++ {
		var b strings.Builder
		for x := 0; x < m.Width; x++ {
			t := m.TileAt(x, y)
			switch {
			case res.Spawn.X == x && res.Spawn.Y == y:
				b.WriteRune('@')
			case t.HasEvent:
				b.WriteRune('!')
			default:
				b.WriteRune(t.Terrain.Rune())
			}
		}
		rows[y] = b.String()
	}
	return rows
}

func writeText(w io.Writer, res *world.GenerationResult) error {
	s := res.Spec
	fmt.Fprintf(w, "%s  [%s, %s, depth %d/%d, %s]\n", s.Title, s.QuestType, s.LayoutStyle, s.Depth, s.MaxDepth, s.FloorTheme)
	fmt.Fprintf(w, "seed %q (%d)  hash %s  version %s\n", res.SeedInput, res.Seed, res.Hash, res.Version)
	fmt.Fprintf(w, "rooms %d  events %d  walkable %d (%.0f%%)  encounters %d %s\n",
		res.Metrics.RoomCount, res.Metrics.EventCount, res.Metrics.WalkableTiles,
		res.Metrics.WalkableRatio*100, res.MonsterHints.EncounterCount, res.MonsterHints.Difficulty)
	for _, row := range asciiRows(res) {
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	for _, e := range res.Validation.Errors {
		fmt.Fprintf(w, "error: %s\n", e)
	}
	for _, warn := range res.Validation.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	return nil
}
