// Package schema builds JSON Schema documents for the objects questforge
// exchanges with callers.
package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/samdwyer/questforge/internal/patch"
	"github.com/samdwyer/questforge/internal/quest"
	"github.com/samdwyer/questforge/internal/world"
)

// mapDocument describes world.Map as it appears on the wire, with tiles
// keyed by "x,y" rather than the in-memory grid.
type mapDocument struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Width       int                   `json:"width" jsonschema:"minimum=16,maximum=80"`
	Height      int                   `json:"height" jsonschema:"minimum=16,maximum=80"`
	Depth       int                   `json:"depth" jsonschema:"minimum=1"`
	FloorTheme  string                `json:"floor_theme"`
	Tiles       map[string]world.Tile `json:"tiles" jsonschema:"description=Every tile of the grid keyed by its coordinates"`
}

type applyResultDocument struct {
	Map             *mapDocument      `json:"map"`
	Accepted        []patch.Patch     `json:"accepted"`
	Rejected        []patch.Rejection `json:"rejected"`
	FinalValidation world.Validation  `json:"final_validation"`
	FinalHash       string            `json:"final_hash"`
}

type document struct {
	title       string
	description string
	value       any
}

var documents = map[string]document{
	"quest-request": {
		title:       "Quest Request",
		description: "Quest parameters from the game layer, turned into a generation spec.",
		value:       new(quest.Request),
	},
	"generation-spec": {
		title:       "Generation Spec",
		description: "Full parameter set for one map generation. Out-of-range values are clamped.",
		value:       new(world.GenerationSpec),
	},
	"patch": {
		title:       "Map Patch",
		description: "A single incremental edit proposed against a generated map.",
		value:       new(patch.Patch),
	},
	"apply-result": {
		title:       "Patch Apply Result",
		description: "Patched map with accepted and rejected patches and the final validation.",
		value:       new(applyResultDocument),
	},
}

// Names lists the available documents in sorted order.
func Names() []string {
	names := make([]string, 0, len(documents))
	for name := range documents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build reflects the named document.
func Build(name string) (*jsonschema.Schema, error) {
	doc, ok := documents[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	s := reflector.Reflect(doc.value)
	s.Title = doc.title
	s.Description = doc.description
	return s, nil
}

// Write encodes the named document as indented JSON.
func Write(w io.Writer, name string) error {
	s, err := Build(name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteDir writes every document to dir as <name>.schema.json.
func WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	for _, name := range Names() {
		outPath := filepath.Join(dir, name+".schema.json")
		tmpPath := outPath + ".tmp"

		f, err := os.Create(tmpPath)
		if err != nil {
			return fmt.Errorf("write temp schema: %w", err)
		}
		if err := Write(f, name); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		if err := os.Rename(tmpPath, outPath); err != nil {
			return fmt.Errorf("replace schema: %w", err)
		}
	}
	return nil
}
