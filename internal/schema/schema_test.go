package schema

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeSchema(t *testing.T, name string) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, name))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	return doc
}

// definition returns the object schema the document's root refers to.
func definition(t *testing.T, doc map[string]any, typeName string) map[string]any {
	t.Helper()
	defs, ok := doc["definitions"].(map[string]any)
	require.True(t, ok, "missing definitions: %v", doc)
	def, ok := defs[typeName].(map[string]any)
	require.True(t, ok, "missing definition %s in %v", typeName, defs)
	return def
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"apply-result", "generation-spec", "patch", "quest-request"}, Names())
}

func TestBuildUnknown(t *testing.T) {
	_, err := Build("nope")
	assert.EqualError(t, err, `unknown schema "nope"`)
}

func TestGenerationSpecSchema(t *testing.T) {
	doc := decodeSchema(t, "generation-spec")

	assert.Equal(t, "Generation Spec", doc["title"])
	assert.NotEmpty(t, doc["$schema"])

	props := definition(t, doc, "GenerationSpec")["properties"].(map[string]any)
	for _, field := range []string{"seed", "quest_type", "width", "height", "layout_style", "required_rooms", "quest_events"} {
		assert.Contains(t, props, field)
	}
}

func TestQuestRequestSchema(t *testing.T) {
	doc := decodeSchema(t, "quest-request")
	props := definition(t, doc, "Request")["properties"].(map[string]any)
	assert.Contains(t, props, "special_events")
	assert.Contains(t, props, "max_depth")
}

func TestApplyResultDescribesWireMap(t *testing.T) {
	doc := decodeSchema(t, "apply-result")

	m := definition(t, doc, "mapDocument")
	props := m["properties"].(map[string]any)
	tiles := props["tiles"].(map[string]any)
	assert.Equal(t, "object", tiles["type"], "tiles are keyed by x,y on the wire")
}

func TestWriteDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "schemas")
	require.NoError(t, WriteDir(dir))

	for _, name := range Names() {
		data, err := os.ReadFile(filepath.Join(dir, name+".schema.json"))
		require.NoError(t, err)
		assert.True(t, json.Valid(data), name)
	}
	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}
