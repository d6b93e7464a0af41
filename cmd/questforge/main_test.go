package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/questforge/internal/quest"
	"github.com/samdwyer/questforge/internal/world"
)

func TestRequestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
seed: from-file
quest_type: rescue
depth: 3
special_events:
  - event_type: rescue
    name: Captive scholar
`), 0644))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	request := requestFlags(fs)
	require.NoError(t, fs.Parse([]string{"-request", path, "-depth", "5", "-width", "40"}))

	req, err := request()
	require.NoError(t, err)
	assert.Equal(t, "from-file", req.Seed)
	assert.Equal(t, "rescue", req.QuestType)
	assert.Equal(t, 5, req.Depth)
	assert.Equal(t, 40, req.Width)
	require.Len(t, req.SpecialEvents, 1)
	assert.Equal(t, "Captive scholar", req.SpecialEvents[0].Name)
}

func TestRequestFlagsReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"seed":"42","quest_type":"boss_fight","depth":2,"max_depth":2}`), 0644))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	request := requestFlags(fs)
	require.NoError(t, fs.Parse([]string{"-request", path}))

	req, err := request()
	require.NoError(t, err)
	assert.Equal(t, quest.Request{Seed: "42", QuestType: "boss_fight", Depth: 2, MaxDepth: 2}, req)
}

func TestWriteTextAndSummary(t *testing.T) {
	res := world.NewGenerator().Generate(context.Background(), quest.BuildMapSpec(quest.Request{Seed: "cli", QuestType: "exploration", Depth: 1}))

	var buf bytes.Buffer
	require.NoError(t, writeText(&buf, res))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 3+res.Map.Height)
	assert.Contains(t, lines[1], res.Hash)

	rows := asciiRows(res)
	require.Len(t, rows, res.Map.Height)
	assert.Equal(t, '@', []rune(rows[res.Spawn.Y])[res.Spawn.X])
	for _, row := range rows {
		assert.Len(t, row, res.Map.Width)
	}

	doc, err := summarize(res)
	require.NoError(t, err)
	assert.NotContains(t, doc, "map")
	assert.Equal(t, res.Hash, doc["hash"])
	assert.Equal(t, rows, doc["layout"])
}

func TestRunUnknownCommand(t *testing.T) {
	t.Setenv("QUESTFORGE_TELEMETRY", "false")
	t.Setenv("QUESTFORGE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, 2, run([]string{"bogus"}))
	assert.Equal(t, 2, run(nil))
}

func TestRunSchemaCommand(t *testing.T) {
	t.Setenv("QUESTFORGE_TELEMETRY", "false")
	t.Setenv("QUESTFORGE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	dir := filepath.Join(t.TempDir(), "schemas")
	assert.Equal(t, 0, run([]string{"schema", "-out", dir}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}
