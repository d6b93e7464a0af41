// Package gamedata holds the embedded data generation runs on: the
// reliability scenario library, encounter profiles per quest type and the
// terminal palette.
package gamedata

import "embed"

//go:embed scenarios.json encounters.json palette.json
var dataFS embed.FS
