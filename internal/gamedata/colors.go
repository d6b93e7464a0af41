package gamedata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// ParseHexColor converts "#RRGGBB", "RRGGBB" or the "#RGB" shorthand to a
// tcell.Color.
func ParseHexColor(hex string) (tcell.Color, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	if len(digits) != 6 {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color %q: want 3 or 6 digits", hex)
	}

	rgb, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return tcell.NewHexColor(int32(rgb)), nil
}

// ValidateColors reports every palette entry whose colour does not parse.
func (f PaletteFile) ValidateColors() error {
	var bad []string
	for _, t := range f.Terrain {
		if _, err := ParseHexColor(t.Color); err != nil {
			bad = append(bad, "terrain "+t.Terrain)
		}
	}
	for name, m := range f.Markers {
		if _, err := ParseHexColor(m.Color); err != nil {
			bad = append(bad, "marker "+name)
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("palette has invalid colours: %s", strings.Join(bad, ", "))
	}
	return nil
}
