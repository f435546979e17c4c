package utils

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// ParseHexColor parses a hex color string (like "#5865F2") into an integer for Discord embeds.
// Returns the default blurple color if parsing fails.
func ParseHexColor(hexColor string) int {
	const fallback = 0x5865F2
	if hexColor == "" {
		return fallback
	}

	hexColor = strings.TrimPrefix(hexColor, "#")
	colorInt, err := strconv.ParseInt(hexColor, 16, 64)
	if err != nil || colorInt < 0 || colorInt > 0xFFFFFF {
		log.Warn().Err(err).Str("color", hexColor).Msg("Failed to parse hex color")
		return fallback
	}

	return int(colorInt)
}
