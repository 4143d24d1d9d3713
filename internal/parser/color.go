package parser

import (
	"regexp"
	"strings"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Default tag colours per list name. Unknown lists are gray.
var listColors = map[string]string{
	"personal":  "#FF3B30",
	"work":      "#007AFF",
	"list 1":    "#FFCC00",
	"shopping":  "#34C759",
	"important": "#FF9500",
}

// DefaultListColor is used for lists without a dedicated colour
const DefaultListColor = "#8E8E93"

// ColorForList returns the tag colour for a list, "" when name is blank
func ColorForList(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	if c, ok := listColors[name]; ok {
		return c
	}
	return DefaultListColor
}

// IsHexColor reports whether s looks like #RRGGBB
func IsHexColor(s string) bool {
	return hexColorRegex.MatchString(s)
}
