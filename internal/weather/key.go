package weather

import (
	"regexp"
	"strings"
)

// KeyPrefix namespaces weather entries in a cache shared with other users.
const KeyPrefix = "weather_"

// whitespaceRun matches ASCII and Unicode whitespace (NBSP, ideographic
// space, BOM, ...); RE2's \s alone is ASCII only.
var whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)

// NormalizeKey maps a raw location to its cache key: lowercased, every
// whitespace run collapsed to a single underscore, prefixed with KeyPrefix.
func NormalizeKey(location string) string {
	return KeyPrefix + whitespaceRun.ReplaceAllString(strings.ToLower(location), "_")
}
