package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseNumber converts a locale-ambiguous decimal string into a float.
// Exports mix separator conventions: the decimal point may be "." or ","
// and "." may also appear as a thousands separator. When more than one
// "." is present, all but the last are treated as thousands separators
// and removed; any remaining "," becomes the decimal point. An empty or
// blank string parses as 0.
func ParseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}

	s = stripThousands(s)
	s = strings.ReplaceAll(s, ",", ".")
	s = stripThousands(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value %q", raw)
	}
	return v, nil
}

// stripThousands removes every "." except the last when the string holds
// more than one, so "1.234.567" collapses to "1234567" with any final
// fractional part preserved.
func stripThousands(s string) string {
	if strings.Count(s, ".") < 2 {
		return s
	}
	last := strings.LastIndex(s, ".")
	return strings.ReplaceAll(s[:last], ".", "") + s[last:]
}
