package util

import (
	"math"
	"strconv"
	"strings"
)

// ZeroCoordinate is returned for both halves of a coordinate pair that could
// not be read.
const ZeroCoordinate = "0.0"

// ParseCoordinates splits a free-form "lat,lon" cell into two canonical decimal
// strings. Separators are tried in order: comma, ". ", whitespace. ok is false
// whenever the zero pair was substituted.
func ParseCoordinates(input string) (lat, lon string, ok bool) {
	s := strings.TrimSpace(input)
	if s == "" || s == "0" {
		return ZeroCoordinate, ZeroCoordinate, false
	}

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		parts = strings.Split(s, ". ")
		if len(parts) != 2 {
			parts = strings.Fields(s)
			if len(parts) != 2 {
				return ZeroCoordinate, ZeroCoordinate, false
			}
		}
	}

	latV, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return ZeroCoordinate, ZeroCoordinate, false
	}
	lonV, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return ZeroCoordinate, ZeroCoordinate, false
	}
	if math.IsNaN(latV) || math.IsNaN(lonV) || latV < -90 || latV > 90 || lonV < -180 || lonV > 180 {
		return ZeroCoordinate, ZeroCoordinate, false
	}

	return FormatDecimal(latV), FormatDecimal(lonV), true
}

// FormatDecimal renders the shortest decimal form of v and always keeps a
// fractional part, so 1 becomes "1.0" and 1.230 becomes "1.23".
func FormatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
