package util

import "strings"

const (
	// LegacyTimestampSentinel is what downstream consumers of the POS exports
	// have always received for a missing date. Day-first on purpose.
	LegacyTimestampSentinel = "31-12-9999"
	ISOTimestampSentinel    = "9999-12-31"
)

// FormatTimestamp rewrites a DD/MM/YYYY (or DD-MM-YYYY) cell as YYYY-MM-DD,
// padding day and month to two digits and year to four. Anything else yields
// sentinel and ok=false.
func FormatTimestamp(input, sentinel string) (string, bool) {
	s := strings.TrimSpace(input)
	if s == "" || s == "-" {
		return sentinel, false
	}

	parts := strings.Split(strings.ReplaceAll(s, "-", "/"), "/")
	if len(parts) != 3 {
		return sentinel, false
	}
	day, month, year := parts[0], parts[1], parts[2]
	return zeroFill(year, 4) + "-" + zeroFill(month, 2) + "-" + zeroFill(day, 2), true
}

func zeroFill(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
