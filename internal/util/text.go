package util

import (
	"fmt"
	"strings"
)

// MakeHeadersUnique keeps the first occurrence of every header and suffixes
// later repeats with a running per-text counter: "A", "A" -> "A", "A_1".
// A suffixed name that is already a header somewhere in the row is skipped,
// so "A", "A", "A_1" becomes "A", "A_2", "A_1".
func MakeHeadersUnique(headers []string) []string {
	raw := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		raw[h] = struct{}{}
	}

	used := make(map[string]struct{}, len(headers))
	counters := map[string]int{}
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		if _, dup := used[h]; !dup {
			used[h] = struct{}{}
			out = append(out, h)
			continue
		}
		n := counters[h]
		var name string
		for {
			n++
			name = fmt.Sprintf("%s_%d", h, n)
			_, isRaw := raw[name]
			_, isUsed := used[name]
			if !isRaw && !isUsed {
				break
			}
		}
		counters[h] = n
		used[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// IsValidCode reports whether an identifier cell carries a usable value.
func IsValidCode(value string) bool {
	v := strings.TrimSpace(value)
	return v != "" && v != "-"
}
