package agentgraph

import "strings"

// Normalize converts a raw node identifier to its canonical slug.
//
// Surrounding whitespace is trimmed, the rest is lower-cased, and every
// run of characters outside [a-z0-9] becomes a single underscore:
//
//	Normalize("Step 1")   // "step_1"
//	Normalize("Step 2!!") // "step_2_"
//
// Normalize is idempotent. An empty or all-whitespace input yields "".
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			b.WriteByte('_')
			inRun = true
		}
	}
	return b.String()
}

// IsCanonical reports whether id is a non-empty, already normalized slug.
func IsCanonical(id string) bool {
	return id != "" && Normalize(id) == id
}

// looseKey is the slug with surrounding underscores removed. Repair uses it
// to resolve references such as "step_2" to a node whose slug is "step_2_".
func looseKey(id string) string {
	return strings.Trim(Normalize(id), "_")
}
