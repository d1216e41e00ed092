package analyzer

import "strings"

// namingMarkers map abandonment vocabulary to a score in [0, 0.2], the cap
// on the pre-weighting naming boost. The first match wins, strongest
// markers first.
var namingMarkers = []struct {
	marker string
	score  float64
}{
	{"deprecated", 0.2},
	{"obsolete", 0.2},
	{"legacy", 0.16},
	{"unused", 0.16},
	{"old", 0.1},
	{"backup", 0.1},
	{"tmp", 0.06},
	{"temp", 0.06},
}

// namingScore rates how loudly a symbol's own name announces abandonment.
func namingScore(name string) float64 {
	lower := strings.ToLower(name)
	for _, m := range namingMarkers {
		if strings.Contains(lower, m.marker) {
			return m.score
		}
	}
	return 0
}
