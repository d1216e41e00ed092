package extractor

import "strings"

// contextWindow bounds how far evidence extraction looks on each side of a
// reference site.
const contextWindow = 20

// extractContext returns a short human-readable snippet around a reference
// site for report evidence. Boundary trimming is byte-level on whitespace
// and punctuation only; no tokenizer.
func extractContext(source []byte, start, end uint32) string {
	lo := int(start)
	hi := int(end)
	if lo > len(source) {
		lo = len(source)
	}
	if hi > len(source) {
		hi = len(source)
	}

	windowLo := lo - contextWindow
	if windowLo < 0 {
		windowLo = 0
	}
	windowHi := hi + contextWindow
	if windowHi > len(source) {
		windowHi = len(source)
	}

	contextStart := 0
	for i := windowLo - 1; i >= 0; i-- {
		if isBoundaryByte(source[i], true) {
			contextStart = i + 1
			break
		}
	}
	if windowLo == 0 {
		contextStart = 0
	}

	contextEnd := len(source)
	for i := windowHi; i < len(source); i++ {
		if isBoundaryByte(source[i], false) {
			contextEnd = i
			break
		}
	}
	if windowHi == len(source) {
		contextEnd = len(source)
	}

	return strings.TrimSpace(string(source[contextStart:contextEnd]))
}

func isBoundaryByte(b byte, leading bool) bool {
	switch b {
	case ' ', '\t', '\n', ';', '{':
		return true
	case ')':
		return leading
	case '}':
		return !leading
	}
	return false
}
