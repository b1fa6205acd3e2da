package parser

import (
	"regexp"
	"strings"
)

var addressPattern = regexp.MustCompile(`0x[a-fA-F0-9]{40}`)

// MatchKeyword returns the longest keyword contained in text, compared case-insensitively.
// Examples:
//   - MatchKeyword("Get me a QUOTE", "quote", "price") -> "quote", true
//   - MatchKeyword("hello", "quote") -> "", false
func MatchKeyword(text string, keywords ...string) (string, bool) {
	lower := strings.ToLower(text)

	best := ""
	for _, keyword := range keywords {
		if keyword == "" || !strings.Contains(lower, strings.ToLower(keyword)) {
			continue
		}
		if len(keyword) > len(best) {
			best = keyword
		}
	}
	return best, best != ""
}

// ContainsAny reports whether text contains at least one keyword
func ContainsAny(text string, keywords ...string) bool {
	_, ok := MatchKeyword(text, keywords...)
	return ok
}

// FindAddress returns the first 0x-prefixed 40-hex-character address in text
func FindAddress(text string) (string, bool) {
	addr := addressPattern.FindString(text)
	return addr, addr != ""
}

// HasAddress reports whether text contains an EVM address
func HasAddress(text string) bool {
	return addressPattern.MatchString(text)
}

// ShortHash truncates an order hash for display
func ShortHash(hash string, n int) string {
	if len(hash) <= n {
		return hash
	}
	return hash[:n] + "..."
}
