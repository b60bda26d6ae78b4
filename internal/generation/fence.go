package generation

import (
	"regexp"
	"strings"
)

var (
	leadingFence  = regexp.MustCompile("\\A```[A-Za-z0-9_+.#-]*[ \\t]*(?:\\r?\\n|\\z)")
	trailingFence = regexp.MustCompile("(?:\\r?\\n|\\A)```[ \\t]*\\z")
)

// StripFences removes a markdown code fence (with optional language tag)
// wrapping s. It repeats until nothing changes, so it is idempotent.
func StripFences(s string) string {
	for {
		next := stripFenceOnce(s)
		if next == s {
			return next
		}
		s = next
	}
}

func stripFenceOnce(s string) string {
	s = strings.TrimSpace(s)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
