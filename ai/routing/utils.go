package routing

import (
	"strings"

	"github.com/hrygo/shopdesk/ai/filter"
	"github.com/hrygo/shopdesk/ai/internal/strutil"
)

// truncate shortens customer text for logging, masking contact details first.
func truncate(s string, maxLen int) string {
	return strutil.Truncate(filter.Redact(s), maxLen)
}

// firstContained returns the first pattern found in s.
func firstContained(s string, patterns []string) (string, bool) {
	for _, p := range patterns {
		if p != "" && strings.Contains(s, p) {
			return p, true
		}
	}
	return "", false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}
