// Package strutil provides string helpers shared by the ai packages.
package strutil

// Truncate shortens s to maxLen runes and appends "..." when something was cut.
// Returns empty string if maxLen <= 0.
func Truncate(s string, maxLen int) string {
	if s == "" || maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
