package strutil

import "strings"

// dashReplacer maps the dash look-alikes customers paste from phones and word
// processors onto ASCII '-'.
var dashReplacer = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"−", "-", // minus sign
)

// NormalizeDashes replaces unicode dash variants with ASCII hyphens.
func NormalizeDashes(s string) string {
	return dashReplacer.Replace(s)
}
