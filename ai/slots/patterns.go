package slots

import (
	"regexp"
	"sync"
)

// All patterns run against lower-cased text. Go's \s and \b only know ASCII, so
// space and word boundaries are spelled out to cover no-break spaces and accented letters.
const (
	space    = `[\s\p{Z}]`
	nonSpace = `[^\s\p{Z}]`
	// wordStart and wordEnd stand in for \b around a match that starts and ends with a word rune.
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{N}_])`
)

var (
	// priceCeilingPattern matches "under $120", "under$ 120".
	priceCeilingPattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(`under` + space + `*\$` + space + `*(\d+)`)
	})

	sizeHintPattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(wordStart + `(size|sz)` + space + `*(m|l)` + wordEnd)
	})

	postalCodePattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(`eta` + space + `*to` + space + `*(\d{5,6})`)
	})

	orderIDPattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(`cancel` + space + `+order` + space + `+([a-z0-9-]+)`)
	})

	emailPattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(`email` + space + `+(` + nonSpace + `+)`)
	})
)

// tagPatterns caches one whole-word pattern per vocabulary tag.
var tagPatterns sync.Map // string -> *regexp.Regexp

func tagPattern(tag string) *regexp.Regexp {
	if re, ok := tagPatterns.Load(tag); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(wordStart + regexp.QuoteMeta(tag) + wordEnd)
	actual, _ := tagPatterns.LoadOrStore(tag, re)
	return actual.(*regexp.Regexp)
}
