// Package filter masks customer contact details before utterances reach the logs.
package filter

import (
	"regexp"
	"strings"
	"sync"
)

// FilterType names a kind of sensitive value.
type FilterType int

const (
	// Email filters email addresses.
	Email FilterType = iota

	// Phone filters North American phone numbers, with or without +1.
	Phone

	// Card filters 13-19 digit payment card numbers, optionally grouped by spaces or dashes.
	Card
)

var (
	emailPattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	})

	phonePattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(`(?:\+1[ -]?)?\(?\b\d{3}\)?[ .-]?\d{3}[ .-]\d{4}\b`)
	})

	cardPattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(`\b\d(?:[ -]?\d){12,18}\b`)
	})
)

func pattern(ft FilterType) *regexp.Regexp {
	switch ft {
	case Email:
		return emailPattern()
	case Phone:
		return phonePattern()
	case Card:
		return cardPattern()
	default:
		return nil
	}
}

// FilterConfig configures a Filter.
type FilterConfig struct {
	// Enabled filter types, applied in order.
	Enabled []FilterType

	// MaskChar is the character used for masking.
	MaskChar rune

	// KeepFirstN keeps the first N characters unmasked (the local part, for emails).
	KeepFirstN int

	// KeepLastN keeps the last N characters unmasked (ignored for emails).
	KeepLastN int
}

// DefaultConfig masks everything except the first character and the last four digits.
func DefaultConfig() FilterConfig {
	return FilterConfig{
		Enabled:    []FilterType{Email, Card, Phone},
		MaskChar:   '*',
		KeepFirstN: 1,
		KeepLastN:  4,
	}
}

// Filter masks sensitive values. It is immutable and safe for concurrent use.
type Filter struct {
	config FilterConfig
}

func NewFilter(cfg FilterConfig) *Filter {
	if cfg.MaskChar == 0 {
		cfg.MaskChar = '*'
	}
	return &Filter{config: cfg}
}

var defaultFilter = sync.OnceValue(func() *Filter { return NewFilter(DefaultConfig()) })

// Redact masks text with the default configuration.
func Redact(text string) string {
	return defaultFilter().FilterText(text)
}

// FilterText returns text with every enabled kind of value masked.
func (f *Filter) FilterText(text string) string {
	for _, ft := range f.config.Enabled {
		re := pattern(ft)
		if re == nil {
			continue
		}
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			return f.mask(m, ft)
		})
	}
	return text
}

// Contains reports whether text holds any enabled kind of value.
func (f *Filter) Contains(text string) bool {
	for _, ft := range f.config.Enabled {
		if re := pattern(ft); re != nil && re.MatchString(text) {
			return true
		}
	}
	return false
}

func (f *Filter) mask(s string, ft FilterType) string {
	if ft == Email {
		return maskEmail(s, f.config.KeepFirstN, f.config.MaskChar)
	}

	// Digits only; separators survive so the shape stays readable.
	runes := []rune(s)
	digits := 0
	for _, r := range runes {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits <= f.config.KeepLastN {
		return s
	}
	seen := 0
	for i, r := range runes {
		if r < '0' || r > '9' {
			continue
		}
		if seen < digits-f.config.KeepLastN {
			runes[i] = f.config.MaskChar
		}
		seen++
	}
	return string(runes)
}

// maskEmail keeps the first keepFirst characters of the local part and the top-level domain.
func maskEmail(email string, keepFirst int, maskChar rune) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return email
	}
	mask := string(maskChar)

	lr := []rune(local)
	keep := min(keepFirst, len(lr))
	maskedLocal := string(lr[:keep]) + strings.Repeat(mask, len(lr)-keep)

	dot := strings.LastIndex(domain, ".")
	if dot < 0 {
		return maskedLocal + "@" + domain
	}
	maskedDomain := strings.Repeat(mask, len([]rune(domain[:dot]))) + domain[dot:]

	return maskedLocal + "@" + maskedDomain
}
