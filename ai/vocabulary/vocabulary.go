// Package vocabulary holds the keyword lists that drive intent routing and tag extraction.
package vocabulary

import (
	"fmt"
	"strings"

	"github.com/hrygo/shopdesk/ai/configloader"
)

// FileName is the vocabulary file looked up in the config directory.
const FileName = "vocabulary.yaml"

// Vocabulary configures the keyword oracle and the tag extractor.
// All entries are matched case-insensitively.
type Vocabulary struct {
	// OrderKeywords route to order_help. Checked before ProductKeywords.
	OrderKeywords []string `yaml:"order_keywords"`
	// ProductKeywords route to product_assist.
	ProductKeywords []string `yaml:"product_keywords"`
	// Tags is the whole-word tag vocabulary, in the order tags are reported.
	Tags []string `yaml:"tags"`
}

// Default returns the built-in vocabulary.
func Default() Vocabulary {
	return Vocabulary{
		OrderKeywords:   []string{"cancel", "order"},
		ProductKeywords: []string{"dress", "wedding", "under $", "midi", "eta"},
		Tags:            []string{"wedding", "midi", "daywear", "party"},
	}
}

// Load reads vocabulary.yaml from dir. A missing file, or an empty list in it,
// keeps the built-in defaults for that list.
func Load(dir string) (Vocabulary, error) {
	v := Default()
	if dir == "" {
		return v, nil
	}

	var override Vocabulary
	found, err := configloader.NewLoader(dir).LoadOptional(FileName, &override)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("load vocabulary: %w", err)
	}
	if !found {
		return v, nil
	}

	if len(override.OrderKeywords) > 0 {
		v.OrderKeywords = override.OrderKeywords
	}
	if len(override.ProductKeywords) > 0 {
		v.ProductKeywords = override.ProductKeywords
	}
	if len(override.Tags) > 0 {
		v.Tags = override.Tags
	}
	return v.normalized()
}

func (v Vocabulary) normalized() (Vocabulary, error) {
	var err error
	if v.OrderKeywords, err = normalizeList("order_keywords", v.OrderKeywords); err != nil {
		return Vocabulary{}, err
	}
	if v.ProductKeywords, err = normalizeList("product_keywords", v.ProductKeywords); err != nil {
		return Vocabulary{}, err
	}
	if v.Tags, err = normalizeList("tags", v.Tags); err != nil {
		return Vocabulary{}, err
	}
	return v, nil
}

// normalizeList lower-cases entries and drops duplicates while keeping order.
func normalizeList(name string, in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, raw := range in {
		kw := strings.ToLower(strings.TrimSpace(raw))
		if kw == "" {
			return nil, fmt.Errorf("vocabulary %s: blank entry", name)
		}
		if seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out, nil
}
