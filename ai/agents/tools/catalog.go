package tools

import (
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/hrygo/shopdesk/store"
)

// nonWordPattern splits a query into title-search tokens.
var nonWordPattern = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`[^\p{L}\p{N}_]+`)
})

// Catalog searches a fixed product list.
type Catalog struct {
	products []store.Product
}

// NewCatalog creates a catalog over products, kept in the given order.
func NewCatalog(products []store.Product) *Catalog {
	return &Catalog{products: products}
}

// Name returns the name of the tool.
func (c *Catalog) Name() string {
	return ToolProductSearch
}

// Search returns the products priced at or below priceCeiling (when set) that match.
//
// With tags, a product matches when it shares any tag, case-insensitively, and
// the query text is ignored. Without tags, a product matches when any word of
// the query appears in its title. Results are sorted by price; ties keep catalog order.
func (c *Catalog) Search(query string, priceCeiling *int, tags []string) []store.Product {
	wantTags := make([]string, 0, len(tags))
	for _, t := range tags {
		wantTags = append(wantTags, strings.ToLower(t))
	}
	tokens := queryTokens(query)

	var results []store.Product
	for _, p := range c.products {
		if priceCeiling != nil && p.Price > *priceCeiling {
			continue
		}

		var match bool
		if len(wantTags) > 0 {
			match = sharesTag(p.Tags, wantTags)
		} else {
			match = titleContainsAny(p.Title, tokens)
		}
		if match {
			results = append(results, p.Clone())
		}
	}

	slices.SortStableFunc(results, func(a, b store.Product) int {
		return a.Price - b.Price
	})
	return results
}

func queryTokens(query string) []string {
	var tokens []string
	for _, tok := range nonWordPattern().Split(strings.ToLower(query), -1) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func sharesTag(productTags, want []string) bool {
	for _, pt := range productTags {
		if slices.Contains(want, strings.ToLower(pt)) {
			return true
		}
	}
	return false
}

func titleContainsAny(title string, tokens []string) bool {
	lower := strings.ToLower(title)
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}
