package store

// Product is one catalog entry. Products are read-only once loaded.
type Product struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Price int      `json:"price"`
	Sizes []string `json:"sizes"`
	Tags  []string `json:"tags"`
	Color string   `json:"color"`
}

// Clone returns a deep copy so callers can never alias the corpus slices.
func (p Product) Clone() Product {
	p.Sizes = append([]string(nil), p.Sizes...)
	p.Tags = append([]string(nil), p.Tags...)
	return p
}
