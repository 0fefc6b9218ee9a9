// Package tools implements the deterministic business services behind each flow:
// catalog search, size advice, delivery estimates, order lookup and the
// cancellation policy.
package tools

// Tool names as they appear in a trace's tools_called list.
const (
	ToolProductSearch   = "product_search"
	ToolSizeRecommender = "size_recommender"
	ToolETA             = "eta"
	ToolOrderLookup     = "order_lookup"
	ToolOrderCancel     = "order_cancel"
)
