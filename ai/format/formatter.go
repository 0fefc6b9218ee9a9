// Package format renders the customer-facing part of a reply for different surfaces.
package format

import (
	"context"
	"fmt"
	"time"
)

// Formatter renders a plain-text reply message.
type Formatter interface {
	Format(ctx context.Context, req *FormatRequest) (*FormatResponse, error)
}

type FormatRequest struct {
	Content string // customer-facing message, without the trace block
}

type FormatResponse struct {
	Formatted string
	Changed   bool
	Source    string // "passthrough" | "goldmark"
	Latency   time.Duration
}

// Kinds accepted by NewFormatter.
const (
	KindText = "text"
	KindHTML = "html"
)

// NewFormatter returns the formatter for kind; "" means text.
func NewFormatter(kind string) (Formatter, error) {
	switch kind {
	case "", KindText:
		return passthroughFormatter{}, nil
	case KindHTML:
		return newHTMLFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown format %q", kind)
	}
}
