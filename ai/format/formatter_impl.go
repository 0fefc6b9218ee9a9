package format

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

type passthroughFormatter struct{}

func (passthroughFormatter) Format(_ context.Context, req *FormatRequest) (*FormatResponse, error) {
	start := time.Now()
	return &FormatResponse{
		Formatted: req.Content,
		Source:    "passthrough",
		Latency:   time.Since(start),
	}, nil
}

// htmlFormatter treats the message as Markdown: the option list of a product
// reply becomes a <ul> and bare emails become mailto links.
type htmlFormatter struct {
	md goldmark.Markdown
}

func newHTMLFormatter() *htmlFormatter {
	return &htmlFormatter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

func (f *htmlFormatter) Format(_ context.Context, req *FormatRequest) (*FormatResponse, error) {
	start := time.Now()

	var buf bytes.Buffer
	if err := f.md.Convert([]byte(req.Content), &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	out := buf.String()
	return &FormatResponse{
		Formatted: out,
		Changed:   out != req.Content,
		Source:    "goldmark",
		Latency:   time.Since(start),
	}, nil
}
