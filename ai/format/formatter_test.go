package format

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassthrough(t *testing.T) {
	f, err := NewFormatter("")
	require.NoError(t, err)

	msg := "Success — order A1003 (mira@example.com) is canceled."
	resp, err := f.Format(context.Background(), &FormatRequest{Content: msg})
	require.NoError(t, err)
	assert.Equal(t, msg, resp.Formatted)
	assert.False(t, resp.Changed)
	assert.Equal(t, "passthrough", resp.Source)
}

func TestHTML_ProductList(t *testing.T) {
	f, err := NewFormatter(KindHTML)
	require.NoError(t, err)

	msg := "Here are a couple of options:\n- ‘Satin Midi Slip Dress’ ($95)\n- ‘Floral Wrap Midi Dress’ ($110)"
	resp, err := f.Format(context.Background(), &FormatRequest{Content: msg})
	require.NoError(t, err)

	assert.True(t, resp.Changed)
	assert.Equal(t, "goldmark", resp.Source)
	assert.Contains(t, resp.Formatted, "<p>Here are a couple of options:</p>")
	assert.Contains(t, resp.Formatted, "<ul>")
	assert.Contains(t, resp.Formatted, "<li>‘Satin Midi Slip Dress’ ($95)</li>")
}

func TestHTML_Linkify(t *testing.T) {
	f, err := NewFormatter(KindHTML)
	require.NoError(t, err)

	resp, err := f.Format(context.Background(), &FormatRequest{Content: "order A1003 (mira@example.com)"})
	require.NoError(t, err)
	assert.Contains(t, resp.Formatted, `href="mailto:mira@example.com"`)
}

func TestUnknownKind(t *testing.T) {
	_, err := NewFormatter("pdf")
	assert.Error(t, err)
}
