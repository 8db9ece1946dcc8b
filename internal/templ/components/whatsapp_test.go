package components

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppButton(t *testing.T) {
	var buf bytes.Buffer
	err := WhatsAppButton("https://wa.me/1?text=a%20b&x=1", "bottom-10 bg-emerald-500").Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `href="https://wa.me/1?text=a%20b&amp;x=1"`)
	assert.Contains(t, html, `rel="noopener noreferrer"`)
	assert.Contains(t, html, "bottom-10")
	assert.Contains(t, html, "bg-emerald-500")
	assert.NotContains(t, html, "bottom-6")
	assert.NotContains(t, html, "bg-green-500 ")
}
