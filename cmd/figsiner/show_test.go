package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"figsiner/internal/render"
	"figsiner/internal/scene"
	"figsiner/internal/section"
	"figsiner/internal/studio"
)

func TestDescribeFrame(t *testing.T) {
	var sec section.Section
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "pricing", "padding": {"top": 32, "right": 32, "bottom": 32, "left": 32}, "itemSpacing": 16,
		"items": [{"id": "price", "type": "text", "text": {"content": "$9", "style": "h2"}}]
	}`), &sec))

	h := scene.NewMemoryHost()
	root, err := render.New(h).Render(context.Background(), &sec, section.ViewportMobile, nil)
	require.NoError(t, err)
	require.NoError(t, studio.StoreSection(root, section.ViewportMobile, &sec))

	out := describeFrame(root)
	assert.Contains(t, out, "Section • pricing • mobile")
	assert.Contains(t, out, "mobile · 1 items")
	assert.Contains(t, out, "content")
	assert.Contains(t, out, `"$9"`)
}
