package studio

import (
	"encoding/json"
	"errors"
	"fmt"

	"figsiner/internal/render"
	"figsiner/internal/scene"
	"figsiner/internal/section"
)

var ErrNotEditable = errors.New("frame is not an editable section")

// StoreSection records the viewport and the document on a rendered root.
func StoreSection(root *scene.Node, v section.Viewport, sec *section.Section) error {
	b, err := json.Marshal(sec)
	if err != nil {
		return fmt.Errorf("failed to encode section: %w", err)
	}
	root.SetPluginData(render.ViewportKey, string(v))
	root.SetPluginData(render.SectionKey, string(b))
	return nil
}

// LoadSection reads back what StoreSection wrote. A root missing either
// attribute, or holding one that does not parse, is not editable.
func LoadSection(root *scene.Node) (section.Viewport, *section.Section, error) {
	if root == nil {
		return "", nil, ErrNotEditable
	}
	v := section.Viewport(root.PluginData(render.ViewportKey))
	raw := root.PluginData(render.SectionKey)
	if v == "" || raw == "" {
		return "", nil, ErrNotEditable
	}
	if !v.Valid() {
		return "", nil, fmt.Errorf("%w: unknown viewport %q", ErrNotEditable, v)
	}
	var sec section.Section
	if err := json.Unmarshal([]byte(raw), &sec); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrNotEditable, err)
	}
	return v, &sec, nil
}
