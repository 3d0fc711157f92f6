package scene

import (
	"encoding/json"
	"fmt"
)

// snapshot is the serialized form of a node subtree.
type snapshot struct {
	ID             string            `json:"id"`
	Kind           Kind              `json:"kind"`
	Name           string            `json:"name,omitempty"`
	X              float64           `json:"x,omitempty"`
	Y              float64           `json:"y,omitempty"`
	Width          float64           `json:"width,omitempty"`
	Height         float64           `json:"height,omitempty"`
	LayoutMode     LayoutMode        `json:"layoutMode,omitempty"`
	PrimaryAlign   Align             `json:"primaryAlign,omitempty"`
	CounterAlign   Align             `json:"counterAlign,omitempty"`
	PrimarySizing  Sizing            `json:"primarySizing,omitempty"`
	CounterSizing  Sizing            `json:"counterSizing,omitempty"`
	ItemSpacing    float64           `json:"itemSpacing,omitempty"`
	Padding        [4]float64        `json:"padding"`
	LayoutGrow     float64           `json:"layoutGrow,omitempty"`
	CornerRadius   float64           `json:"cornerRadius,omitempty"`
	ClipsContent   bool              `json:"clipsContent,omitempty"`
	Fills          []Paint           `json:"fills,omitempty"`
	Characters     string            `json:"characters,omitempty"`
	Font           *Font             `json:"font,omitempty"`
	FontSize       float64           `json:"fontSize,omitempty"`
	LineHeight     float64           `json:"lineHeight,omitempty"`
	TextAutoResize string            `json:"textAutoResize,omitempty"`
	ComponentKey   string            `json:"componentKey,omitempty"`
	ComponentProps map[string]string `json:"componentProps,omitempty"`
	PluginData     map[string]string `json:"pluginData,omitempty"`
	Children       []*snapshot       `json:"children,omitempty"`
}

// Encode serializes n and its subtree, plugin data included.
func Encode(n *Node) ([]byte, error) {
	return json.Marshal(toSnapshot(n))
}

// Decode rebuilds a detached subtree from Encode output. Node ids are kept.
func Decode(b []byte) (*Node, error) {
	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("failed to decode scene node: %w", err)
	}
	return fromSnapshot(&s), nil
}

func toSnapshot(n *Node) *snapshot {
	s := &snapshot{
		ID:             n.ID,
		Kind:           n.Kind,
		Name:           n.Name,
		X:              n.X,
		Y:              n.Y,
		Width:          n.Width,
		Height:         n.Height,
		LayoutMode:     n.LayoutMode,
		PrimaryAlign:   n.PrimaryAlign,
		CounterAlign:   n.CounterAlign,
		PrimarySizing:  n.PrimarySizing,
		CounterSizing:  n.CounterSizing,
		ItemSpacing:    n.ItemSpacing,
		Padding:        [4]float64{n.PaddingTop, n.PaddingRight, n.PaddingBottom, n.PaddingLeft},
		LayoutGrow:     n.LayoutGrow,
		CornerRadius:   n.CornerRadius,
		ClipsContent:   n.ClipsContent,
		Fills:          n.Fills,
		Characters:     n.Characters,
		FontSize:       n.FontSize,
		LineHeight:     n.LineHeight,
		TextAutoResize: n.TextAutoResize,
		ComponentKey:   n.ComponentKey,
		ComponentProps: n.ComponentProps,
		PluginData:     n.data,
	}
	if n.Font != (Font{}) {
		f := n.Font
		s.Font = &f
	}
	for _, c := range n.children {
		s.Children = append(s.Children, toSnapshot(c))
	}
	return s
}

func fromSnapshot(s *snapshot) *Node {
	n := &Node{
		ID:             s.ID,
		Kind:           s.Kind,
		Name:           s.Name,
		X:              s.X,
		Y:              s.Y,
		Width:          s.Width,
		Height:         s.Height,
		LayoutMode:     s.LayoutMode,
		PrimaryAlign:   s.PrimaryAlign,
		CounterAlign:   s.CounterAlign,
		PrimarySizing:  s.PrimarySizing,
		CounterSizing:  s.CounterSizing,
		ItemSpacing:    s.ItemSpacing,
		PaddingTop:     s.Padding[0],
		PaddingRight:   s.Padding[1],
		PaddingBottom:  s.Padding[2],
		PaddingLeft:    s.Padding[3],
		LayoutGrow:     s.LayoutGrow,
		CornerRadius:   s.CornerRadius,
		ClipsContent:   s.ClipsContent,
		Fills:          s.Fills,
		Characters:     s.Characters,
		FontSize:       s.FontSize,
		LineHeight:     s.LineHeight,
		TextAutoResize: s.TextAutoResize,
		ComponentKey:   s.ComponentKey,
		ComponentProps: s.ComponentProps,
		data:           s.PluginData,
	}
	if s.Font != nil {
		n.Font = *s.Font
	}
	for _, c := range s.Children {
		child := fromSnapshot(c)
		child.parent = n
		n.children = append(n.children, child)
	}
	return n
}
