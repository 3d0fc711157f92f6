// Package scene is the host side of rendering: a retained tree of frames,
// text runs, rectangles and component instances, plus the Host capability
// the renderer uses to create nodes, load fonts and import components.
package scene

import (
	"fmt"
	"maps"
	"slices"
)

type Kind string

const (
	KindPage      Kind = "PAGE"
	KindFrame     Kind = "FRAME"
	KindText      Kind = "TEXT"
	KindRectangle Kind = "RECTANGLE"
	KindInstance  Kind = "INSTANCE"
)

type LayoutMode string

const (
	LayoutNone       LayoutMode = "NONE"
	LayoutHorizontal LayoutMode = "HORIZONTAL"
	LayoutVertical   LayoutMode = "VERTICAL"
)

type Align string

const (
	AlignMin          Align = "MIN"
	AlignCenter       Align = "CENTER"
	AlignMax          Align = "MAX"
	AlignStretch      Align = "STRETCH"
	AlignSpaceBetween Align = "SPACE_BETWEEN"
)

type Sizing string

const (
	SizingAuto  Sizing = "AUTO"
	SizingFixed Sizing = "FIXED"
)

type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

type Paint struct {
	Color   RGB     `json:"color"`
	Opacity float64 `json:"opacity"`
}

type Font struct {
	Family string `json:"family"`
	Style  string `json:"style"`
}

func (f Font) String() string { return f.Family + " " + f.Style }

// Node is one host node. Only the host assigns ID; it never changes for the
// node's lifetime.
type Node struct {
	ID   string
	Kind Kind
	Name string

	X, Y          float64
	Width, Height float64

	LayoutMode     LayoutMode
	PrimaryAlign   Align
	CounterAlign   Align
	PrimarySizing  Sizing
	CounterSizing  Sizing
	ItemSpacing    float64
	PaddingTop     float64
	PaddingRight   float64
	PaddingBottom  float64
	PaddingLeft    float64
	LayoutGrow     float64
	CornerRadius   float64
	ClipsContent   bool
	Fills          []Paint
	Characters     string
	Font           Font
	FontSize       float64
	LineHeight     float64
	TextAutoResize string
	ComponentKey   string
	ComponentProps map[string]string

	parent   *Node
	children []*Node
	data     map[string]string
}

func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children. Callers must not modify the slice.
func (n *Node) Children() []*Node { return n.children }

// CanHaveChildren reports whether the node accepts children.
func (n *Node) CanHaveChildren() bool {
	switch n.Kind {
	case KindPage, KindFrame, KindInstance:
		return true
	}
	return false
}

// IndexOf returns the position of child among n's children, or -1.
func (n *Node) IndexOf(child *Node) int {
	return slices.Index(n.children, child)
}

// AppendChild moves child to the end of n's children.
func (n *Node) AppendChild(child *Node) {
	n.InsertChild(len(n.children), child)
}

// InsertChild moves child to index i of n's children, detaching it from its
// previous parent first. i is clamped into range.
func (n *Node) InsertChild(i int, child *Node) {
	if !n.CanHaveChildren() {
		panic(fmt.Sprintf("scene: %s node %q cannot have children", n.Kind, n.Name))
	}
	child.Remove()
	i = min(max(i, 0), len(n.children))
	n.children = slices.Insert(n.children, i, child)
	child.parent = n
}

// RemoveChild detaches and returns the child at index i.
func (n *Node) RemoveChild(i int) *Node {
	child := n.children[i]
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	return child
}

// Remove detaches n from its parent. It is a no-op for detached nodes.
func (n *Node) Remove() {
	if n.parent == nil {
		return
	}
	if i := n.parent.IndexOf(n); i >= 0 {
		n.parent.RemoveChild(i)
	}
	n.parent = nil
}

// RemoveChildren detaches every child.
func (n *Node) RemoveChildren() {
	for len(n.children) > 0 {
		n.RemoveChild(0)
	}
}

// FindOne returns the first descendant, depth-first pre-order, matching fn.
func (n *Node) FindOne(fn func(*Node) bool) *Node {
	for _, c := range n.children {
		if fn(c) {
			return c
		}
		if m := c.FindOne(fn); m != nil {
			return m
		}
	}
	return nil
}

// FindByID looks up a node by host id in n's subtree, n included.
func (n *Node) FindByID(id string) *Node {
	if n.ID == id {
		return n
	}
	return n.FindOne(func(c *Node) bool { return c.ID == id })
}

func (n *Node) Resize(w, h float64) {
	n.Width, n.Height = w, h
}

func (n *Node) SetPadding(top, right, bottom, left float64) {
	n.PaddingTop, n.PaddingRight, n.PaddingBottom, n.PaddingLeft = top, right, bottom, left
}

// SetPluginData stores an opaque attribute on the node. An empty value
// deletes the key.
func (n *Node) SetPluginData(key, value string) {
	if value == "" {
		delete(n.data, key)
		return
	}
	if n.data == nil {
		n.data = make(map[string]string)
	}
	n.data[key] = value
}

// PluginData returns the attribute stored under key, or "".
func (n *Node) PluginData(key string) string {
	return n.data[key]
}

// PluginDataKeys lists the stored attribute keys in sorted order.
func (n *Node) PluginDataKeys() []string {
	return slices.Sorted(maps.Keys(n.data))
}
