package scene

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrComponentNotFound = errors.New("component not found")
	ErrFontUnavailable   = errors.New("font unavailable")
)

// Host is the design tool the renderer draws into.
type Host interface {
	// NewNode creates a detached node with a fresh, stable id.
	NewNode(kind Kind) *Node
	// LoadFont makes a font usable for text nodes.
	LoadFont(ctx context.Context, font Font) error
	// ImportComponent resolves a library component by key.
	ImportComponent(ctx context.Context, key string) (*Component, error)
	// Page is the canvas root that generated frames are appended to.
	Page() *Node
}

// Component is a published library component.
type Component struct {
	Key        string
	Name       string
	Width      float64
	Height     float64
	Properties map[string][]string
}

// CreateInstance creates an instance node of the component.
func (c *Component) CreateInstance(h Host) *Node {
	inst := h.NewNode(KindInstance)
	inst.Name = c.Name
	inst.ComponentKey = c.Key
	inst.Resize(c.Width, c.Height)
	inst.ComponentProps = make(map[string]string, len(c.Properties))
	for prop, values := range c.Properties {
		if len(values) > 0 {
			inst.ComponentProps[prop] = values[0]
		}
	}
	return inst
}

// SetProperties applies variant properties to an instance of c. Unknown
// properties or values are rejected and nothing is changed.
func (c *Component) SetProperties(inst *Node, props map[string]string) error {
	for prop, value := range props {
		allowed, ok := c.Properties[prop]
		if !ok {
			return fmt.Errorf("component %q has no property %q", c.Name, prop)
		}
		found := false
		for _, v := range allowed {
			if v == value {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("component %q property %q has no value %q", c.Name, prop, value)
		}
	}
	if inst.ComponentProps == nil {
		inst.ComponentProps = make(map[string]string, len(props))
	}
	maps.Copy(inst.ComponentProps, props)
	return nil
}

// IDGenerator produces node ids.
type IDGenerator func() string

// UUIDv7 is the default id strategy: time-sortable and globally unique.
func UUIDv7() IDGenerator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// MemoryHost is a headless Host keeping the whole canvas in memory.
type MemoryHost struct {
	mu      sync.Mutex
	newID   IDGenerator
	page    *Node
	library map[string]*Component
	fonts   map[Font]bool
	loaded  []Font
}

type MemoryOption func(*MemoryHost)

// WithIDGenerator overrides how node ids are minted.
func WithIDGenerator(gen IDGenerator) MemoryOption {
	return func(h *MemoryHost) { h.newID = gen }
}

// WithComponents registers library components.
func WithComponents(components ...*Component) MemoryOption {
	return func(h *MemoryHost) {
		for _, c := range components {
			h.library[c.Key] = c
		}
	}
}

// WithFonts restricts the fonts LoadFont accepts. Without it every font loads.
func WithFonts(fonts ...Font) MemoryOption {
	return func(h *MemoryHost) {
		h.fonts = make(map[Font]bool, len(fonts))
		for _, f := range fonts {
			h.fonts[f] = true
		}
	}
}

func NewMemoryHost(opts ...MemoryOption) *MemoryHost {
	h := &MemoryHost{
		newID:   UUIDv7(),
		library: make(map[string]*Component),
	}
	for _, o := range opts {
		o(h)
	}
	h.page = &Node{ID: "page", Kind: KindPage, Name: "Page 1"}
	return h
}

func (h *MemoryHost) NewNode(kind Kind) *Node {
	h.mu.Lock()
	id := h.newID()
	h.mu.Unlock()
	n := &Node{ID: id, Kind: kind, LayoutMode: LayoutNone}
	if kind == KindText {
		n.TextAutoResize = "WIDTH_AND_HEIGHT"
	}
	return n
}

func (h *MemoryHost) LoadFont(ctx context.Context, font Font) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fonts != nil && !h.fonts[font] {
		return fmt.Errorf("%w: %s", ErrFontUnavailable, font)
	}
	h.loaded = append(h.loaded, font)
	return nil
}

// LoadedFonts lists every successful LoadFont call in order.
func (h *MemoryHost) LoadedFonts() []Font {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Font(nil), h.loaded...)
}

func (h *MemoryHost) ImportComponent(ctx context.Context, key string) (*Component, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.library[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, key)
	}
	return c, nil
}

func (h *MemoryHost) Page() *Node { return h.page }
