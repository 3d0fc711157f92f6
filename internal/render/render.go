// Package render draws section documents into a scene host and patches the
// drawn tree in place.
//
// A rendered section is a root frame holding one frame named "content"; the
// content frame holds one node per document item, in order. Every node drawn
// for a document item is named after the item id and tagged with its node
// type, so the tree can be searched the same way as the document. Renderer
// and Patcher are not safe for concurrent use on the same root.
package render

import (
	"context"
	"fmt"
	"log/slog"

	"figsiner/internal/scene"
	"figsiner/internal/section"
	"figsiner/internal/tokens"
)

const (
	// NodeTypeKey holds the document node type of a drawn item.
	NodeTypeKey = "figsiner:nodeType"
	ImageURLKey = "figsiner:imageUrl"
	ImageAltKey = "figsiner:imageAlt"

	ContentFrameName = "content"

	// variantGap separates the desktop and mobile frames on the canvas.
	variantGap = 160
	minHeight  = 100
)

type Renderer struct {
	host   scene.Host
	tokens *tokens.Table
	fonts  *FontLoader
	log    *slog.Logger
}

type Option func(*Renderer)

func WithTokens(t *tokens.Table) Option {
	return func(r *Renderer) { r.tokens = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// WithFontLoader shares a font cache between renderers on the same host.
func WithFontLoader(f *FontLoader) Option {
	return func(r *Renderer) { r.fonts = f }
}

func New(host scene.Host, opts ...Option) *Renderer {
	r := &Renderer{host: host, tokens: tokens.Default(), log: slog.Default()}
	for _, o := range opts {
		o(r)
	}
	if r.fonts == nil {
		r.fonts = NewFontLoader(host)
	}
	return r
}

func (r *Renderer) Host() scene.Host      { return r.host }
func (r *Renderer) Tokens() *tokens.Table { return r.tokens }

// RootName is the name given to a rendered section frame.
func RootName(t section.SectionType, v section.Viewport) string {
	return fmt.Sprintf("Section • %s • %s", t, v)
}

// Render draws sec for viewport. When target is nil a new detached root frame
// is created; otherwise target's children are replaced by the section, keeping
// target's id. Every item is built before target is touched, so a failed
// render leaves target as it was.
func (r *Renderer) Render(ctx context.Context, sec *section.Section, viewport section.Viewport, target *scene.Node) (*scene.Node, error) {
	d, err := r.draft(ctx, sec, viewport, target)
	if err != nil {
		return nil, err
	}
	return r.commit(d), nil
}

// draft is a fully built content frame waiting to be attached to its root.
type draft struct {
	sec      *section.Section
	viewport section.Viewport
	grid     tokens.GridToken
	target   *scene.Node
	content  *scene.Node
}

func (r *Renderer) draft(ctx context.Context, sec *section.Section, viewport section.Viewport, target *scene.Node) (*draft, error) {
	if sec == nil {
		return nil, fmt.Errorf("render: nil section")
	}
	grid, ok := r.tokens.GridFor(string(viewport))
	if !ok {
		return nil, fmt.Errorf("render: unknown viewport %q", viewport)
	}
	if target != nil && target.Kind != scene.KindFrame {
		return nil, fmt.Errorf("render: target %s is a %s, not a frame", target.ID, target.Kind)
	}

	content := r.newFrame(ContentFrameName)
	content.PrimarySizing = scene.SizingAuto
	content.CounterSizing = scene.SizingFixed
	content.Width = grid.Container
	if sec.Layout != nil {
		r.applyLayout(content, sec.Layout)
	}
	// Section spacing always comes from the section's own itemSpacing.
	content.ItemSpacing = r.tokens.Snap(sec.ItemSpacing, tokens.ItemSpacing)

	for _, item := range sec.Items {
		if item == nil {
			continue
		}
		n, err := r.createNode(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("render: item %q: %w", item.ID, err)
		}
		content.AppendChild(n)
	}
	return &draft{sec: sec, viewport: viewport, grid: grid, target: target, content: content}, nil
}

func (r *Renderer) commit(d *draft) *scene.Node {
	root := d.target
	if root == nil {
		root = r.host.NewNode(scene.KindFrame)
	}
	root.RemoveChildren()
	r.prepareRoot(root, d.sec, d.viewport, d.grid)
	root.AppendChild(d.content)
	return root
}

func (r *Renderer) prepareRoot(root *scene.Node, sec *section.Section, viewport section.Viewport, grid tokens.GridToken) {
	root.Name = RootName(sec.Type, viewport)
	root.LayoutMode = scene.LayoutVertical
	root.PrimarySizing = scene.SizingAuto
	root.CounterSizing = scene.SizingFixed
	root.CounterAlign = scene.AlignCenter
	root.ClipsContent = false
	root.Resize(grid.Viewport, max(root.Height, minHeight))
	root.SetPadding(
		r.tokens.Snap(sec.Padding.Top, tokens.SectionPadding),
		r.tokens.Snap(sec.Padding.Right, tokens.SectionPadding),
		r.tokens.Snap(sec.Padding.Bottom, tokens.SectionPadding),
		r.tokens.Snap(sec.Padding.Left, tokens.SectionPadding),
	)
	root.ItemSpacing = r.tokens.Snap(sec.ItemSpacing, tokens.ItemSpacing)

	root.Fills = nil
	if sec.Background != nil {
		root.Fills = solidFill(sec.Background.Color, sec.Background.OpacityOr(1))
	}
	if root.Fills == nil {
		root.Fills = solidFill(r.tokens.Colors.Background, 1)
	}
}

// RenderVariants draws every variant of resp. Variants with a frame in
// targets are re-rendered into it; the others get a new frame appended to
// parent, with mobile placed to the right of desktop. Nothing is attached or
// cleared unless every variant builds.
func (r *Renderer) RenderVariants(ctx context.Context, resp *section.Response, parent *scene.Node, targets map[section.Viewport]*scene.Node) (map[section.Viewport]*scene.Node, error) {
	drafts := make([]*draft, 0, len(resp.Variants))
	for _, v := range resp.Variants {
		d, err := r.draft(ctx, v.Section, v.Viewport, targets[v.Viewport])
		if err != nil {
			return nil, fmt.Errorf("failed to render %s variant: %w", v.Viewport, err)
		}
		drafts = append(drafts, d)
	}

	out := make(map[section.Viewport]*scene.Node, len(drafts))
	for _, d := range drafts {
		root := r.commit(d)
		if d.target == nil && parent != nil {
			parent.AppendChild(root)
		}
		out[d.viewport] = root
	}
	if desktop, mobile := out[section.ViewportDesktop], out[section.ViewportMobile]; desktop != nil && mobile != nil && targets[section.ViewportMobile] == nil {
		mobile.X = desktop.X + desktop.Width + variantGap
		mobile.Y = desktop.Y
	}
	return out, nil
}

// createNode draws one document node and its subtree.
func (r *Renderer) createNode(ctx context.Context, def *section.Node) (*scene.Node, error) {
	n, err := r.buildNode(ctx, def)
	if err != nil {
		return nil, err
	}
	n.Name = def.ID
	n.SetPluginData(NodeTypeKey, string(def.Type))
	return n, nil
}

func (r *Renderer) buildNode(ctx context.Context, def *section.Node) (*scene.Node, error) {
	if def.Type == section.NodeContainer {
		return r.buildContainer(ctx, def)
	}
	if def.UseComponent != nil && section.AcceptsComponent(def.Type) {
		if inst, ok := r.instantiate(ctx, def.UseComponent, def.Layout); ok {
			return inst, nil
		}
	}
	switch def.Type {
	case section.NodeText:
		return r.buildText(ctx, def)
	case section.NodeButton:
		return r.buildButton(ctx, def)
	case section.NodeImage:
		return r.buildImage(def), nil
	case section.NodeList:
		return r.buildList(ctx, def)
	case section.NodeComponent:
		return r.buildComponentPlaceholder(def), nil
	default:
		return nil, fmt.Errorf("unknown node type %q", def.Type)
	}
}

// instantiate imports ref from the host library and creates an instance. A
// failure is logged and reported as !ok so the caller can draw a primitive.
func (r *Renderer) instantiate(ctx context.Context, ref *section.ComponentRef, layout *section.Layout) (*scene.Node, bool) {
	c, err := r.host.ImportComponent(ctx, ref.ComponentKey)
	if err != nil || c == nil {
		r.log.Warn("component import failed, using primitive", "componentKey", ref.ComponentKey, "err", err)
		return nil, false
	}
	inst := c.CreateInstance(r.host)
	if len(ref.Variant) > 0 {
		if err := c.SetProperties(inst, ref.Variant); err != nil {
			r.log.Warn("component variant not applied", "componentKey", ref.ComponentKey, "err", err)
		}
	}
	r.applyLayout(inst, layout)
	return inst, true
}

// Attributes every editable section root carries.
const (
	ViewportKey = "figsiner:viewport"
	SectionKey  = "figsiner:section"
)
