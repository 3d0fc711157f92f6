package render

import (
	"context"
	"errors"

	"figsiner/internal/scene"
	"figsiner/internal/section"
	"figsiner/internal/tokens"
)

var ErrNotRendered = errors.New("node is not a rendered section")

// Patcher applies patch operations to a rendered section in place. Host ids
// of surviving nodes never change; only structure, order and content do.
type Patcher struct {
	r *Renderer
}

func NewPatcher(r *Renderer) *Patcher {
	return &Patcher{r: r}
}

// Apply runs ops in order against root. Operations that miss their target
// are skipped with a warning. The only error is a root that was not produced
// by Render.
func (p *Patcher) Apply(ctx context.Context, root *scene.Node, ops []section.Op) (section.Report, error) {
	content := ContentFrame(root)
	if content == nil {
		return section.Report{}, ErrNotRendered
	}
	e := &treeEval{ctx: ctx, r: p.r, root: root, content: content}

	var report section.Report
	for i, op := range ops {
		err := op.Accept(e)
		if err != nil {
			p.r.log.Warn("skipping patch operation on tree", "index", i, "op", op.Name(), "root", root.ID, "err", err)
		}
		report.Record(i, op, err)
	}
	return report, nil
}

// treeEval evaluates operations against a rendered tree.
type treeEval struct {
	ctx     context.Context
	r       *Renderer
	root    *scene.Node
	content *scene.Node
}

var _ section.OpVisitor = (*treeEval)(nil)

func (e *treeEval) snap(cur float64, v *float64, c tokens.Category) float64 {
	if v == nil {
		return cur
	}
	return e.r.tokens.Snap(*v, c)
}

// UpdateSection patches the root frame. Heading and subheading are stored on
// the document only; they are not drawn.
func (e *treeEval) UpdateSection(op *section.UpdateSectionOp) error {
	c := op.Changes
	root := e.root
	if p := c.Padding; p != nil {
		root.SetPadding(
			e.snap(root.PaddingTop, p.Top, tokens.SectionPadding),
			e.snap(root.PaddingRight, p.Right, tokens.SectionPadding),
			e.snap(root.PaddingBottom, p.Bottom, tokens.SectionPadding),
			e.snap(root.PaddingLeft, p.Left, tokens.SectionPadding),
		)
	}
	if c.ItemSpacing != nil {
		root.ItemSpacing = e.r.tokens.Snap(*c.ItemSpacing, tokens.ItemSpacing)
	}
	if c.Layout != nil {
		e.r.applyLayoutPatch(e.content, c.Layout)
	}
	if c.ItemSpacing != nil || c.Layout != nil {
		e.content.ItemSpacing = root.ItemSpacing
	}
	if c.Background != nil {
		if fills := e.r.mergeFill(root.Fills, c.Background); fills != nil {
			root.Fills = fills
		}
	}
	return nil
}

// mergeFill merges patch over the root's first paint, or over the token
// background when the root has none, the same base the document starts from.
func (r *Renderer) mergeFill(current []scene.Paint, patch *section.FillPatch) []scene.Paint {
	base := &section.Fill{Type: "solid", Color: r.tokens.Colors.Background}
	if len(current) > 0 {
		op := current[0].Opacity
		base = &section.Fill{Type: "solid", Color: rgbToHex(current[0].Color), Opacity: &op}
	}
	merged := base.Merge(patch)
	return solidFill(merged.Color, merged.OpacityOr(1))
}

func (e *treeEval) ReplaceItemText(op *section.ReplaceItemTextOp) error {
	loc, ok := Locate(e.content, op.TargetID)
	if !ok {
		return section.ErrTargetNotFound
	}
	n := loc.Node
	if n.Kind != scene.KindText || NodeType(n) != section.NodeText {
		return section.ErrNotText
	}
	if op.Style != "" {
		if err := e.r.applyTypography(e.ctx, n, op.Style); err != nil {
			return err
		}
	}
	n.Characters = op.Content
	return nil
}

func (e *treeEval) UpdateItem(op *section.UpdateItemOp) error {
	loc, ok := Locate(e.content, op.TargetID)
	if !ok {
		return section.ErrTargetNotFound
	}
	n := loc.Node
	typ := NodeType(n)
	c := op.Changes

	text := c.Text
	if text != nil && (typ != section.NodeText || n.Kind != scene.KindText) {
		text = nil
	}
	// Typography goes first: a font failure must leave n untouched.
	if text != nil && text.Style != "" {
		if err := e.r.applyTypography(e.ctx, n, text.Style); err != nil {
			return err
		}
	}
	if c.Layout != nil {
		e.r.applyLayoutPatch(n, c.Layout)
	}
	if t := text; t != nil {
		if t.MaxWidth != nil {
			n.Width = min(*t.MaxWidth, maxTextWidth)
		}
		if t.Content != nil {
			n.Characters = *t.Content
		}
	}
	if b := c.Button; b != nil && typ == section.NodeButton && n.Kind == scene.KindFrame {
		e.patchButton(n, b)
	}
	if c.UseComponent != nil && section.AcceptsComponent(typ) {
		inst, ok := e.r.instantiate(e.ctx, c.UseComponent, nil)
		if ok {
			inst.LayoutGrow = n.LayoutGrow
			e.r.applyLayoutPatch(inst, c.Layout)
			inst.Name = n.Name
			inst.SetPluginData(NodeTypeKey, string(typ))
			loc.Parent.InsertChild(loc.Index, inst)
			n.Remove()
		}
	}
	return nil
}

func (e *treeEval) patchButton(n *scene.Node, b *section.ButtonPatch) {
	if b.Label != "" {
		if label := n.FindOne(func(c *scene.Node) bool { return c.Kind == scene.KindText }); label != nil {
			label.Characters = b.Label
		}
	}
	if b.Variant != "" {
		n.Fills = e.r.buttonFill(b.Variant)
		if label := n.FindOne(func(c *scene.Node) bool { return c.Kind == scene.KindText }); label != nil {
			label.Fills = e.r.labelFill(b.Variant)
		}
	}
	switch b.Width {
	case section.WidthFill:
		n.LayoutGrow = 1
	case section.WidthHug:
		n.LayoutGrow = 0
	}
}

func (e *treeEval) InsertItem(op *section.InsertItemOp) error {
	if op.Item == nil {
		return section.ErrMissingItem
	}
	parent := e.content
	if op.ParentID != section.RootParentID {
		loc, ok := Locate(e.content, op.ParentID)
		if !ok {
			return section.ErrTargetNotFound
		}
		if !isContainer(loc.Node) {
			return section.ErrNotContainer
		}
		parent = loc.Node
	}
	n, err := e.r.createNode(e.ctx, op.Item)
	if err != nil {
		return err
	}
	parent.InsertChild(op.Position.Resolve(len(parent.Children())), n)
	return nil
}

func (e *treeEval) RemoveItem(op *section.RemoveItemOp) error {
	loc, ok := Locate(e.content, op.TargetID)
	if !ok {
		return section.ErrTargetNotFound
	}
	loc.Node.Remove()
	return nil
}

func (e *treeEval) ReorderItem(op *section.ReorderItemOp) error {
	loc, ok := Locate(e.content, op.TargetID)
	if !ok {
		return section.ErrTargetNotFound
	}
	parent := loc.Parent
	parent.RemoveChild(loc.Index)
	siblings := parent.Children()
	idx := section.ReorderIndex(len(siblings), op, func(i int) string { return siblings[i].Name })
	parent.InsertChild(idx, loc.Node)
	return nil
}
