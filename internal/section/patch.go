package section

import (
	"log/slog"

	"figsiner/internal/tokens"
)

// Skip records an operation that was not applied and why.
type Skip struct {
	Index  int
	Op     OpName
	Reason error
}

// Report summarizes one patch batch.
type Report struct {
	Applied []OpName
	Skipped []Skip
}

// Record files the outcome of op number i.
func (r *Report) Record(i int, op Op, err error) {
	if err != nil {
		r.Skipped = append(r.Skipped, Skip{Index: i, Op: op.Name(), Reason: err})
		return
	}
	r.Applied = append(r.Applied, op.Name())
}

type patchConfig struct {
	log    *slog.Logger
	tokens *tokens.Table
}

type PatchOption func(*patchConfig)

func WithLogger(l *slog.Logger) PatchOption {
	return func(c *patchConfig) { c.log = l }
}

func WithTokens(t *tokens.Table) PatchOption {
	return func(c *patchConfig) { c.tokens = t }
}

// ApplyPatch applies ops in order to a deep copy of doc and returns the copy.
// doc itself is never modified. An operation whose target cannot be found,
// or that does not fit its target, is skipped with a warning and the batch
// continues.
func ApplyPatch(doc *Section, ops []Op, opts ...PatchOption) (*Section, Report) {
	cfg := patchConfig{log: slog.Default(), tokens: tokens.Default()}
	for _, o := range opts {
		o(&cfg)
	}
	p := &docPatcher{doc: doc.Clone(), tokens: cfg.tokens}

	var report Report
	for i, op := range ops {
		err := op.Accept(p)
		if err != nil {
			cfg.log.Warn("skipping patch operation", "index", i, "op", op.Name(), "err", err)
		}
		report.Record(i, op, err)
	}
	return p.doc, report
}

// docPatcher evaluates operations against the plain document.
type docPatcher struct {
	doc    *Section
	tokens *tokens.Table
}

var _ OpVisitor = (*docPatcher)(nil)

func (p *docPatcher) UpdateSection(op *UpdateSectionOp) error {
	c := op.Changes
	if c.Padding != nil {
		p.doc.Padding = mergeInset(p.doc.Padding, c.Padding, func(v float64) float64 {
			return p.tokens.Snap(v, tokens.SectionPadding)
		})
	}
	if c.ItemSpacing != nil {
		p.doc.ItemSpacing = p.tokens.Snap(*c.ItemSpacing, tokens.ItemSpacing)
	}
	if c.Layout != nil {
		p.doc.Layout = p.doc.Layout.Merge(c.Layout)
	}
	if c.Background != nil {
		bg := p.doc.Background
		if bg == nil {
			// An unset background renders as the token background.
			bg = &Fill{Type: "solid", Color: p.tokens.Colors.Background}
		}
		p.doc.Background = bg.Merge(c.Background)
	}
	if c.Heading != nil {
		p.doc.Heading = cloneString(c.Heading)
	}
	if c.Subheading != nil {
		p.doc.Subheading = cloneString(c.Subheading)
	}
	return nil
}

func (p *docPatcher) ReplaceItemText(op *ReplaceItemTextOp) error {
	loc, ok := p.doc.Locate(op.TargetID)
	if !ok {
		return ErrTargetNotFound
	}
	n := loc.Node
	if n.Type != NodeText {
		return ErrNotText
	}
	if n.Text == nil {
		n.Text = &TextSpec{Style: StyleBody}
	}
	n.Text.Content = op.Content
	if op.Style != "" {
		n.Text.Style = op.Style
	}
	return nil
}

func (p *docPatcher) UpdateItem(op *UpdateItemOp) error {
	loc, ok := p.doc.Locate(op.TargetID)
	if !ok {
		return ErrTargetNotFound
	}
	n := loc.Node
	c := op.Changes
	if c.Layout != nil {
		n.Layout = n.Layout.Merge(c.Layout)
	}
	if c.Text != nil && n.Type == NodeText {
		if n.Text == nil {
			n.Text = &TextSpec{Style: StyleBody}
		}
		n.Text.Merge(c.Text)
	}
	if c.Button != nil && n.Type == NodeButton {
		if n.Button == nil {
			n.Button = &ButtonSpec{Variant: ButtonPrimary}
		}
		n.Button.Merge(c.Button)
	}
	if c.UseComponent != nil && AcceptsComponent(n.Type) {
		n.UseComponent = c.UseComponent.Clone()
	}
	return nil
}

func (p *docPatcher) InsertItem(op *InsertItemOp) error {
	if op.Item == nil {
		return ErrMissingItem
	}
	siblings, ok := p.doc.ChildrenOf(op.ParentID)
	if !ok {
		if _, found := p.doc.Locate(op.ParentID); found {
			return ErrNotContainer
		}
		return ErrTargetNotFound
	}
	*siblings = insertAt(*siblings, op.Position.Resolve(len(*siblings)), op.Item.Clone())
	return nil
}

func (p *docPatcher) RemoveItem(op *RemoveItemOp) error {
	loc, ok := p.doc.Locate(op.TargetID)
	if !ok {
		return ErrTargetNotFound
	}
	*loc.Siblings = removeAt(*loc.Siblings, loc.Index)
	return nil
}

func (p *docPatcher) ReorderItem(op *ReorderItemOp) error {
	loc, ok := p.doc.Locate(op.TargetID)
	if !ok {
		return ErrTargetNotFound
	}
	siblings := removeAt(*loc.Siblings, loc.Index)
	idx := ReorderIndex(len(siblings), op, func(i int) string { return siblings[i].ID })
	*loc.Siblings = insertAt(siblings, idx, loc.Node)
	return nil
}

// ReorderIndex picks where a node removed from its collection goes back:
// before BeforeID when it resolves, else after AfterID when it resolves, else
// at the end. idAt reports the id of the remaining sibling at position i.
func ReorderIndex(length int, op *ReorderItemOp, idAt func(i int) string) int {
	find := func(id string) int {
		if id == "" {
			return -1
		}
		for i := 0; i < length; i++ {
			if idAt(i) == id {
				return i
			}
		}
		return -1
	}
	if i := find(op.BeforeID); i >= 0 {
		return i
	}
	if i := find(op.AfterID); i >= 0 {
		return i + 1
	}
	return length
}

// AcceptsComponent reports whether updateItem may attach a component
// reference to a node of this type.
func AcceptsComponent(t NodeType) bool {
	return t == NodeButton || t == NodeComponent
}

func insertAt(nodes []*Node, i int, n *Node) []*Node {
	nodes = append(nodes, nil)
	copy(nodes[i+1:], nodes[i:])
	nodes[i] = n
	return nodes
}

func removeAt(nodes []*Node, i int) []*Node {
	out := make([]*Node, 0, len(nodes)-1)
	out = append(out, nodes[:i]...)
	return append(out, nodes[i+1:]...)
}
