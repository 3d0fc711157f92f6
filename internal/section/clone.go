package section

import "maps"

// Clone returns a deep copy of the section.
func (s *Section) Clone() *Section {
	if s == nil {
		return nil
	}
	out := *s
	out.Heading = cloneString(s.Heading)
	out.Subheading = cloneString(s.Subheading)
	out.Layout = s.Layout.Clone()
	out.Background = s.Background.Clone()
	out.Items = cloneNodes(s.Items)
	return &out
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	out.Layout = n.Layout.Clone()
	if n.Text != nil {
		t := *n.Text
		t.MaxWidth = cloneFloat(n.Text.MaxWidth)
		out.Text = &t
	}
	if n.Button != nil {
		b := *n.Button
		out.Button = &b
	}
	if n.Image != nil {
		img := *n.Image
		img.CornerRadius = cloneFloat(n.Image.CornerRadius)
		out.Image = &img
	}
	if n.Items != nil {
		out.Items = make([]ListItem, len(n.Items))
		for i, it := range n.Items {
			it.Icon = it.Icon.Clone()
			out.Items[i] = it
		}
	}
	out.Children = cloneNodes(n.Children)
	out.Background = n.Background.Clone()
	out.UseComponent = n.UseComponent.Clone()
	return &out
}

func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	out := *l
	if l.Columns != nil {
		c := *l.Columns
		out.Columns = &c
	}
	out.ItemSpacing = cloneFloat(l.ItemSpacing)
	if l.Padding != nil {
		p := *l.Padding
		out.Padding = &p
	}
	return &out
}

func (f *Fill) Clone() *Fill {
	if f == nil {
		return nil
	}
	out := *f
	out.Opacity = cloneFloat(f.Opacity)
	return &out
}

func (c *ComponentRef) Clone() *ComponentRef {
	if c == nil {
		return nil
	}
	out := *c
	if c.Variant != nil {
		out.Variant = maps.Clone(c.Variant)
	}
	return &out
}

func cloneNodes(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
