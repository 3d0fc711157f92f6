package section

// Merge returns a copy of l with every field present in patch overwritten.
// A nil receiver merges onto an empty layout.
func (l *Layout) Merge(patch *Layout) *Layout {
	out := l.Clone()
	if out == nil {
		out = &Layout{}
	}
	if patch == nil {
		return out
	}
	if patch.Direction != "" {
		out.Direction = patch.Direction
	}
	if patch.AlignItems != "" {
		out.AlignItems = patch.AlignItems
	}
	if patch.JustifyContent != "" {
		out.JustifyContent = patch.JustifyContent
	}
	if patch.Columns != nil {
		c := *patch.Columns
		out.Columns = &c
	}
	if patch.ItemSpacing != nil {
		out.ItemSpacing = cloneFloat(patch.ItemSpacing)
	}
	if patch.Padding != nil {
		p := *patch.Padding
		out.Padding = &p
	}
	if patch.Width != "" {
		out.Width = patch.Width
	}
	return out
}

// Merge returns a copy of f with the fields present in patch applied.
func (f *Fill) Merge(patch *FillPatch) *Fill {
	out := f.Clone()
	if out == nil {
		out = &Fill{Type: "solid"}
	}
	if patch == nil {
		return out
	}
	if patch.Type != "" {
		out.Type = patch.Type
	}
	if patch.Color != "" {
		out.Color = patch.Color
	}
	if patch.Opacity != nil {
		out.Opacity = cloneFloat(patch.Opacity)
	}
	return out
}

func (t *TextSpec) Merge(patch *TextPatch) {
	if patch == nil {
		return
	}
	if patch.Content != nil {
		t.Content = *patch.Content
	}
	if patch.Style != "" {
		t.Style = patch.Style
	}
	if patch.MaxWidth != nil {
		t.MaxWidth = cloneFloat(patch.MaxWidth)
	}
}

func (b *ButtonSpec) Merge(patch *ButtonPatch) {
	if patch == nil {
		return
	}
	if patch.Label != "" {
		b.Label = patch.Label
	}
	if patch.Variant != "" {
		b.Variant = patch.Variant
	}
	if patch.Width != "" {
		b.Width = patch.Width
	}
}

func mergeInset(base Inset, patch *InsetPatch, snap func(float64) float64) Inset {
	if patch.Top != nil {
		base.Top = snap(*patch.Top)
	}
	if patch.Right != nil {
		base.Right = snap(*patch.Right)
	}
	if patch.Bottom != nil {
		base.Bottom = snap(*patch.Bottom)
	}
	if patch.Left != nil {
		base.Left = snap(*patch.Left)
	}
	return base
}
