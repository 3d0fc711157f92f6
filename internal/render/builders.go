package render

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"figsiner/internal/scene"
	"figsiner/internal/section"
	"figsiner/internal/tokens"
)

const (
	maxTextWidth = 1200
	imageWidth   = 320
)

func mapAlign(v section.AlignItems) scene.Align {
	switch v {
	case section.AlignCenter:
		return scene.AlignCenter
	case section.AlignEnd:
		return scene.AlignMax
	case section.AlignStretch:
		return scene.AlignStretch
	default:
		return scene.AlignMin
	}
}

func mapJustify(v section.JustifyContent) scene.Align {
	switch v {
	case section.JustifyCenter:
		return scene.AlignCenter
	case section.JustifyEnd:
		return scene.AlignMax
	case section.JustifySpaceBetween:
		return scene.AlignSpaceBetween
	default:
		return scene.AlignMin
	}
}

func hasAutoLayout(n *scene.Node) bool {
	return n.Kind == scene.KindFrame || n.Kind == scene.KindInstance
}

func layoutMode(d section.Direction) scene.LayoutMode {
	if d == section.DirectionHorizontal {
		return scene.LayoutHorizontal
	}
	return scene.LayoutVertical
}

// applyLayout applies a full layout configuration: a missing direction means
// vertical and a missing width means hug.
func (r *Renderer) applyLayout(n *scene.Node, cfg *section.Layout) {
	if cfg == nil {
		n.LayoutGrow = 0
		return
	}
	if hasAutoLayout(n) {
		n.LayoutMode = layoutMode(cfg.Direction)
	}
	r.applyLayoutPatch(n, cfg)
	if cfg.Width == "" {
		n.LayoutGrow = 0
	}
}

// applyLayoutPatch applies only the fields present in cfg.
func (r *Renderer) applyLayoutPatch(n *scene.Node, cfg *section.Layout) {
	if cfg == nil {
		return
	}
	if hasAutoLayout(n) {
		if cfg.Direction != "" {
			n.LayoutMode = layoutMode(cfg.Direction)
		}
		if cfg.AlignItems != "" {
			n.CounterAlign = mapAlign(cfg.AlignItems)
		}
		if cfg.JustifyContent != "" {
			n.PrimaryAlign = mapJustify(cfg.JustifyContent)
		}
		if cfg.ItemSpacing != nil {
			n.ItemSpacing = r.tokens.Snap(*cfg.ItemSpacing, tokens.ItemSpacing)
		}
		if p := cfg.Padding; p != nil {
			n.SetPadding(
				r.tokens.Snap(p.Top, tokens.SectionPadding),
				r.tokens.Snap(p.Right, tokens.SectionPadding),
				r.tokens.Snap(p.Bottom, tokens.SectionPadding),
				r.tokens.Snap(p.Left, tokens.SectionPadding),
			)
		}
	}
	switch cfg.Width {
	case section.WidthFill:
		n.LayoutGrow = 1
	case section.WidthHug:
		n.LayoutGrow = 0
	}
}

func hexToRGB(hex string) (scene.RGB, bool) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return scene.RGB{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return scene.RGB{}, false
	}
	return scene.RGB{
		R: float64((v>>16)&255) / 255,
		G: float64((v>>8)&255) / 255,
		B: float64(v&255) / 255,
	}, true
}

func rgbToHex(c scene.RGB) string {
	ch := func(v float64) int { return min(max(int(math.Round(v*255)), 0), 255) }
	return fmt.Sprintf("#%02X%02X%02X", ch(c.R), ch(c.G), ch(c.B))
}

// solidFill returns a single-paint fill list, or nil for an unusable color.
func solidFill(hex string, opacity float64) []scene.Paint {
	rgb, ok := hexToRGB(hex)
	if !ok {
		return nil
	}
	return []scene.Paint{{Color: rgb, Opacity: opacity}}
}

func (r *Renderer) applyTypography(ctx context.Context, n *scene.Node, style section.TypographyStyle) error {
	tok := typographyToken(r.tokens, style)
	font, err := r.fonts.LoadTypography(ctx, tok)
	if err != nil {
		return err
	}
	n.Font = font
	n.FontSize = tok.FontSize
	n.LineHeight = tok.LineHeight
	n.Height = tok.LineHeight
	if fill := solidFill(r.tokens.Colors.Text, 1); fill != nil {
		n.Fills = fill
	} else {
		n.Fills = []scene.Paint{{Color: scene.RGB{R: 32.0 / 255, G: 32.0 / 255, B: 32.0 / 255}, Opacity: 1}}
	}
	return nil
}

func (r *Renderer) newFrame(name string) *scene.Node {
	f := r.host.NewNode(scene.KindFrame)
	f.Name = name
	f.LayoutMode = scene.LayoutVertical
	f.PrimarySizing = scene.SizingAuto
	f.CounterSizing = scene.SizingAuto
	return f
}

func (r *Renderer) buildText(ctx context.Context, def *section.Node) (*scene.Node, error) {
	n := r.host.NewNode(scene.KindText)
	spec := def.Text
	if spec == nil {
		spec = &section.TextSpec{Style: section.StyleBody}
	}
	if err := r.applyTypography(ctx, n, spec.Style); err != nil {
		return nil, err
	}
	n.Characters = spec.Content
	if spec.MaxWidth != nil {
		n.Width = min(*spec.MaxWidth, maxTextWidth)
	}
	r.applyLayout(n, def.Layout)
	return n, nil
}

func (r *Renderer) buttonFill(v section.ButtonVariant) []scene.Paint {
	switch v {
	case section.ButtonSecondary, section.ButtonTonal:
		return solidFill(r.tokens.Colors.SurfaceAlt, 1)
	case section.ButtonText:
		return nil
	default:
		if fill := solidFill(r.tokens.Colors.Accent, 1); fill != nil {
			return fill
		}
		return []scene.Paint{{Color: scene.RGB{R: 103.0 / 255, G: 80.0 / 255, B: 164.0 / 255}, Opacity: 1}}
	}
}

func (r *Renderer) labelFill(v section.ButtonVariant) []scene.Paint {
	if v == section.ButtonPrimary || v == "" {
		return []scene.Paint{{Color: scene.RGB{R: 1, G: 1, B: 1}, Opacity: 1}}
	}
	return solidFill(r.tokens.Colors.Text, 1)
}

var buttonFont = scene.Font{Family: "Inter", Style: "Medium"}

func (r *Renderer) buildButton(ctx context.Context, def *section.Node) (*scene.Node, error) {
	spec := def.Button
	if spec == nil {
		spec = &section.ButtonSpec{Variant: section.ButtonPrimary}
	}
	f := r.newFrame(def.ID)
	f.LayoutMode = scene.LayoutHorizontal
	f.ItemSpacing = r.tokens.Snap(12, tokens.ItemSpacing)
	pv := r.tokens.Snap(12, tokens.ItemSpacing)
	ph := r.tokens.Snap(16, tokens.SectionPadding)
	f.SetPadding(pv, ph, pv, ph)
	f.CornerRadius = r.tokens.Snap(8, tokens.Radius)
	f.Fills = r.buttonFill(spec.Variant)

	label := r.host.NewNode(scene.KindText)
	label.Name = "label"
	font := buttonFont
	if err := r.fonts.Load(ctx, font); err != nil {
		if ferr := r.fonts.Load(ctx, FallbackFont); ferr != nil {
			return nil, ferr
		}
		font = FallbackFont
	}
	label.Font = font
	label.FontSize = 16
	label.LineHeight = 20
	label.Fills = r.labelFill(spec.Variant)
	label.Characters = spec.Label
	f.AppendChild(label)

	if spec.Width == section.WidthFill {
		f.LayoutGrow = 1
	}
	r.applyLayout(f, def.Layout)
	if def.Layout == nil && spec.Width == section.WidthFill {
		f.LayoutGrow = 1
	}
	return f, nil
}

func (r *Renderer) buildImage(def *section.Node) *scene.Node {
	rect := r.host.NewNode(scene.KindRectangle)
	spec := def.Image
	if spec == nil {
		spec = &section.ImageSpec{Source: section.ImagePlaceholder, AspectRatio: 1}
	}
	rect.Resize(imageWidth, imageWidth/max(spec.AspectRatio, 0.1))
	radius := 12.0
	if spec.CornerRadius != nil {
		radius = *spec.CornerRadius
	}
	rect.CornerRadius = r.tokens.Snap(radius, tokens.Radius)
	rect.Fills = solidFill(r.tokens.Colors.SurfaceAlt, 1)
	if spec.URL != "" {
		rect.SetPluginData(ImageURLKey, spec.URL)
	}
	if spec.Alt != "" {
		rect.SetPluginData(ImageAltKey, spec.Alt)
	}
	r.applyLayout(rect, def.Layout)
	return rect
}

func (r *Renderer) buildListItem(ctx context.Context, item section.ListItem) (*scene.Node, error) {
	row := r.newFrame("item")
	row.ItemSpacing = r.tokens.Snap(4, tokens.ItemSpacing)
	row.SetPadding(0, 0, 0, 0)

	if item.Icon != nil {
		if icon, ok := r.instantiate(ctx, item.Icon, nil); ok {
			row.AppendChild(icon)
		}
	}

	title := r.host.NewNode(scene.KindText)
	title.Name = "title"
	if err := r.applyTypography(ctx, title, section.StyleH3); err != nil {
		return nil, err
	}
	title.Characters = item.Title
	row.AppendChild(title)

	if item.Subtitle != "" {
		sub := r.host.NewNode(scene.KindText)
		sub.Name = "subtitle"
		if err := r.applyTypography(ctx, sub, section.StyleBody); err != nil {
			return nil, err
		}
		sub.Characters = item.Subtitle
		row.AppendChild(sub)
	}
	return row, nil
}

func (r *Renderer) buildList(ctx context.Context, def *section.Node) (*scene.Node, error) {
	f := r.newFrame(def.ID)
	spacing := 12.0
	if def.Layout != nil && def.Layout.ItemSpacing != nil {
		spacing = *def.Layout.ItemSpacing
	}
	f.ItemSpacing = r.tokens.Snap(spacing, tokens.ItemSpacing)
	for _, item := range def.Items {
		row, err := r.buildListItem(ctx, item)
		if err != nil {
			return nil, err
		}
		f.AppendChild(row)
	}
	r.applyLayout(f, def.Layout)
	return f, nil
}

func (r *Renderer) buildContainer(ctx context.Context, def *section.Node) (*scene.Node, error) {
	f := r.newFrame(def.ID)
	if def.Background != nil {
		f.Fills = solidFill(def.Background.Color, def.Background.OpacityOr(1))
	}
	r.applyLayout(f, def.Layout)
	for _, child := range def.Children {
		n, err := r.createNode(ctx, child)
		if err != nil {
			return nil, err
		}
		f.AppendChild(n)
	}
	return f, nil
}

// buildComponentPlaceholder stands in for a component node whose component
// could not be imported.
func (r *Renderer) buildComponentPlaceholder(def *section.Node) *scene.Node {
	f := r.newFrame(def.ID)
	r.applyLayout(f, def.Layout)
	return f
}
