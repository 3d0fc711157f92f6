// Package section defines the section document: a typed tree of nodes that
// a model emits, the renderer draws and the patch engine edits in place.
package section

import (
	"encoding/json"
)

const (
	SchemaSection = "section-1.0-multi"
	SchemaPatch   = "section-patch-1.0"
)

type Viewport string

const (
	ViewportDesktop Viewport = "desktop"
	ViewportMobile  Viewport = "mobile"
)

func (v Viewport) Valid() bool {
	return v == ViewportDesktop || v == ViewportMobile
}

type SectionType string

const (
	SectionHero     SectionType = "hero"
	SectionFeatures SectionType = "features"
	SectionPricing  SectionType = "pricing"
	SectionFAQ      SectionType = "faq"
	SectionCustom   SectionType = "custom"
)

type NodeType string

const (
	NodeText      NodeType = "text"
	NodeButton    NodeType = "button"
	NodeImage     NodeType = "image"
	NodeList      NodeType = "list"
	NodeContainer NodeType = "container"
	NodeComponent NodeType = "component"
)

type Role string

type NodeWidth string

const (
	WidthHug  NodeWidth = "hug"
	WidthFill NodeWidth = "fill"
)

type Direction string

const (
	DirectionHorizontal Direction = "horizontal"
	DirectionVertical   Direction = "vertical"
)

type AlignItems string

const (
	AlignStart   AlignItems = "start"
	AlignCenter  AlignItems = "center"
	AlignEnd     AlignItems = "end"
	AlignStretch AlignItems = "stretch"
)

type JustifyContent string

const (
	JustifyStart        JustifyContent = "start"
	JustifyCenter       JustifyContent = "center"
	JustifyEnd          JustifyContent = "end"
	JustifySpaceBetween JustifyContent = "space-between"
)

type TypographyStyle string

const (
	StyleH1    TypographyStyle = "h1"
	StyleH2    TypographyStyle = "h2"
	StyleH3    TypographyStyle = "h3"
	StyleBody  TypographyStyle = "body"
	StyleSmall TypographyStyle = "small"
)

type ButtonVariant string

const (
	ButtonPrimary   ButtonVariant = "primary"
	ButtonSecondary ButtonVariant = "secondary"
	ButtonTonal     ButtonVariant = "tonal"
	ButtonText      ButtonVariant = "text"
)

type ImageSource string

const (
	ImagePlaceholder ImageSource = "placeholder"
	ImageRemote      ImageSource = "remote"
)

// Inset is a four-sided padding.
type Inset struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Layout is an auto-layout configuration. Zero-valued fields are absent.
type Layout struct {
	Direction      Direction      `json:"direction,omitempty"`
	AlignItems     AlignItems     `json:"alignItems,omitempty"`
	JustifyContent JustifyContent `json:"justifyContent,omitempty"`
	Columns        *int           `json:"columns,omitempty"`
	ItemSpacing    *float64       `json:"itemSpacing,omitempty"`
	Padding        *Inset         `json:"padding,omitempty"`
	Width          NodeWidth      `json:"width,omitempty"`
}

// Fill is a solid background fill.
type Fill struct {
	Type    string   `json:"type"`
	Color   string   `json:"color"`
	Opacity *float64 `json:"opacity,omitempty"`
}

// OpacityOr returns the fill opacity, or def when unset.
func (f *Fill) OpacityOr(def float64) float64 {
	if f == nil || f.Opacity == nil {
		return def
	}
	return *f.Opacity
}

// ComponentRef points at a component in the host's library.
type ComponentRef struct {
	ComponentKey string            `json:"componentKey"`
	Variant      map[string]string `json:"variant,omitempty"`
}

type TextSpec struct {
	Content  string          `json:"content"`
	Style    TypographyStyle `json:"style"`
	MaxWidth *float64        `json:"maxWidth,omitempty"`
}

type ButtonSpec struct {
	Label   string        `json:"label"`
	Variant ButtonVariant `json:"variant"`
	Width   NodeWidth     `json:"width,omitempty"`
}

type ImageSpec struct {
	Source       ImageSource `json:"source"`
	URL          string      `json:"url,omitempty"`
	Alt          string      `json:"alt,omitempty"`
	AspectRatio  float64     `json:"aspectRatio"`
	CornerRadius *float64    `json:"cornerRadius,omitempty"`
}

// ListItem is one row of a list node. Rows are not addressable by id.
type ListItem struct {
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle,omitempty"`
	Icon     *ComponentRef `json:"icon,omitempty"`
}

// Node is one element of the section tree. Type selects which payload field
// is meaningful:
//
//	text      Text
//	button    Button, UseComponent (optional)
//	image     Image
//	list      Items
//	container Children, Background, Layout (required)
//	component UseComponent (required)
type Node struct {
	ID     string   `json:"id"`
	Type   NodeType `json:"type"`
	Role   Role     `json:"role,omitempty"`
	Layout *Layout  `json:"layout,omitempty"`

	Text         *TextSpec     `json:"text,omitempty"`
	Button       *ButtonSpec   `json:"button,omitempty"`
	Image        *ImageSpec    `json:"image,omitempty"`
	Items        []ListItem    `json:"items,omitempty"`
	Children     []*Node       `json:"children,omitempty"`
	Background   *Fill         `json:"background,omitempty"`
	UseComponent *ComponentRef `json:"useComponent,omitempty"`
}

// MarshalJSON always writes children for containers and items for lists, so
// empty collections survive a round trip.
func (n Node) MarshalJSON() ([]byte, error) {
	type plain Node
	out := struct {
		plain
		Items    *[]ListItem `json:"items,omitempty"`
		Children *[]*Node    `json:"children,omitempty"`
	}{plain: plain(n)}
	switch n.Type {
	case NodeList:
		items := n.Items
		if items == nil {
			items = []ListItem{}
		}
		out.Items = &items
	case NodeContainer:
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		out.Children = &children
	}
	return json.Marshal(out)
}

// UnmarshalJSON mirrors MarshalJSON: containers and lists decode with non-nil
// collections.
func (n *Node) UnmarshalJSON(b []byte) error {
	type plain Node
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*n = Node(p)
	switch n.Type {
	case NodeList:
		if n.Items == nil {
			n.Items = []ListItem{}
		}
	case NodeContainer:
		if n.Children == nil {
			n.Children = []*Node{}
		}
	}
	return nil
}

// IsContainer reports whether the node may hold children.
func (n *Node) IsContainer() bool {
	return n != nil && n.Type == NodeContainer
}

// Section is the root document.
type Section struct {
	Type        SectionType `json:"type"`
	Theme       string      `json:"theme,omitempty"`
	Heading     *string     `json:"heading,omitempty"`
	Subheading  *string     `json:"subheading,omitempty"`
	Padding     Inset       `json:"padding"`
	ItemSpacing float64     `json:"itemSpacing"`
	Layout      *Layout     `json:"layout,omitempty"`
	Background  *Fill       `json:"background,omitempty"`
	Items       []*Node     `json:"items"`
}

// UnmarshalJSON keeps Items non-nil.
func (s *Section) UnmarshalJSON(b []byte) error {
	type plain Section
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*s = Section(p)
	if s.Items == nil {
		s.Items = []*Node{}
	}
	return nil
}

type Meta struct {
	Schema string `json:"schema"`
}

// Variant is one viewport rendition of a generated section.
type Variant struct {
	Viewport Viewport `json:"viewport"`
	Section  *Section `json:"section"`
}

// Response is the generation envelope.
type Response struct {
	Meta     Meta      `json:"meta"`
	Variants []Variant `json:"variants"`
}
