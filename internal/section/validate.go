package section

import (
	"errors"
	"fmt"
	"regexp"
)

var hexColor = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// Validate checks the structural invariants the JSON schema cannot express
// (unique ids) along with the per-variant payload rules. All problems are
// reported together.
func (s *Section) Validate() error {
	if s == nil {
		return errors.New("section is nil")
	}
	var errs []error
	switch s.Type {
	case SectionHero, SectionFeatures, SectionPricing, SectionFAQ, SectionCustom:
	default:
		errs = append(errs, fmt.Errorf("type: unknown section type %q", s.Type))
	}
	if s.Background != nil {
		errs = append(errs, validateFill("background", s.Background)...)
	}
	for i, n := range s.Items {
		errs = append(errs, validateNode(fmt.Sprintf("items[%d]", i), n)...)
	}
	for _, id := range s.DuplicateIDs() {
		errs = append(errs, fmt.Errorf("duplicate node id %q", id))
	}
	return errors.Join(errs...)
}

func validateNode(path string, n *Node) []error {
	if n == nil {
		return []error{fmt.Errorf("%s: node is null", path)}
	}
	var errs []error
	if n.ID == "" {
		errs = append(errs, fmt.Errorf("%s.id: required", path))
	}
	switch n.Type {
	case NodeText:
		if n.Text == nil {
			errs = append(errs, fmt.Errorf("%s.text: required for text nodes", path))
		} else if !validStyle(n.Text.Style) {
			errs = append(errs, fmt.Errorf("%s.text.style: unknown style %q", path, n.Text.Style))
		}
	case NodeButton:
		if n.Button == nil {
			errs = append(errs, fmt.Errorf("%s.button: required for button nodes", path))
		}
	case NodeImage:
		if n.Image == nil {
			errs = append(errs, fmt.Errorf("%s.image: required for image nodes", path))
		} else if n.Image.AspectRatio <= 0 {
			errs = append(errs, fmt.Errorf("%s.image.aspectRatio: must be positive", path))
		}
	case NodeList:
	case NodeContainer:
		if n.Layout == nil {
			errs = append(errs, fmt.Errorf("%s.layout: required for container nodes", path))
		}
		if n.Background != nil {
			errs = append(errs, validateFill(path+".background", n.Background)...)
		}
		for i, c := range n.Children {
			errs = append(errs, validateNode(fmt.Sprintf("%s.children[%d]", path, i), c)...)
		}
	case NodeComponent:
		if n.UseComponent == nil || n.UseComponent.ComponentKey == "" {
			errs = append(errs, fmt.Errorf("%s.useComponent: required for component nodes", path))
		}
	default:
		errs = append(errs, fmt.Errorf("%s.type: unknown node type %q", path, n.Type))
	}
	if n.Type != NodeContainer && len(n.Children) > 0 {
		errs = append(errs, fmt.Errorf("%s.children: only container nodes have children", path))
	}
	return errs
}

func validateFill(path string, f *Fill) []error {
	var errs []error
	if f.Type != "solid" {
		errs = append(errs, fmt.Errorf("%s.type: only solid fills are supported", path))
	}
	if !hexColor.MatchString(f.Color) {
		errs = append(errs, fmt.Errorf("%s.color: %q is not a #RRGGBB color", path, f.Color))
	}
	return errs
}

func validStyle(s TypographyStyle) bool {
	switch s {
	case StyleH1, StyleH2, StyleH3, StyleBody, StyleSmall:
		return true
	}
	return false
}
