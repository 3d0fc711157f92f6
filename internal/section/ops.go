package section

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type OpName string

const (
	OpUpdateSection   OpName = "updateSection"
	OpReplaceItemText OpName = "replaceItemText"
	OpUpdateItem      OpName = "updateItem"
	OpInsertItem      OpName = "insertItem"
	OpRemoveItem      OpName = "removeItem"
	OpReorderItem     OpName = "reorderItem"
)

var (
	ErrUnsupportedOp  = errors.New("unsupported patch operation")
	ErrTargetNotFound = errors.New("target not found")
	ErrNotText        = errors.New("target is not a text node")
	ErrNotContainer   = errors.New("parent is not a container")
	ErrMissingItem    = errors.New("insertItem carries no item")
)

// Op is one patch operation. The set of operations is closed: every
// evaluator implements OpVisitor, so a new operation cannot be added without
// teaching both the document patcher and the tree patcher about it.
type Op interface {
	Name() OpName
	Accept(v OpVisitor) error
}

// OpVisitor evaluates patch operations against one representation.
type OpVisitor interface {
	UpdateSection(op *UpdateSectionOp) error
	ReplaceItemText(op *ReplaceItemTextOp) error
	UpdateItem(op *UpdateItemOp) error
	InsertItem(op *InsertItemOp) error
	RemoveItem(op *RemoveItemOp) error
	ReorderItem(op *ReorderItemOp) error
}

// InsetPatch is a partial padding: nil sides are left untouched.
type InsetPatch struct {
	Top    *float64 `json:"top,omitempty"`
	Right  *float64 `json:"right,omitempty"`
	Bottom *float64 `json:"bottom,omitempty"`
	Left   *float64 `json:"left,omitempty"`
}

// FillPatch is a partial background fill.
type FillPatch struct {
	Type    string   `json:"type,omitempty"`
	Color   string   `json:"color,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
}

type SectionChanges struct {
	Padding     *InsetPatch `json:"padding,omitempty"`
	ItemSpacing *float64    `json:"itemSpacing,omitempty"`
	Layout      *Layout     `json:"layout,omitempty"`
	Background  *FillPatch  `json:"background,omitempty"`
	Heading     *string     `json:"heading,omitempty"`
	Subheading  *string     `json:"subheading,omitempty"`
}

type UpdateSectionOp struct {
	Changes SectionChanges `json:"changes"`
}

type ReplaceItemTextOp struct {
	TargetID string          `json:"targetId"`
	Content  string          `json:"content"`
	Style    TypographyStyle `json:"style,omitempty"`
}

type TextPatch struct {
	Content  *string         `json:"content,omitempty"`
	Style    TypographyStyle `json:"style,omitempty"`
	MaxWidth *float64        `json:"maxWidth,omitempty"`
}

type ButtonPatch struct {
	Label   string        `json:"label,omitempty"`
	Variant ButtonVariant `json:"variant,omitempty"`
	Width   NodeWidth     `json:"width,omitempty"`
}

type ItemChanges struct {
	Layout       *Layout       `json:"layout,omitempty"`
	Text         *TextPatch    `json:"text,omitempty"`
	Button       *ButtonPatch  `json:"button,omitempty"`
	UseComponent *ComponentRef `json:"useComponent,omitempty"`
}

type UpdateItemOp struct {
	TargetID string      `json:"targetId"`
	Changes  ItemChanges `json:"changes"`
}

type InsertItemOp struct {
	ParentID string   `json:"parentId"`
	Position Position `json:"position"`
	Item     *Node    `json:"item"`
}

type RemoveItemOp struct {
	TargetID string `json:"targetId"`
}

type ReorderItemOp struct {
	TargetID string `json:"targetId"`
	BeforeID string `json:"beforeId,omitempty"`
	AfterID  string `json:"afterId,omitempty"`
}

// UnsupportedOp stands in for an operation that could not be decoded. Every
// evaluator skips it.
type UnsupportedOp struct {
	Op     string
	Reason string
}

func (*UpdateSectionOp) Name() OpName   { return OpUpdateSection }
func (*ReplaceItemTextOp) Name() OpName { return OpReplaceItemText }
func (*UpdateItemOp) Name() OpName      { return OpUpdateItem }
func (*InsertItemOp) Name() OpName      { return OpInsertItem }
func (*RemoveItemOp) Name() OpName      { return OpRemoveItem }
func (*ReorderItemOp) Name() OpName     { return OpReorderItem }
func (o *UnsupportedOp) Name() OpName   { return OpName(o.Op) }

// WithheldOp wraps an operation that must be skipped because a sibling
// evaluator could not apply it. It keeps Op's name and reports Reason.
type WithheldOp struct {
	Op     Op
	Reason error
}

func (o *WithheldOp) Name() OpName { return o.Op.Name() }

func (o *WithheldOp) Accept(OpVisitor) error { return o.Reason }

func (o *UpdateSectionOp) Accept(v OpVisitor) error   { return v.UpdateSection(o) }
func (o *ReplaceItemTextOp) Accept(v OpVisitor) error { return v.ReplaceItemText(o) }
func (o *UpdateItemOp) Accept(v OpVisitor) error      { return v.UpdateItem(o) }
func (o *InsertItemOp) Accept(v OpVisitor) error      { return v.InsertItem(o) }
func (o *RemoveItemOp) Accept(v OpVisitor) error      { return v.RemoveItem(o) }
func (o *ReorderItemOp) Accept(v OpVisitor) error     { return v.ReorderItem(o) }

func (o *UnsupportedOp) Accept(OpVisitor) error {
	if o.Reason != "" {
		return fmt.Errorf("%w %q: %s", ErrUnsupportedOp, o.Op, o.Reason)
	}
	return fmt.Errorf("%w %q", ErrUnsupportedOp, o.Op)
}

type PositionKind int

const (
	PositionEnd PositionKind = iota
	PositionStart
	PositionIndex
)

// Position is where insertItem places the new node: "start", "end" or an
// integer index.
type Position struct {
	Kind  PositionKind
	Index int
}

func AtStart() Position      { return Position{Kind: PositionStart} }
func AtEnd() Position        { return Position{Kind: PositionEnd} }
func AtIndex(i int) Position { return Position{Kind: PositionIndex, Index: i} }

// Resolve maps the position onto a collection of the given length. Integer
// positions are clamped into [0, length].
func (p Position) Resolve(length int) int {
	switch p.Kind {
	case PositionStart:
		return 0
	case PositionIndex:
		return min(max(p.Index, 0), length)
	default:
		return length
	}
}

func (p Position) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PositionStart:
		return []byte(`"start"`), nil
	case PositionIndex:
		return []byte(strconv.Itoa(p.Index)), nil
	default:
		return []byte(`"end"`), nil
	}
}

func (p *Position) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		switch s {
		case "start":
			*p = AtStart()
		case "end":
			*p = AtEnd()
		default:
			return fmt.Errorf("invalid position %q", s)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("position must be \"start\", \"end\" or an integer: %s", string(b))
	}
	// Out-of-range indexes saturate instead of wrapping.
	switch {
	case f >= math.MaxInt:
		*p = AtIndex(math.MaxInt)
	case f <= math.MinInt:
		*p = AtIndex(math.MinInt)
	default:
		*p = AtIndex(int(f))
	}
	return nil
}

// DecodeOp decodes one operation by its "op" tag. Unknown tags and payloads
// that do not decode come back as *UnsupportedOp, never as an error, so one
// bad entry cannot sink its batch.
func DecodeOp(raw json.RawMessage) Op {
	var head struct {
		Op string `json:"op"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return &UnsupportedOp{Reason: err.Error()}
	}
	var op Op
	switch OpName(head.Op) {
	case OpUpdateSection:
		op = &UpdateSectionOp{}
	case OpReplaceItemText:
		op = &ReplaceItemTextOp{}
	case OpUpdateItem:
		op = &UpdateItemOp{}
	case OpInsertItem:
		op = &InsertItemOp{}
	case OpRemoveItem:
		op = &RemoveItemOp{}
	case OpReorderItem:
		op = &ReorderItemOp{}
	default:
		return &UnsupportedOp{Op: head.Op}
	}
	if err := json.Unmarshal(raw, op); err != nil {
		return &UnsupportedOp{Op: head.Op, Reason: err.Error()}
	}
	return op
}

// EncodeOp writes an operation with its "op" tag.
func EncodeOp(op Op) ([]byte, error) {
	switch o := op.(type) {
	case *UnsupportedOp:
		return json.Marshal(map[string]string{"op": o.Op})
	case *WithheldOp:
		return EncodeOp(o.Op)
	}
	body, err := json.Marshal(op)
	if err != nil {
		return nil, err
	}
	tag := fmt.Sprintf(`{"op":%q`, op.Name())
	rest := strings.TrimPrefix(string(body), "{")
	if rest == "}" {
		return []byte(tag + "}"), nil
	}
	return []byte(tag + "," + rest), nil
}

// PatchResponse is the edit envelope.
type PatchResponse struct {
	Meta Meta `json:"meta"`
	Ops  []Op `json:"ops"`
}

func (r *PatchResponse) UnmarshalJSON(b []byte) error {
	var raw struct {
		Meta Meta              `json:"meta"`
		Ops  []json.RawMessage `json:"ops"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Meta = raw.Meta
	r.Ops = make([]Op, 0, len(raw.Ops))
	for _, o := range raw.Ops {
		r.Ops = append(r.Ops, DecodeOp(o))
	}
	return nil
}

func (r PatchResponse) MarshalJSON() ([]byte, error) {
	ops := make([]json.RawMessage, 0, len(r.Ops))
	for _, op := range r.Ops {
		b, err := EncodeOp(op)
		if err != nil {
			return nil, err
		}
		ops = append(ops, b)
	}
	return json.Marshal(struct {
		Meta Meta              `json:"meta"`
		Ops  []json.RawMessage `json:"ops"`
	}{r.Meta, ops})
}
