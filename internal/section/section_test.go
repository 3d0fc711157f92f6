package section

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSectionJSON = `{
  "type": "hero",
  "heading": "Ship faster",
  "padding": {"top": 64, "right": 32, "bottom": 64, "left": 32},
  "itemSpacing": 24,
  "background": {"type": "solid", "color": "#0F172A"},
  "items": [
    {"id": "title", "type": "text", "role": "heading", "text": {"content": "Build pages", "style": "h1"}},
    {"id": "row", "type": "container", "layout": {"direction": "horizontal", "itemSpacing": 16}, "children": [
      {"id": "cta", "type": "button", "button": {"label": "Start", "variant": "primary"}},
      {"id": "inner", "type": "container", "layout": {"direction": "vertical"}, "children": [
        {"id": "deep", "type": "text", "text": {"content": "Deep", "style": "small"}}
      ]},
      {"id": "empty", "type": "container", "layout": {}, "children": []}
    ]},
    {"id": "perks", "type": "list", "items": [{"title": "Fast"}, {"title": "Safe", "subtitle": "Really"}]},
    {"id": "hero-img", "type": "image", "image": {"source": "placeholder", "aspectRatio": 1.5}},
    {"id": "badge", "type": "component", "useComponent": {"componentKey": "k1", "variant": {"Tone": "Info"}}}
  ]
}`

func decodeSample(t *testing.T) *Section {
	t.Helper()
	var s Section
	require.NoError(t, json.Unmarshal([]byte(sampleSectionJSON), &s))
	return &s
}

func TestSection_JSONRoundTrip(t *testing.T) {
	s := decodeSample(t)
	require.NoError(t, s.Validate())

	b, err := json.Marshal(s)
	require.NoError(t, err)
	var again Section
	require.NoError(t, json.Unmarshal(b, &again))
	assert.Equal(t, s, &again)

	empty := again.Items[1].Children[2]
	assert.NotNil(t, empty.Children)
	assert.Empty(t, empty.Children)
	assert.Contains(t, string(b), `"children":[]`)
}

func TestLocate_DepthFirstPreOrder(t *testing.T) {
	s := decodeSample(t)

	loc, ok := s.Locate("deep")
	require.True(t, ok)
	assert.Equal(t, 0, loc.Index)
	assert.Equal(t, "Deep", loc.Node.Text.Content)
	assert.Same(t, &s.Items[1].Children[1].Children, loc.Siblings)

	loc, ok = s.Locate("badge")
	require.True(t, ok)
	assert.Equal(t, 4, loc.Index)
	assert.Same(t, &s.Items, loc.Siblings)

	_, ok = s.Locate("missing")
	assert.False(t, ok)
}

func TestLocate_ListItemsAreOpaque(t *testing.T) {
	s := decodeSample(t)
	_, ok := s.Locate("Fast")
	assert.False(t, ok)
}

func TestLocate_FirstMatchWinsOnDuplicates(t *testing.T) {
	s := testSection(
		container("box", textNode("dup", "nested")),
		textNode("dup", "top"),
	)

	loc, ok := s.Locate("dup")
	require.True(t, ok)
	assert.Equal(t, "nested", loc.Node.Text.Content)
	assert.Equal(t, []string{"dup"}, s.DuplicateIDs())
	assert.ErrorContains(t, s.Validate(), `duplicate node id "dup"`)
}

func TestChildrenOf(t *testing.T) {
	s := decodeSample(t)

	root, ok := s.ChildrenOf(RootParentID)
	require.True(t, ok)
	assert.Len(t, *root, 5)

	row, ok := s.ChildrenOf("row")
	require.True(t, ok)
	assert.Len(t, *row, 3)

	_, ok = s.ChildrenOf("cta")
	assert.False(t, ok)
	_, ok = s.ChildrenOf("ghost")
	assert.False(t, ok)
}

func TestWalk_StopsEarly(t *testing.T) {
	s := decodeSample(t)
	var seen []string
	Walk(s.Items, func(n *Node, depth int) bool {
		seen = append(seen, n.ID)
		return n.ID != "deep"
	})
	assert.Equal(t, []string{"title", "row", "cta", "inner", "deep"}, seen)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	s := &Section{
		Type: "landing",
		Items: []*Node{
			{ID: "", Type: NodeText},
			{ID: "c", Type: NodeContainer, Background: &Fill{Type: "solid", Color: "red"}},
			{ID: "x", Type: "video"},
		},
	}
	err := s.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `unknown section type "landing"`)
	assert.Contains(t, msg, "items[0].id: required")
	assert.Contains(t, msg, "items[0].text: required")
	assert.Contains(t, msg, "items[1].layout: required")
	assert.Contains(t, msg, "items[1].background.color")
	assert.Contains(t, msg, `items[2].type: unknown node type "video"`)
}

func TestPatchResponse_DecodeAndEncode(t *testing.T) {
	raw := `{"meta":{"schema":"section-patch-1.0"},"ops":[
		{"op":"updateSection","changes":{"itemSpacing":20,"padding":{"top":8}}},
		{"op":"replaceItemText","targetId":"title","content":"Hi","style":"h2"},
		{"op":"updateItem","targetId":"cta","changes":{"button":{"label":"Go"}}},
		{"op":"insertItem","parentId":"root","position":"start","item":{"id":"n","type":"text","text":{"content":"N","style":"body"}}},
		{"op":"insertItem","parentId":"row","position":2,"item":{"id":"m","type":"container","layout":{},"children":[]}},
		{"op":"removeItem","targetId":"badge"},
		{"op":"reorderItem","targetId":"cta","afterId":"inner"},
		{"op":"insertItem","parentId":"row","position":"middle","item":{"id":"z","type":"text"}}
	]}`
	var resp PatchResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	require.Len(t, resp.Ops, 8)

	us := resp.Ops[0].(*UpdateSectionOp)
	assert.Equal(t, 20.0, *us.Changes.ItemSpacing)
	assert.Equal(t, 8.0, *us.Changes.Padding.Top)
	assert.Nil(t, us.Changes.Padding.Left)

	ins := resp.Ops[3].(*InsertItemOp)
	assert.Equal(t, AtStart(), ins.Position)
	assert.Equal(t, AtIndex(2), resp.Ops[4].(*InsertItemOp).Position)
	assert.Equal(t, "inner", resp.Ops[6].(*ReorderItemOp).AfterID)

	bad, ok := resp.Ops[7].(*UnsupportedOp)
	require.True(t, ok)
	assert.Equal(t, "insertItem", bad.Op)
	assert.Contains(t, bad.Reason, "middle")

	b, err := json.Marshal(PatchResponse{Meta: resp.Meta, Ops: resp.Ops[:7]})
	require.NoError(t, err)
	var again PatchResponse
	require.NoError(t, json.Unmarshal(b, &again))
	assert.Equal(t, resp.Ops[:7], again.Ops)
}

func TestPosition_Resolve(t *testing.T) {
	assert.Equal(t, 0, AtStart().Resolve(3))
	assert.Equal(t, 3, AtEnd().Resolve(3))
	assert.Equal(t, 3, AtIndex(99).Resolve(3))
	assert.Equal(t, 0, AtIndex(-1).Resolve(3))
	assert.Equal(t, 2, AtIndex(2).Resolve(3))
}

func TestPosition_HugeIndexesSaturate(t *testing.T) {
	var p Position
	require.NoError(t, json.Unmarshal([]byte(`1e19`), &p))
	assert.Equal(t, 3, p.Resolve(3))

	require.NoError(t, json.Unmarshal([]byte(`-1e19`), &p))
	assert.Equal(t, 0, p.Resolve(3))

	require.NoError(t, json.Unmarshal([]byte(`2`), &p))
	assert.Equal(t, AtIndex(2), p)
}
