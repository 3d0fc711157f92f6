package studio

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"figsiner/internal/config"
	"figsiner/internal/llm"
	"figsiner/internal/render"
	"figsiner/internal/scene"
	"figsiner/internal/section"
	"figsiner/internal/storage"
)

const generated = `{
  "meta": {"schema": "section-1.0-multi"},
  "variants": [
    {"viewport": "desktop", "section": {
      "type": "hero",
      "padding": {"top": 64, "right": 32, "bottom": 64, "left": 32},
      "itemSpacing": 24,
      "items": [
        {"id": "title", "type": "text", "text": {"content": "Ship faster", "style": "h1"}},
        {"id": "cta", "type": "button", "button": {"label": "Start", "variant": "primary"}}
      ]
    }},
    {"viewport": "mobile", "section": {
      "type": "hero",
      "padding": {"top": 32, "right": 16, "bottom": 32, "left": 16},
      "itemSpacing": 16,
      "items": [
        {"id": "title", "type": "text", "text": {"content": "Ship faster", "style": "h2"}}
      ]
    }}
  ]
}`

type fakeClient struct {
	reply string
	err   error
	calls int
}

func (c *fakeClient) Complete(ctx context.Context, system, user string) (string, error) {
	c.calls++
	return c.reply, c.err
}

func (c *fakeClient) ListModels(ctx context.Context) ([]string, error) {
	return []string{"m"}, nil
}

func newTestStudio(t *testing.T, client *fakeClient, opts ...Option) (*Studio, *scene.MemoryHost) {
	t.Helper()
	return newTestStudioOn(t, scene.NewMemoryHost(), client, opts...)
}

func newTestStudioOn(t *testing.T, h *scene.MemoryHost, client *fakeClient, opts ...Option) (*Studio, *scene.MemoryHost) {
	t.Helper()
	source := func(context.Context) (llm.Client, error) { return client, nil }
	pb := llm.NewPromptBuilder([]byte(`{}`), []byte(`[]`))
	return New(h, source, pb, opts...), h
}

func generate(t *testing.T, s *Studio, client *fakeClient) *GenerateResult {
	t.Helper()
	client.reply = generated
	res, err := s.Generate(context.Background(), "a hero", nil)
	require.NoError(t, err)
	return res
}

func TestGenerate_StoresEditableVariants(t *testing.T) {
	client := &fakeClient{}
	s, h := newTestStudio(t, client)
	res := generate(t, s, client)

	require.Len(t, res.Frames, 2)
	require.Len(t, h.Page().Children(), 2)

	desktop := h.Page().FindByID(res.Frames[section.ViewportDesktop])
	vp, doc, err := LoadSection(desktop)
	require.NoError(t, err)
	assert.Equal(t, section.ViewportDesktop, vp)
	assert.Equal(t, section.SectionHero, doc.Type)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "Ship faster", doc.Items[0].Text.Content)

	mobile := h.Page().FindByID(res.Frames[section.ViewportMobile])
	assert.Greater(t, mobile.X, desktop.X)
}

func TestGenerate_StacksBelowExistingFrames(t *testing.T) {
	client := &fakeClient{}
	s, h := newTestStudio(t, client)
	first := generate(t, s, client)
	second := generate(t, s, client)

	a := h.Page().FindByID(first.Frames[section.ViewportDesktop])
	b := h.Page().FindByID(second.Frames[section.ViewportDesktop])
	assert.GreaterOrEqual(t, b.Y, a.Y+a.Height+frameGap)
	assert.Len(t, h.Page().Children(), 4)
}

func TestGenerate_IntoTargets(t *testing.T) {
	client := &fakeClient{}
	s, h := newTestStudio(t, client)
	desk := h.NewNode(scene.KindFrame)
	mob := h.NewNode(scene.KindFrame)
	h.Page().AppendChild(desk)
	h.Page().AppendChild(mob)

	client.reply = generated
	res, err := s.Generate(context.Background(), "a hero", []string{desk.ID, mob.ID})
	require.NoError(t, err)
	assert.Equal(t, desk.ID, res.Frames[section.ViewportDesktop])
	assert.Equal(t, mob.ID, res.Frames[section.ViewportMobile])
	assert.Len(t, h.Page().Children(), 2)

	_, err = s.Generate(context.Background(), "a hero", []string{"missing"})
	assert.ErrorIs(t, err, ErrFrameNotFound)
}

func TestEdit_AppliesToDocumentAndTree(t *testing.T) {
	client := &fakeClient{}
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "studio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	s, h := newTestStudio(t, client, WithStore(store))
	frameID := generate(t, s, client).Frames[section.ViewportDesktop]

	client.reply = `{"meta":{"schema":"section-patch-1.0"},"ops":[
		{"op":"replaceItemText","targetId":"title","content":"Ship today"},
		{"op":"removeItem","targetId":"ghost"}
	]}`
	res, err := s.Edit(context.Background(), frameID, "punchier title")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, section.OpRemoveItem, res.Skipped[0].Op)

	root := h.Page().FindByID(frameID)
	title, ok := render.Locate(render.ContentFrame(root), "title")
	require.True(t, ok)
	assert.Equal(t, "Ship today", title.Node.Characters)

	_, doc, err := LoadSection(root)
	require.NoError(t, err)
	assert.Equal(t, "Ship today", doc.Items[0].Text.Content)

	edits, err := store.ListEdits(context.Background(), frameID)
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "punchier title", edits[0].Brief)
	assert.Equal(t, 1, edits[0].Skipped)

	saved, err := store.LoadFrame(context.Background(), frameID)
	require.NoError(t, err)
	_, doc, err = LoadSection(saved)
	require.NoError(t, err)
	assert.Equal(t, "Ship today", doc.Items[0].Text.Content)
}

func TestEdit_FailuresLeaveStateUnchanged(t *testing.T) {
	client := &fakeClient{}
	s, h := newTestStudio(t, client)
	frameID := generate(t, s, client).Frames[section.ViewportDesktop]
	before, err := scene.Encode(h.Page())
	require.NoError(t, err)

	cases := map[string]*fakeClient{
		"malformed json": {reply: `{"meta": {"schema": "section-patch-1.0"}, "ops": [`},
		"schema":         {reply: `{"meta":{"schema":"section-patch-1.0"},"ops":[{"op":"removeItem"}]}`},
		"transport":      {err: errors.New("connection refused")},
	}
	for name, c := range cases {
		client.reply, client.err = c.reply, c.err
		_, err := s.Edit(context.Background(), frameID, "anything")
		assert.Error(t, err, name)

		after, err := scene.Encode(h.Page())
		require.NoError(t, err)
		assert.JSONEq(t, string(before), string(after), name)
	}
	assert.False(t, s.Busy())
}

func TestEdit_NotEditable(t *testing.T) {
	client := &fakeClient{}
	s, h := newTestStudio(t, client)
	plain := h.NewNode(scene.KindFrame)
	h.Page().AppendChild(plain)

	_, err := s.Edit(context.Background(), plain.ID, "x")
	assert.ErrorIs(t, err, ErrNotEditable)
	assert.Zero(t, client.calls)

	plain.SetPluginData(render.ViewportKey, "desktop")
	plain.SetPluginData(render.SectionKey, "{oops")
	_, err = s.Edit(context.Background(), plain.ID, "x")
	assert.ErrorIs(t, err, ErrNotEditable)

	_, err = s.Edit(context.Background(), "nope", "x")
	assert.ErrorIs(t, err, ErrFrameNotFound)
}

func TestStudio_BusyGuard(t *testing.T) {
	client := &fakeClient{reply: generated}
	s, _ := newTestStudio(t, client)

	release, ok := s.guard.TryAcquire()
	require.True(t, ok)
	_, err := s.Generate(context.Background(), "x", nil)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = s.Edit(context.Background(), "any", "x")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Zero(t, client.calls)

	release()
	release()
	assert.False(t, s.Busy())
	_, err = s.Generate(context.Background(), "x", nil)
	assert.NoError(t, err)
}

func TestApplyPatch_Offline(t *testing.T) {
	client := &fakeClient{}
	s, h := newTestStudio(t, client)
	frameID := generate(t, s, client).Frames[section.ViewportDesktop]
	calls := client.calls

	patch, err := llm.DecodePatch(`{"meta":{"schema":"section-patch-1.0"},"ops":[
		{"op":"reorderItem","targetId":"cta","beforeId":"title"}
	]}`)
	require.NoError(t, err)
	res, err := s.ApplyPatch(context.Background(), frameID, patch, "manual")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, calls, client.calls)

	content := render.ContentFrame(h.Page().FindByID(frameID))
	assert.Equal(t, "cta", content.Children()[0].Name)
	assert.Equal(t, "cta", res.Section.Items[0].ID)
}

func TestApplyPatch_FontFailureSkipsWholeOp(t *testing.T) {
	h := scene.NewMemoryHost(scene.WithFonts(
		scene.Font{Family: "Inter", Style: "Bold"},
		scene.Font{Family: "Inter", Style: "Semi Bold"},
		scene.Font{Family: "Inter", Style: "Medium"},
	))
	client := &fakeClient{}
	s, _ := newTestStudioOn(t, h, client)
	frameID := generate(t, s, client).Frames[section.ViewportDesktop]
	root := h.Page().FindByID(frameID)
	title, ok := render.Locate(render.ContentFrame(root), "title")
	require.True(t, ok)
	require.Zero(t, title.Node.LayoutGrow)

	patch, err := llm.DecodePatch(`{"meta":{"schema":"section-patch-1.0"},"ops":[
		{"op":"updateItem","targetId":"title","changes":{"layout":{"width":"fill"},"text":{"style":"body","content":"Quietly"}}},
		{"op":"replaceItemText","targetId":"cta","content":"ignored"},
		{"op":"updateItem","targetId":"cta","changes":{"button":{"label":"Go"}}}
	]}`)
	require.NoError(t, err)
	res, err := s.ApplyPatch(context.Background(), frameID, patch, "quieter")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, section.OpUpdateItem, res.Skipped[0].Op)
	assert.ErrorIs(t, res.Skipped[0].Reason, scene.ErrFontUnavailable)
	assert.ErrorIs(t, res.Skipped[1].Reason, section.ErrNotText)

	assert.Equal(t, "Ship faster", title.Node.Characters)
	assert.Equal(t, scene.Font{Family: "Inter", Style: "Bold"}, title.Node.Font)
	assert.Zero(t, title.Node.LayoutGrow)

	_, doc, err := LoadSection(root)
	require.NoError(t, err)
	assert.Equal(t, "Ship faster", doc.Items[0].Text.Content)
	assert.Equal(t, section.StyleH1, doc.Items[0].Text.Style)
	assert.Nil(t, doc.Items[0].Layout)
	assert.Equal(t, "Go", doc.Items[1].Button.Label)
}

type memSettings struct {
	saved *config.Settings
}

func (m *memSettings) SaveSettings(ctx context.Context, s config.Settings) error {
	m.saved = &s
	return nil
}

func (m *memSettings) LoadSettings(ctx context.Context) (config.Settings, bool, error) {
	if m.saved == nil {
		return config.Settings{}, false, nil
	}
	return *m.saved, true, nil
}

func TestResolveSettings_Layers(t *testing.T) {
	base := config.Settings{Provider: "openai", Host: "http://base", Model: "base-model"}
	store := &memSettings{}
	ctx := context.Background()

	got, err := ResolveSettings(ctx, base, store)
	require.NoError(t, err)
	assert.Equal(t, base, got)

	require.NoError(t, store.SaveSettings(ctx, config.Settings{Host: "http://saved", APIKey: "k"}))
	got, err = ResolveSettings(WithSettings(ctx, config.Settings{Model: "request-model"}), base, store)
	require.NoError(t, err)
	assert.Equal(t, config.Settings{Provider: "openai", Host: "http://saved", APIKey: "k", Model: "request-model"}, got)
}

func TestSettingsSource_Incomplete(t *testing.T) {
	_, err := SettingsSource(config.Settings{}, nil, nil)(context.Background())
	assert.ErrorIs(t, err, ErrNoSettings)

	c, err := SettingsSource(config.Settings{Host: "http://h", Model: "m"}, nil, nil)(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &llm.OpenAIClient{}, c)
}
