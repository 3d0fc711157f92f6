package storage

import (
	"context"
	"path/filepath"
	"testing"

	"figsiner/internal/config"
	"figsiner/internal/render"
	"figsiner/internal/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testFrame(h scene.Host, name, viewport string) *scene.Node {
	root := h.NewNode(scene.KindFrame)
	root.Name = name
	root.SetPluginData(render.ViewportKey, viewport)
	child := h.NewNode(scene.KindText)
	child.Name = "title"
	child.Characters = name + " title"
	root.AppendChild(child)
	return root
}

func TestSQLiteStore_SavePage_SnapshotSync(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	h := scene.NewMemoryHost()

	a := testFrame(h, "A", "desktop")
	b := testFrame(h, "B", "mobile")
	h.Page().AppendChild(a)
	h.Page().AppendChild(b)
	require.NoError(t, store.SavePage(ctx, h.Page()))

	// New snapshot: A removed, C added in front of B.
	a.Remove()
	c := testFrame(h, "C", "desktop")
	h.Page().InsertChild(0, c)
	require.NoError(t, store.SavePage(ctx, h.Page()))

	frames, err := store.ListFrames(ctx)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, c.ID, frames[0].ID)
	assert.Equal(t, "desktop", frames[0].Viewport)
	assert.Equal(t, b.ID, frames[1].ID)
	assert.Equal(t, 1, frames[1].Position)
	assert.False(t, frames[1].UpdatedAt.IsZero())

	fresh := scene.NewMemoryHost()
	require.NoError(t, store.LoadPage(ctx, fresh.Page()))
	kids := fresh.Page().Children()
	require.Len(t, kids, 2)
	assert.Equal(t, c.ID, kids[0].ID)
	assert.Equal(t, "C title", kids[0].Children()[0].Characters)
	assert.Same(t, fresh.Page(), kids[1].Parent())
}

func TestSQLiteStore_FrameCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	h := scene.NewMemoryHost()

	root := testFrame(h, "Solo", "desktop")
	require.NoError(t, store.SaveFrame(ctx, root, 0))
	root.Children()[0].Characters = "changed"
	require.NoError(t, store.SaveFrame(ctx, root, 0))

	got, err := store.LoadFrame(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Children()[0].Characters)
	assert.Equal(t, "desktop", got.PluginData(render.ViewportKey))

	require.NoError(t, store.DeleteFrame(ctx, root.ID))
	_, err = store.LoadFrame(ctx, root.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_Settings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	want := config.Settings{Provider: "openai", Host: "http://localhost:1234", APIKey: "k", Model: "m"}
	require.NoError(t, store.SaveSettings(ctx, want))
	want.Model = "m2"
	require.NoError(t, store.SaveSettings(ctx, want))

	got, ok, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestSQLiteStore_History(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordEdit(ctx, Edit{FrameID: "f1", Brief: "darker", Ops: []byte(`{"ops":[]}`), Applied: 2}))
	require.NoError(t, store.RecordEdit(ctx, Edit{FrameID: "f2", Brief: "other"}))
	require.NoError(t, store.RecordEdit(ctx, Edit{FrameID: "f1", Brief: "bigger", Skipped: 1}))

	edits, err := store.ListEdits(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, edits, 2)
	assert.Equal(t, "darker", edits[0].Brief)
	assert.Equal(t, 2, edits[0].Applied)
	assert.JSONEq(t, `{"ops":[]}`, string(edits[0].Ops))
	assert.Equal(t, 1, edits[1].Skipped)
	assert.False(t, edits[1].CreatedAt.IsZero())
}
