package storage

import (
	"context"
	"errors"
	"time"

	"figsiner/internal/config"
	"figsiner/internal/scene"
)

var ErrNotFound = errors.New("not found")

// Store persists a headless workspace: the frames on the canvas, the model
// settings and the edit history.
type Store interface {
	FrameStore
	SettingsStore
	HistoryStore
	Close() error
}

// FrameInfo summarizes a stored top-level frame.
type FrameInfo struct {
	ID        string
	Name      string
	Viewport  string
	Position  int
	UpdatedAt time.Time
}

// FrameStore persists top-level frames of the page with their subtrees.
type FrameStore interface {
	// SaveFrame upserts one top-level frame.
	SaveFrame(ctx context.Context, root *scene.Node, position int) error

	// SavePage replaces every stored frame with the page's current children.
	SavePage(ctx context.Context, page *scene.Node) error

	// LoadFrame rebuilds one stored frame, detached.
	LoadFrame(ctx context.Context, id string) (*scene.Node, error)

	// LoadPage appends every stored frame to page in position order.
	LoadPage(ctx context.Context, page *scene.Node) error

	ListFrames(ctx context.Context) ([]FrameInfo, error)
	DeleteFrame(ctx context.Context, id string) error
}

// SettingsStore persists the model settings record.
type SettingsStore interface {
	SaveSettings(ctx context.Context, s config.Settings) error

	// LoadSettings reports false when nothing was saved yet.
	LoadSettings(ctx context.Context) (config.Settings, bool, error)
}

// Edit is one applied edit request.
type Edit struct {
	ID        int64
	FrameID   string
	Brief     string
	Ops       []byte // the patch envelope as applied
	Applied   int
	Skipped   int
	CreatedAt time.Time
}

type HistoryStore interface {
	RecordEdit(ctx context.Context, e Edit) error
	ListEdits(ctx context.Context, frameID string) ([]Edit, error)
}
