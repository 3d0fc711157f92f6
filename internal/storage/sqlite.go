package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"figsiner/internal/config"
	"figsiner/internal/render"
	"figsiner/internal/scene"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS frames (
			id TEXT PRIMARY KEY,
			name TEXT,
			viewport TEXT,
			position INTEGER,
			snapshot JSON,
			updated_at TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			provider TEXT,
			host TEXT,
			api_key TEXT,
			model TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS edits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			frame_id TEXT,
			brief TEXT,
			ops JSON,
			applied INTEGER,
			skipped INTEGER,
			created_at TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_edits_frame ON edits(frame_id);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// --- FrameStore Implementation ---

const upsertFrame = `
	INSERT INTO frames (id, name, viewport, position, snapshot, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name=excluded.name,
		viewport=excluded.viewport,
		position=excluded.position,
		snapshot=excluded.snapshot,
		updated_at=excluded.updated_at
`

func (s *SQLiteStore) SaveFrame(ctx context.Context, root *scene.Node, position int) error {
	snap, err := scene.Encode(root)
	if err != nil {
		return fmt.Errorf("failed to encode frame %s: %w", root.ID, err)
	}
	_, err = s.db.ExecContext(ctx, upsertFrame, root.ID, root.Name, root.PluginData(render.ViewportKey), position, snap, s.now())
	return err
}

func (s *SQLiteStore) SavePage(ctx context.Context, page *scene.Node) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Snapshot sync: frames no longer on the page are dropped.
	if _, err := tx.ExecContext(ctx, `DELETE FROM frames`); err != nil {
		return fmt.Errorf("failed to clear frames: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, upsertFrame)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := s.now()
	for i, root := range page.Children() {
		snap, err := scene.Encode(root)
		if err != nil {
			return fmt.Errorf("failed to encode frame %s: %w", root.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, root.ID, root.Name, root.PluginData(render.ViewportKey), i, snap, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadFrame(ctx context.Context, id string) (*scene.Node, error) {
	var snap []byte
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM frames WHERE id = ?`, id).Scan(&snap)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("frame %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query frame: %w", err)
	}
	return scene.Decode(snap)
}

func (s *SQLiteStore) LoadPage(ctx context.Context, page *scene.Node) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, snapshot FROM frames ORDER BY position, id`)
	if err != nil {
		return fmt.Errorf("failed to query frames: %w", err)
	}
	defer rows.Close()

	var roots []*scene.Node
	for rows.Next() {
		var id string
		var snap []byte
		if err := rows.Scan(&id, &snap); err != nil {
			return fmt.Errorf("failed to scan frame: %w", err)
		}
		n, err := scene.Decode(snap)
		if err != nil {
			return fmt.Errorf("frame %s: %w", id, err)
		}
		roots = append(roots, n)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, n := range roots {
		page.AppendChild(n)
	}
	return nil
}

func (s *SQLiteStore) ListFrames(ctx context.Context) ([]FrameInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, viewport, position, updated_at FROM frames ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query frames: %w", err)
	}
	defer rows.Close()

	var out []FrameInfo
	for rows.Next() {
		var f FrameInfo
		if err := rows.Scan(&f.ID, &f.Name, &f.Viewport, &f.Position, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan frame: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteFrame(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM frames WHERE id = ?`, id)
	return err
}

// --- SettingsStore Implementation ---

func (s *SQLiteStore) SaveSettings(ctx context.Context, st config.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, provider, host, api_key, model) VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			provider=excluded.provider,
			host=excluded.host,
			api_key=excluded.api_key,
			model=excluded.model
	`, st.Provider, st.Host, st.APIKey, st.Model)
	return err
}

func (s *SQLiteStore) LoadSettings(ctx context.Context) (config.Settings, bool, error) {
	var st config.Settings
	err := s.db.QueryRowContext(ctx, `SELECT provider, host, api_key, model FROM settings WHERE id = 1`).
		Scan(&st.Provider, &st.Host, &st.APIKey, &st.Model)
	if errors.Is(err, sql.ErrNoRows) {
		return config.Settings{}, false, nil
	}
	if err != nil {
		return config.Settings{}, false, fmt.Errorf("failed to query settings: %w", err)
	}
	return st, true, nil
}

// --- HistoryStore Implementation ---

func (s *SQLiteStore) RecordEdit(ctx context.Context, e Edit) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO edits (frame_id, brief, ops, applied, skipped, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.FrameID, e.Brief, e.Ops, e.Applied, e.Skipped, e.CreatedAt)
	return err
}

func (s *SQLiteStore) ListEdits(ctx context.Context, frameID string) ([]Edit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, frame_id, brief, ops, applied, skipped, created_at
		FROM edits WHERE frame_id = ? ORDER BY id
	`, frameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query edits: %w", err)
	}
	defer rows.Close()

	var out []Edit
	for rows.Next() {
		var e Edit
		if err := rows.Scan(&e.ID, &e.FrameID, &e.Brief, &e.Ops, &e.Applied, &e.Skipped, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan edit: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
