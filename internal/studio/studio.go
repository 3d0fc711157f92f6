// Package studio runs generate and edit requests end to end: model call,
// rendering or patching, write-back of the document, and persistence.
package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"figsiner/internal/llm"
	"figsiner/internal/render"
	"figsiner/internal/scene"
	"figsiner/internal/section"
	"figsiner/internal/storage"
	"figsiner/internal/tokens"
)

var ErrFrameNotFound = errors.New("frame not found")

// frameGap separates generated sections stacked on the page.
const frameGap = 160

// ClientSource resolves the model client for one request, typically from the
// current settings.
type ClientSource func(ctx context.Context) (llm.Client, error)

type Studio struct {
	host     scene.Host
	renderer *render.Renderer
	patcher  *render.Patcher
	prompts  *llm.PromptBuilder
	client   ClientSource
	tokens   *tokens.Table
	store    storage.Store
	log      *slog.Logger
	guard    Guard
}

type Option func(*Studio)

// WithStore persists the page and the edit history after each request.
func WithStore(st storage.Store) Option {
	return func(s *Studio) { s.store = st }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Studio) { s.log = l }
}

func WithTokens(t *tokens.Table) Option {
	return func(s *Studio) { s.tokens = t }
}

func New(host scene.Host, client ClientSource, prompts *llm.PromptBuilder, opts ...Option) *Studio {
	s := &Studio{
		host:    host,
		client:  client,
		prompts: prompts,
		tokens:  tokens.Default(),
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	s.renderer = render.New(host, render.WithTokens(s.tokens), render.WithLogger(s.log))
	s.patcher = render.NewPatcher(s.renderer)
	return s
}

// Busy reports whether a request is in flight.
func (s *Studio) Busy() bool { return s.guard.Busy() }

type GenerateResult struct {
	Frames map[section.Viewport]string
}

// Generate asks the model for a section and renders every variant. With
// targetIDs, the first frame receives the desktop variant and the second the
// mobile one; other variants get new frames on the page.
func (s *Studio) Generate(ctx context.Context, brief string, targetIDs []string) (*GenerateResult, error) {
	release, ok := s.guard.TryAcquire()
	if !ok {
		return nil, ErrBusy
	}
	defer release()

	client, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info("requesting section", "targets", len(targetIDs))
	resp, err := llm.RequestSection(ctx, client, s.prompts, brief)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, resp, targetIDs)
}

// Render draws an already decoded envelope, as Generate does after the model
// call.
func (s *Studio) Render(ctx context.Context, resp *section.Response, targetIDs []string) (*GenerateResult, error) {
	release, ok := s.guard.TryAcquire()
	if !ok {
		return nil, ErrBusy
	}
	defer release()
	return s.render(ctx, resp, targetIDs)
}

func (s *Studio) render(ctx context.Context, resp *section.Response, targetIDs []string) (*GenerateResult, error) {
	page := s.host.Page()
	targets, parent, err := s.resolveTargets(targetIDs)
	if err != nil {
		return nil, err
	}
	nextY := bottom(page)

	roots, err := s.renderer.RenderVariants(ctx, resp, parent, targets)
	if err != nil {
		return nil, err
	}

	out := &GenerateResult{Frames: make(map[section.Viewport]string, len(roots))}
	for _, v := range resp.Variants {
		root := roots[v.Viewport]
		if err := StoreSection(root, v.Viewport, v.Section); err != nil {
			return nil, err
		}
		if targets[v.Viewport] == nil && parent == page {
			root.Y = nextY
		}
		out.Frames[v.Viewport] = root.ID
		s.log.Info("rendered section", "viewport", v.Viewport, "frame", root.ID, "items", len(v.Section.Items))
	}

	if err := s.persist(ctx, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Studio) resolveTargets(ids []string) (map[section.Viewport]*scene.Node, *scene.Node, error) {
	page := s.host.Page()
	targets := make(map[section.Viewport]*scene.Node)
	parent := page
	for i, id := range ids {
		if i > 1 {
			break
		}
		n := page.FindByID(id)
		if n == nil || n.Kind != scene.KindFrame {
			return nil, nil, fmt.Errorf("%w: %s", ErrFrameNotFound, id)
		}
		vp := section.ViewportDesktop
		if i == 1 {
			vp = section.ViewportMobile
		}
		targets[vp] = n
		if i == 0 && n.Parent() != nil {
			parent = n.Parent()
		}
	}
	return targets, parent, nil
}

// bottom is the lowest edge of the page's frames plus a gap, or 0.
func bottom(page *scene.Node) float64 {
	y := 0.0
	for _, c := range page.Children() {
		y = max(y, c.Y+c.Height+frameGap)
	}
	return y
}

type EditResult struct {
	FrameID  string
	Viewport section.Viewport
	Section  *section.Section
	Applied  int
	Skipped  []section.Skip
}

// Edit asks the model for a patch against the frame's stored document and
// applies it to both the document and the drawn tree. Nothing changes when
// the model call, parsing or validation fails.
func (s *Studio) Edit(ctx context.Context, frameID, brief string) (*EditResult, error) {
	release, ok := s.guard.TryAcquire()
	if !ok {
		return nil, ErrBusy
	}
	defer release()

	root, viewport, doc, err := s.editable(frameID)
	if err != nil {
		return nil, err
	}
	client, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info("requesting patch", "frame", frameID)
	patch, err := llm.RequestPatch(ctx, client, s.prompts, doc, brief)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, root, viewport, doc, patch, brief)
}

// ApplyPatch applies an already decoded patch envelope to a frame.
func (s *Studio) ApplyPatch(ctx context.Context, frameID string, patch *section.PatchResponse, label string) (*EditResult, error) {
	release, ok := s.guard.TryAcquire()
	if !ok {
		return nil, ErrBusy
	}
	defer release()

	root, viewport, doc, err := s.editable(frameID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, root, viewport, doc, patch, label)
}

func (s *Studio) editable(frameID string) (*scene.Node, section.Viewport, *section.Section, error) {
	root := s.host.Page().FindByID(frameID)
	if root == nil {
		return nil, "", nil, fmt.Errorf("%w: %s", ErrFrameNotFound, frameID)
	}
	viewport, doc, err := LoadSection(root)
	if err != nil {
		return nil, "", nil, err
	}
	return root, viewport, doc, nil
}

func (s *Studio) apply(ctx context.Context, root *scene.Node, viewport section.Viewport, doc *section.Section, patch *section.PatchResponse, brief string) (*EditResult, error) {
	if render.ContentFrame(root) == nil {
		return nil, fmt.Errorf("%w: %v", ErrNotEditable, render.ErrNotRendered)
	}
	treeReport, err := s.patcher.Apply(ctx, root, patch.Ops)
	if err != nil {
		return nil, err
	}
	next, docReport := section.ApplyPatch(doc, withhold(patch.Ops, treeReport.Skipped), section.WithLogger(s.log), section.WithTokens(s.tokens))
	if len(docReport.Applied) != len(treeReport.Applied) {
		s.log.Warn("document and tree disagree on applied operations",
			"frame", root.ID, "document", len(docReport.Applied), "tree", len(treeReport.Applied))
	}
	if err := StoreSection(root, viewport, next); err != nil {
		return nil, err
	}
	s.log.Info("applied patch", "frame", root.ID, "applied", len(docReport.Applied), "skipped", len(docReport.Skipped))

	res := &EditResult{
		FrameID:  root.ID,
		Viewport: viewport,
		Section:  next,
		Applied:  len(docReport.Applied),
		Skipped:  docReport.Skipped,
	}
	edit := &storage.Edit{FrameID: root.ID, Brief: brief, Applied: res.Applied, Skipped: len(res.Skipped)}
	if b, err := json.Marshal(patch); err == nil {
		edit.Ops = b
	}
	if err := s.persist(ctx, edit); err != nil {
		return nil, err
	}
	return res, nil
}

// withhold replaces every op the tree skipped, so the document never records
// a change the canvas does not show.
func withhold(ops []section.Op, skipped []section.Skip) []section.Op {
	if len(skipped) == 0 {
		return ops
	}
	out := slices.Clone(ops)
	for _, sk := range skipped {
		out[sk.Index] = &section.WithheldOp{Op: ops[sk.Index], Reason: sk.Reason}
	}
	return out
}

func (s *Studio) persist(ctx context.Context, edit *storage.Edit) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.SavePage(ctx, s.host.Page()); err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}
	if edit != nil {
		if err := s.store.RecordEdit(ctx, *edit); err != nil {
			return fmt.Errorf("failed to record edit: %w", err)
		}
	}
	return nil
}
