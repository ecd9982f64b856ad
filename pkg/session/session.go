// Package session provides the editing session around a composition.
//
// A Session owns one scene graph and its view state. Parameter snapshots
// are applied through the scene updater with the least work the change
// allows; bursts of edits can be coalesced with [Session.Schedule]. Exports
// of a session are serialized: a second export while one is running fails
// fast with EXPORT_IN_PROGRESS instead of queueing.
//
// # Usage
//
//	sess := session.New(session.WithLogger(logger))
//	if _, err := sess.Apply(ctx, params); err != nil {
//	    return err
//	}
//	res, err := sess.Export(ctx, export.Request{WidthCm: 20, DPI: 300})
//
// Sessions hold decoded photos in memory. A [Snapshot] captures everything
// else (template, texts, style and photo identities) and can be kept in a
// [FileStore] so a later run can pick up where the last one ended.
package session

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/printframe/pkg/errors"
	"github.com/matzehuels/printframe/pkg/export"
	"github.com/matzehuels/printframe/pkg/layout"
	"github.com/matzehuels/printframe/pkg/scene"
	"github.com/matzehuels/printframe/pkg/viewport"
)

// DefaultTTL is how long a stored snapshot stays valid.
const DefaultTTL = 30 * 24 * time.Hour

// Option configures a Session.
type Option func(*Session)

// WithBuilder sets the scene builder.
func WithBuilder(b *scene.Builder) Option {
	return func(s *Session) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithPipeline sets the export pipeline.
func WithPipeline(p *export.Pipeline) Option {
	return func(s *Session) {
		if p != nil {
			s.pipeline = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithQuietPeriod sets the debounce delay of [Session.Schedule].
func WithQuietPeriod(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.quiet = d
		}
	}
}

// WithContainer sets the size of the surface the scene is shown on. When
// set, the view is fitted to the padded canvas whenever its size changes.
func WithContainer(w, h float64) Option {
	return func(s *Session) {
		s.containerW, s.containerH = w, h
	}
}

// Session is one editing session.
type Session struct {
	ID        string
	CreatedAt time.Time

	builder  *scene.Builder
	updater  *scene.Updater
	pipeline *export.Pipeline
	logger   *log.Logger
	quiet    time.Duration
	debounce *scene.Debouncer[scene.Params]

	mu      sync.Mutex
	params  scene.Params
	graph   *scene.Graph
	view    *viewport.Controller
	lastErr error

	containerW, containerH float64

	exporting atomic.Bool
}

// New creates an empty session with a fresh ID.
func New(opts ...Option) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		logger:    log.New(io.Discard),
		quiet:     scene.DefaultQuietPeriod,
		view:      viewport.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.builder == nil {
		s.builder = scene.NewBuilder(scene.DefaultStyle(), scene.WithLogger(s.logger))
	}
	if s.pipeline == nil {
		s.pipeline = export.New(export.WithLogger(s.logger))
	}
	s.updater = scene.NewUpdater(s.builder)
	s.debounce = scene.NewDebouncer(s.quiet, func(p scene.Params) {
		if _, err := s.Apply(context.Background(), p); err != nil {
			s.logger.Warn("scheduled update failed", "session", s.ID, "err", err)
		}
	})
	return s
}

// Apply brings the scene to p. On error the previous scene is kept.
func (s *Session) Apply(ctx context.Context, p scene.Params) (scene.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Template == "" {
		p.Template = layout.TemplateGrid
	}
	g, change, err := s.updater.Apply(ctx, s.graph, s.params, p)
	s.lastErr = err
	if err != nil {
		return change, err
	}
	prev := s.graph
	s.graph = g
	s.params = p
	if change == scene.ChangeStructural && (prev == nil || prev.Canvas != g.Canvas) {
		s.fit()
	}
	s.logger.Debug("applied", "session", s.ID, "change", change)
	return change, nil
}

// Schedule queues p and applies it once edits have been quiet for the
// session's quiet period. Only the latest of a burst is applied.
func (s *Session) Schedule(p scene.Params) { s.debounce.Push(p) }

// Flush applies a scheduled snapshot immediately and returns the error of
// the most recent apply.
func (s *Session) Flush() error {
	s.debounce.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Close discards any scheduled snapshot.
func (s *Session) Close() { s.debounce.Stop() }

// Graph returns the current scene, or nil before the first apply.
func (s *Session) Graph() *scene.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph
}

// Params returns the snapshot the scene was last built from.
func (s *Session) Params() scene.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// View returns the view controller.
func (s *Session) View() *viewport.Controller { return s.view }

// SetContainer resizes the display surface and refits the view.
func (s *Session) SetContainer(w, h float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.containerW, s.containerH = w, h
	s.fit()
}

// fit frames the canvas and its padding in the container, or resets the
// view when no container is known. Callers hold s.mu.
func (s *Session) fit() {
	if s.graph == nil || s.containerW <= 0 || s.containerH <= 0 {
		s.view.Reset()
		return
	}
	w, h := s.graph.Canvas.Padded()
	s.view.FitToView(s.containerW, s.containerH, w, h)
	pad := s.graph.Canvas.Padding * s.view.State().Scale
	s.view.PanBy(pad, pad)
}

// ZoomAt zooms the view one step around a pointer in screen space.
func (s *Session) ZoomAt(x, y float64, deltaSign int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ZoomAt(x, y, deltaSign)
}

// PanBy translates the view by a screen-space delta.
func (s *Session) PanBy(dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.PanBy(dx, dy)
}

// MoveImage drags the photo in slot by a screen-space delta. The delta is
// divided by the view scale so the photo follows the pointer; the resulting
// adjustment is recorded so later rebuilds keep it.
func (s *Session) MoveImage(slot int, dx, dy float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return errors.New(errors.ErrCodeInvalidInput, "session has no scene yet")
	}
	k := s.view.State().Scale
	a, err := s.graph.MoveImage(slot, dx/k, dy/k)
	if err != nil {
		return err
	}
	s.setAdjust(slot, a)
	return nil
}

// ScaleImage zooms the photo in slot by factor k inside its window.
func (s *Session) ScaleImage(slot int, k float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return errors.New(errors.ErrCodeInvalidInput, "session has no scene yet")
	}
	a, err := s.graph.ScaleImage(slot, k)
	if err != nil {
		return err
	}
	s.setAdjust(slot, a)
	return nil
}

// setAdjust records a for slot on a copy of the adjustment list, so
// snapshots handed out earlier stay unchanged.
func (s *Session) setAdjust(slot int, a scene.Adjust) {
	adjust := make([]scene.Adjust, max(len(s.params.Adjust), slot+1))
	copy(adjust, s.params.Adjust)
	adjust[slot] = a
	s.params.Adjust = adjust
}

// ReplacePlaceholder fills an empty slot with a photo. The photo is recorded
// in the session parameters so later rebuilds keep it.
func (s *Session) ReplacePlaceholder(slot int, ref scene.ImageRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return errors.New(errors.ErrCodeInvalidInput, "session has no scene yet")
	}
	if err := s.graph.ReplacePlaceholder(slot, ref, s.params.Filters); err != nil {
		return err
	}

	images := make([]scene.ImageRef, max(len(s.params.Images), slot+1))
	copy(images, s.params.Images)
	images[slot] = ref
	s.params.Images = images
	if slot < len(s.params.Adjust) {
		s.setAdjust(slot, scene.Adjust{})
	}
	return nil
}

// Exporting reports whether an export is running.
func (s *Session) Exporting() bool { return s.exporting.Load() }

// Export renders the current scene. A concurrent second call fails with
// EXPORT_IN_PROGRESS. Edits wait until the export finishes.
func (s *Session) Export(ctx context.Context, req export.Request) (*export.Result, error) {
	if !s.exporting.CompareAndSwap(false, true) {
		return nil, errors.New(errors.ErrCodeExportInProgress, "an export is already running")
	}
	defer s.exporting.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return nil, errors.New(errors.ErrCodeEmptyScene, "nothing to export: no scene has been built")
	}
	return s.pipeline.Export(ctx, s.graph, s.view, req)
}

// =============================================================================
// Snapshots
// =============================================================================

// Snapshot is the serializable state of a session. Photos are referenced by
// ID only.
type Snapshot struct {
	ID          string                           `json:"id"`
	Template    string                           `json:"template"`
	AspectRatio float64                          `json:"aspect_ratio"`
	Slots       int                              `json:"slots,omitempty"`
	Word        string                           `json:"word,omitempty"`
	Style       layout.Style                     `json:"style"`
	Filters     scene.Filters                    `json:"filters"`
	Background  string                           `json:"background,omitempty"`
	BorderColor string                           `json:"border_color,omitempty"`
	Texts       map[scene.Label]scene.TextParams `json:"texts,omitempty"`
	Photos      []string                         `json:"photos,omitempty"`
	Adjust      []scene.Adjust                   `json:"adjust,omitempty"`
	View        viewport.State                   `json:"view"`
	UpdatedAt   time.Time                        `json:"updated_at"`
	ExpiresAt   time.Time                        `json:"expires_at"`
}

// IsExpired reports whether the snapshot has outlived its TTL.
func (sn *Snapshot) IsExpired() bool {
	return time.Now().After(sn.ExpiresAt)
}

// Params returns the snapshot as scene parameters. Images carry IDs but no
// pixels; the caller decodes them again.
func (sn *Snapshot) Params() scene.Params {
	p := scene.Params{
		Template:    sn.Template,
		AspectRatio: sn.AspectRatio,
		Slots:       sn.Slots,
		Word:        sn.Word,
		Style:       sn.Style,
		Filters:     sn.Filters,
		Background:  sn.Background,
		BorderColor: sn.BorderColor,
		Texts:       sn.Texts,
		Adjust:      sn.Adjust,
	}
	for _, id := range sn.Photos {
		p.Images = append(p.Images, scene.ImageRef{ID: id})
	}
	return p
}

// Snapshot captures the session state with the given TTL.
func (s *Session) Snapshot(ttl time.Duration) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	p := s.params
	sn := &Snapshot{
		ID:          s.ID,
		Template:    p.Template,
		AspectRatio: p.AspectRatio,
		Slots:       p.Slots,
		Word:        p.Word,
		Style:       p.Style,
		Filters:     p.Filters,
		Background:  p.Background,
		BorderColor: p.BorderColor,
		Texts:       p.Texts,
		Adjust:      p.Adjust,
		View:        s.view.State(),
		UpdatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	for _, img := range p.Images {
		sn.Photos = append(sn.Photos, img.ID)
	}
	return sn
}

// Store persists snapshots.
type Store interface {
	Get(ctx context.Context, id string) (*Snapshot, error)
	Set(ctx context.Context, sn *Snapshot) error
	Delete(ctx context.Context, id string) error
	Cleanup(ctx context.Context) (int, error)
	Close() error
}
