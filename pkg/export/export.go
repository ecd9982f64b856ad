// Package export turns a scene graph into a print-ready PNG.
//
// The pipeline renders the union of all visible nodes at the resolution
// implied by the requested physical width and density, trims fully
// transparent margins, optionally reduces the palette, encodes the PNG and
// injects a pHYs chunk so print software picks up the intended DPI.
//
// # Stages
//
// An export moves through these states:
//
//	Idle -> BoundingBoxComputed -> Rasterized -> Trimmed -> DensityInjected -> Delivered
//
// An empty scene fails in Idle with EMPTY_SCENE. Rendering failures are
// RASTERIZATION errors, PNG container problems are CONTAINER_LAYOUT errors.
// Nothing is delivered on failure and the graph is never modified.
//
// # Usage
//
//	p := export.New(export.WithLogger(logger))
//	res, err := p.Export(ctx, g, view, export.Request{WidthCm: 20, DPI: 300})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(res.Filename, res.Data, 0644)
package export

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/printframe/pkg/cache"
	"github.com/matzehuels/printframe/pkg/errors"
	"github.com/matzehuels/printframe/pkg/geom"
	"github.com/matzehuels/printframe/pkg/observability"
	"github.com/matzehuels/printframe/pkg/raster"
	"github.com/matzehuels/printframe/pkg/scene"
	"github.com/matzehuels/printframe/pkg/viewport"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidthCm is the default physical output width.
	DefaultWidthCm = 20.0

	// DefaultDPI is the default print density.
	DefaultDPI = 300

	// cmPerInch converts centimetres to inches.
	cmPerInch = 2.54
)

// State is a stage of an export.
type State uint8

const (
	StateIdle State = iota
	StateBoundingBoxComputed
	StateRasterized
	StateTrimmed
	StateDensityInjected
	StateDelivered
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBoundingBoxComputed:
		return "bounding box computed"
	case StateRasterized:
		return "rasterized"
	case StateTrimmed:
		return "trimmed"
	case StateDensityInjected:
		return "density injected"
	case StateDelivered:
		return "delivered"
	}
	return "unknown"
}

// Request describes one export.
type Request struct {
	WidthCm float64
	DPI     int
	// Palette reduces the output to this many colours; zero keeps full colour.
	Palette int

	// CacheKey, when set, lets the pipeline serve and store the result in
	// its cache.
	CacheKey string

	// OnState is called on every state transition.
	OnState func(State)
}

// ValidateAndSetDefaults fills unset fields and validates the rest.
func (r *Request) ValidateAndSetDefaults() error {
	if r.WidthCm == 0 {
		r.WidthCm = DefaultWidthCm
	}
	if r.DPI == 0 {
		r.DPI = DefaultDPI
	}
	if err := errors.ValidateWidthCm(r.WidthCm); err != nil {
		return err
	}
	if err := errors.ValidateDPI(r.DPI); err != nil {
		return err
	}
	return errors.ValidatePalette(r.Palette)
}

// TargetWidth returns the output width in pixels for the request.
func (r Request) TargetWidth() int {
	return int(math.Round(r.WidthCm / cmPerInch * float64(r.DPI)))
}

// Job is the geometry of an export in progress.
type Job struct {
	Bounds     geom.Rect `json:"bounds"`
	Multiplier float64   `json:"multiplier"`
	DPI        int       `json:"dpi"`
	State      State     `json:"state"`
}

// Result is a delivered export.
type Result struct {
	Data     []byte
	Filename string
	Width    int
	Height   int
	Job      Job
	// Cached reports that Data came from the cache.
	Cached bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCache sets the artifact cache.
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.cache = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRenderer sets the rasterizer.
func WithRenderer(r *raster.Renderer) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.renderer = r
		}
	}
}

// WithClock sets the time source used for file names.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// Pipeline runs exports. It holds no per-export state and is safe for
// concurrent use; a session serializes its own exports.
type Pipeline struct {
	renderer *raster.Renderer
	cache    cache.Cache
	logger   *log.Logger
	now      func() time.Time
}

// New returns a pipeline. Without [WithCache] caching is disabled.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		cache:  cache.NewNullCache(),
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.renderer == nil {
		p.renderer = raster.New(raster.WithLogger(p.logger))
	}
	return p
}

// Export renders g into a PNG. view, if non-nil, is reset to identity for the
// duration of the export and restored afterwards.
func (p *Pipeline) Export(ctx context.Context, g *scene.Graph, view *viewport.Controller, req Request) (res *Result, err error) {
	if err := req.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	observability.Export().OnExportStart(ctx, req.WidthCm, req.DPI)
	defer func() {
		n := 0
		if res != nil {
			n = len(res.Data)
		}
		observability.Export().OnExportComplete(ctx, n, time.Since(start), err)
	}()

	if view != nil {
		saved := view.State()
		view.Reset()
		defer view.Set(saved)
	}

	job := Job{DPI: req.DPI, State: StateIdle}
	advance := func(s State) {
		job.State = s
		if req.OnState != nil {
			req.OnState(s)
		}
	}

	if cached := p.lookup(ctx, req); cached != nil {
		return cached, nil
	}

	// Bounding box. Placeholders of empty slots are not printed.
	if g.PrintEmpty() {
		return nil, errors.New(errors.ErrCodeEmptyScene, "nothing to export: the scene has no visible content")
	}
	job.Bounds = g.PrintBounds()
	job.Multiplier = float64(req.TargetWidth()) / job.Bounds.Width
	advance(StateBoundingBoxComputed)
	p.logger.Debug("export bounds", "bounds", job.Bounds, "multiplier", job.Multiplier)

	// Rasterize.
	img, err := p.renderer.Render(ctx, g, job.Bounds, job.Multiplier)
	if err != nil {
		return nil, err
	}
	advance(StateRasterized)

	// Trim.
	trimmed, rect, ok := AlphaTrim(img)
	if !ok {
		return nil, errors.New(errors.ErrCodeEmptyScene, "nothing to export: the rendered scene is fully transparent")
	}
	var out image.Image = trimmed
	if req.Palette > 0 {
		out = Quantize(trimmed, req.Palette)
	}
	advance(StateTrimmed)
	p.logger.Debug("trimmed", "from", img.Bounds().Size(), "to", rect.Size())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Encode and inject density.
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeContainerLayout, err, "encode PNG")
	}
	data, err := InjectDensity(buf.Bytes(), req.DPI)
	if err != nil {
		return nil, err
	}
	advance(StateDensityInjected)

	res = &Result{
		Data:     data,
		Filename: Filename(req.WidthCm, req.DPI, p.now()),
		Width:    rect.Dx(),
		Height:   rect.Dy(),
	}
	advance(StateDelivered)
	res.Job = job
	p.store(ctx, req, data)

	p.logger.Info("exported",
		"width", res.Width,
		"height", res.Height,
		"dpi", req.DPI,
		"bytes", len(data),
		"duration", time.Since(start))
	return res, nil
}

// lookup serves req from the cache. Cache failures are logged, not returned.
func (p *Pipeline) lookup(ctx context.Context, req Request) *Result {
	if req.CacheKey == "" {
		return nil
	}
	var (
		data []byte
		hit  bool
	)
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = p.cache.Get(ctx, req.CacheKey)
		return err
	})
	if err != nil {
		p.logger.Warn("export cache read failed", "err", err)
		return nil
	}
	if !hit {
		return nil
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		p.logger.Warn("dropping unreadable cached export", "err", err)
		_ = p.cache.Delete(ctx, req.CacheKey)
		return nil
	}
	p.logger.Debug("export cache hit", "key", req.CacheKey)
	return &Result{
		Data:     data,
		Filename: Filename(req.WidthCm, req.DPI, p.now()),
		Width:    cfg.Width,
		Height:   cfg.Height,
		Job:      Job{DPI: req.DPI, State: StateDelivered},
		Cached:   true,
	}
}

func (p *Pipeline) store(ctx context.Context, req Request, data []byte) {
	if req.CacheKey == "" {
		return
	}
	err := cache.RetryWithBackoff(ctx, func() error {
		return p.cache.Set(ctx, req.CacheKey, data, cache.ExportTTL)
	})
	if err != nil {
		p.logger.Warn("export cache write failed", "err", err)
	}
}
