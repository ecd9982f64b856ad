package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/printframe/pkg/buildinfo"
	"github.com/matzehuels/printframe/pkg/cache"
	"github.com/matzehuels/printframe/pkg/config"
	"github.com/matzehuels/printframe/pkg/errors"
	"github.com/matzehuels/printframe/pkg/export"
	"github.com/matzehuels/printframe/pkg/layout"
	"github.com/matzehuels/printframe/pkg/scene"
	"github.com/matzehuels/printframe/pkg/session"
	"github.com/matzehuels/printframe/pkg/source"
)

// renderOpts holds the command-line flags for the render command.
// Only flags the user changed override the project file or the last session.
type renderOpts struct {
	template   string
	aspect     float64
	slots      int
	word       string
	widthCm    float64
	dpi        int
	palette    int
	grayscale  bool
	brightness float64
	header     string
	signature  string
	date       string
	textColor  string
	background string
	output     string
	noCache    bool
	last       bool
}

// renderJob is everything one render needs, after merging the project file,
// the last session and the flags.
type renderJob struct {
	params scene.Params
	photos []string
	req    export.Request
	// templateSet reports that a source other than the built-in default chose
	// the template.
	templateSet bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [project.toml] [photos...]",
		Short: "Compose photos into a print-ready PNG",
		Long: `Compose photos into a print-ready PNG.

Photos come from the project file, the command line, or both. Flags override
project values. With --last the previous composition is loaded again, photos
included, and the flags are applied on top.

Without a template from any source, an interactive picker is shown when
running in a terminal; otherwise the grid template is used.

Finished exports are cached locally; identical renders are served from the
cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args, opts, cmd.Flags())
		},
	}

	bindRenderFlags(cmd.Flags(), &opts)

	return cmd
}

// bindRenderFlags registers the render flags on f.
func bindRenderFlags(f *pflag.FlagSet, opts *renderOpts) {
	f.StringVarP(&opts.template, "template", "t", "", "template: grid, dual, letters, shirt")
	f.Float64Var(&opts.aspect, "aspect", config.DefaultAspectRatio, "photo aspect ratio (width/height)")
	f.IntVar(&opts.slots, "slots", 0, "slot count (default: one per photo)")
	f.StringVar(&opts.word, "word", "", "word spelled by the letters template")
	f.Float64Var(&opts.widthCm, "width-cm", export.DefaultWidthCm, "print width in centimetres")
	f.IntVar(&opts.dpi, "dpi", export.DefaultDPI, "print density in dots per inch")
	f.IntVar(&opts.palette, "palette", 0, "reduce output to this many colours (0 keeps full colour)")
	f.BoolVar(&opts.grayscale, "grayscale", false, "render photos in grayscale")
	f.Float64Var(&opts.brightness, "brightness", 0, "brightness adjustment in [-100, 100]")
	f.StringVar(&opts.header, "header", "", "header text")
	f.StringVar(&opts.signature, "signature", "", "signature text")
	f.StringVar(&opts.date, "date", "", "date text")
	f.StringVar(&opts.textColor, "text-color", "", "text colour as #rrggbb")
	f.StringVar(&opts.background, "background", "", "background colour as #rrggbb")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: generated name in the current directory)")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	f.BoolVar(&opts.last, "last", false, "start from the last rendered composition")
}

// runRender builds the composition, exports it and remembers it for --last.
func (c *CLI) runRender(ctx context.Context, args []string, opts renderOpts, flags *pflag.FlagSet) error {
	logger := loggerFromContext(ctx)
	watch := startStopwatch(logger)

	store, err := c.sessionStore()
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	job, err := loadJob(ctx, store, args, opts.last)
	if err != nil {
		return err
	}
	if err := applyFlags(&job, opts, flags); err != nil {
		return err
	}

	if !job.templateSet {
		job.params.Template = layout.TemplateGrid
		if interactive() {
			name, err := pickTemplate(len(job.photos))
			if err != nil {
				return err
			}
			if name == "" {
				printDetail("No selection made")
				return nil
			}
			job.params.Template = name
		}
	}
	if err := job.req.ValidateAndSetDefaults(); err != nil {
		return err
	}
	job.req.CacheKey = job.cacheKey()
	logger.Debug("render job", "template", job.params.Template, "photos", len(job.photos),
		"width_cm", job.req.WidthCm, "dpi", job.req.DPI)

	spinner := newSpinner(ctx, fmt.Sprintf("Decoding %d photos...", len(job.photos)))
	spinner.Start()
	defer spinner.Stop()

	srcs := make([]source.Source, len(job.photos))
	for i, p := range job.photos {
		srcs[i] = source.FromFile(p)
	}
	decoded, err := source.DecodeAll(ctx, srcs, source.Options{Logger: logger})
	if err != nil {
		spinner.StopWithError("Decoding cancelled")
		return err
	}
	job.params.Images = decoded.Images

	sess := session.New(
		session.WithBuilder(scene.NewBuilder(scene.DefaultStyle(), scene.WithLogger(logger))),
		session.WithPipeline(export.New(
			export.WithLogger(logger),
			export.WithCache(c.newCache(opts.noCache)),
		)),
		session.WithLogger(logger),
	)
	defer sess.Close()

	spinner.SetMessage("Composing scene...")
	if _, err := sess.Apply(ctx, job.params); err != nil {
		spinner.StopWithError("Composition failed")
		return err
	}
	unplaced := sess.Graph().Unplaced()

	job.req.OnState = func(s export.State) {
		spinner.SetMessage(stateMessage(s))
	}
	res, err := sess.Export(ctx, job.req)
	if err != nil {
		spinner.StopWithError("Export failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	out := opts.output
	if out == "" {
		out = res.Filename
	}
	if err := os.WriteFile(out, res.Data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}

	sn := sess.Snapshot(session.DefaultTTL)
	sn.ID = session.LastID
	if err := store.Set(ctx, sn); err != nil {
		logger.Warn("could not remember composition", "err", err)
	}

	for _, f := range decoded.Failed {
		printWarning("Skipped %s: %s", f.ID, errors.UserMessage(f.Err))
	}
	for _, l := range unplaced {
		printWarning("The %s template has no room for the %s text; it was left out", job.params.Template, l)
	}
	printSuccess("Export complete")
	printFile(out)
	fmt.Fprintln(stdout, exportStats(res.Width, res.Height, res.Job.DPI, decoded.Decoded(), res.Cached))
	printNewline()
	printNextStep("Inspect", "printframe inspect "+out)
	watch.done("rendered", "template", job.params.Template, "cached", res.Cached)

	return nil
}

// loadJob merges the sources of a render in order: the last session or a
// project file, then photo arguments.
func loadJob(ctx context.Context, store session.Store, args []string, last bool) (renderJob, error) {
	var job renderJob

	if last {
		sn, err := store.Get(ctx, session.LastID)
		if err != nil {
			return job, fmt.Errorf("load last composition: %w", err)
		}
		if sn == nil {
			return job, errors.New(errors.ErrCodeNotFound, "no previous composition; run render without --last first")
		}
		job.params = sn.Params()
		job.params.Images = nil
		job.photos = append(job.photos, sn.Photos...)
		job.templateSet = true
	}

	if len(args) > 0 && strings.EqualFold(filepath.Ext(args[0]), ".toml") {
		if last {
			return job, errors.New(errors.ErrCodeInvalidInput, "--last cannot be combined with a project file")
		}
		p, err := config.Load(args[0])
		if err != nil {
			return job, err
		}
		job.params = p.ToParams(nil)
		job.photos = p.PhotoPaths()
		job.req = p.ExportRequest()
		job.templateSet = true
		args = args[1:]
	} else if !last {
		p := &config.Project{}
		p.SetDefaults()
		job.params = p.ToParams(nil)
		job.req = p.ExportRequest()
	}

	job.photos = append(job.photos, args...)
	for i, p := range job.photos {
		if abs, err := filepath.Abs(p); err == nil {
			job.photos[i] = abs
		}
	}
	return job, nil
}

// applyFlags overrides job values with the flags the user set.
func applyFlags(job *renderJob, opts renderOpts, flags *pflag.FlagSet) error {
	changed := flags.Changed
	p := &job.params

	if changed("template") {
		p.Template = opts.template
		job.templateSet = true
	}
	if changed("aspect") {
		if err := errors.ValidateAspectRatio(opts.aspect); err != nil {
			return err
		}
		p.AspectRatio = opts.aspect
	}
	if changed("slots") {
		if opts.slots < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "--slots cannot be negative")
		}
		p.Slots = opts.slots
	}
	if changed("word") {
		p.Word = opts.word
	}
	if changed("grayscale") {
		p.Filters.Grayscale = opts.grayscale
	}
	if changed("brightness") {
		if err := errors.ValidateBrightness(opts.brightness); err != nil {
			return err
		}
		p.Filters.Brightness = opts.brightness
	}
	if changed("background") {
		if err := errors.ValidateHexColor(opts.background); err != nil {
			return err
		}
		p.Background = opts.background
	}
	if changed("text-color") {
		if err := errors.ValidateHexColor(opts.textColor); err != nil {
			return err
		}
	}

	texts := map[scene.Label]string{
		scene.LabelHeader:    "header",
		scene.LabelSignature: "signature",
		scene.LabelDate:      "date",
	}
	values := map[scene.Label]string{
		scene.LabelHeader:    opts.header,
		scene.LabelSignature: opts.signature,
		scene.LabelDate:      opts.date,
	}
	for label, flag := range texts {
		if !changed(flag) && !changed("text-color") {
			continue
		}
		if p.Texts == nil {
			p.Texts = make(map[scene.Label]scene.TextParams)
		}
		t := p.Texts[label]
		if changed(flag) {
			t.Text = values[label]
		}
		if changed("text-color") {
			t.Color = opts.textColor
		}
		if t.Text == "" {
			delete(p.Texts, label)
			continue
		}
		p.Texts[label] = t
	}

	if changed("width-cm") {
		job.req.WidthCm = opts.widthCm
	}
	if changed("dpi") {
		job.req.DPI = opts.dpi
	}
	if changed("palette") {
		job.req.Palette = opts.palette
	}
	return nil
}

// hash identifies the inputs of the job. Photos are identified by path, size
// and modification time so unchanged files hit the cache without being read.
func (j renderJob) hash() string {
	params := j.params
	params.Images = nil
	h := cache.NewHasher().JSON(params)
	for _, p := range j.photos {
		var size int64
		var mod time.Time
		if fi, err := os.Stat(p); err == nil {
			size, mod = fi.Size(), fi.ModTime()
		}
		h.JSON(struct {
			Path string
			Size int64
			Mod  time.Time
		}{p, size, mod})
	}
	return h.Sum()
}

// cacheKey is the export cache key of the job. Keys are scoped to the
// running build so an upgrade never serves a print rendered by an older one.
func (j renderJob) cacheKey() string {
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	return keyer.ExportKey(j.hash(), cache.ExportKeyOpts{
		WidthCm: j.req.WidthCm,
		DPI:     j.req.DPI,
		Palette: j.req.Palette,
	})
}

// stateMessage describes the work that follows export state s.
func stateMessage(s export.State) string {
	switch s {
	case export.StateBoundingBoxComputed:
		return "Rasterizing..."
	case export.StateRasterized:
		return "Trimming margins..."
	case export.StateTrimmed:
		return "Embedding print density..."
	case export.StateDensityInjected, export.StateDelivered:
		return "Finishing..."
	}
	return "Exporting..."
}
