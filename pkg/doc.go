// Package pkg provides the core libraries of printframe, a photo composition
// engine that turns photos into print-ready frames.
//
// # Overview
//
// A composition flows through the packages in one direction:
//
//	photos (files, uploads)
//	         ↓
//	    [source] decode with EXIF orientation, bounded concurrency
//	         ↓
//	    [layout] slot geometry of a template (grid, dual, letters, shirt)
//	         ↓
//	    [scene] node graph with placeholders, texts and filters
//	         ↓
//	    [export] bounding box → rasterize → trim → density → PNG
//
// [session] ties the steps together for one editor: it debounces parameter
// changes, rebuilds only what changed and serializes exports.
//
// # Quick Start
//
//	res, _ := source.DecodeAll(ctx, []source.Source{
//	    source.FromFile("a.jpg"),
//	    source.FromFile("b.jpg"),
//	}, source.Options{})
//
//	b := scene.NewBuilder(scene.DefaultStyle())
//	g, _ := b.Compose(ctx, scene.Params{
//	    Template:    layout.TemplateGrid,
//	    Images:      res.Images,
//	    AspectRatio: 1.5,
//	})
//
//	out, _ := export.New().Export(ctx, g, nil, export.Request{WidthCm: 20, DPI: 300})
//	os.WriteFile(out.Filename, out.Data, 0644)
//
// # Main Packages
//
// [geom] - Rectangles, points and glyph paths in logical canvas units.
//
// [layout] - Template registry and slot layout: balanced photo columns,
// fixed windows, glyph cut-outs and the garment print area.
//
// [placement] - Keeps a dragged or scaled photo covering its window.
//
// [viewport] - Pan and zoom state of the editing surface.
//
// [scene] - The node graph, its builder and the incremental updater.
//
// [raster] - Paints a scene region into a bitmap at any resolution.
//
// [export] - The staged export pipeline, PNG density chunks, alpha trimming
// and palette reduction.
//
// ## Infrastructure
//
// [cache] - Artifact cache backends (null, file, Redis) and content keys.
//
// [config] - TOML project files.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for metrics and tracing.
//
// [server] - The HTTP export service.
//
// [source]: https://pkg.go.dev/github.com/matzehuels/printframe/pkg/source
// [layout]: https://pkg.go.dev/github.com/matzehuels/printframe/pkg/layout
// [scene]: https://pkg.go.dev/github.com/matzehuels/printframe/pkg/scene
// [export]: https://pkg.go.dev/github.com/matzehuels/printframe/pkg/export
// [session]: https://pkg.go.dev/github.com/matzehuels/printframe/pkg/session
// [geom]: https://pkg.go.dev/github.com/matzehuels/printframe/pkg/geom
// [placement]: https://pkg.go.dev/github.com/matzehuels/printframe/pkg/placement
// [viewport]: https://pkg.go.dev/github.com/matzehuels/printframe/pkg/viewport
// [raster]: https://pkg.go.dev/github.com/matzehuels/printframe/pkg/raster
// [cache]: https://pkg.go.dev/github.com/matzehuels/printframe/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/printframe/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/printframe/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/printframe/pkg/observability
// [server]: https://pkg.go.dev/github.com/matzehuels/printframe/pkg/server
package pkg
