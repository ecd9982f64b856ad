// Package source decodes caller-supplied photos into rasters.
//
// A [Source] pairs a caller-chosen identifier with a way to open the encoded
// bytes: an in-memory buffer, a file on disk, or a multipart upload. The
// engine never reads the filesystem on its own; hosts construct sources and
// hand them to [DecodeAll].
//
// Decoding runs concurrently with a bounded number of workers. A photo that
// cannot be decoded does not fail the batch: its slot keeps a nil image (so
// the scene builder places a placeholder there) and the failure is reported
// in [Result.Failed] as an IMAGE_DECODE error.
//
//	res, err := source.DecodeAll(ctx, []source.Source{
//	    source.FromFile("a.jpg"),
//	    source.FromBytes("upload-1", data),
//	}, source.Options{})
//	if err != nil {
//	    return err // context cancelled
//	}
//	params.Images = res.Images
package source

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/printframe/pkg/errors"
	"github.com/matzehuels/printframe/pkg/scene"
)

const (
	// DefaultConcurrency is the number of photos decoded in parallel.
	DefaultConcurrency = 4

	// DefaultMaxPixels rejects photos larger than this before decoding.
	DefaultMaxPixels = 100_000_000
)

// Opener returns a fresh reader over the encoded photo.
type Opener func() (io.ReadCloser, error)

// Source is one photo to decode.
type Source struct {
	ID   string
	Open Opener
}

// FromBytes returns a source reading from data.
func FromBytes(id string, data []byte) Source {
	return Source{ID: id, Open: func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}}
}

// FromFile returns a source reading path. The path doubles as the ID.
func FromFile(path string) Source {
	return Source{ID: path, Open: func() (io.ReadCloser, error) {
		return os.Open(path)
	}}
}

// Options controls [DecodeAll].
type Options struct {
	// Concurrency bounds the parallel decoders (default [DefaultConcurrency]).
	Concurrency int
	// MaxPixels rejects larger photos (default [DefaultMaxPixels]).
	MaxPixels int
	Logger    *log.Logger
}

// WithDefaults returns a copy of o with zero fields set to their defaults.
func (o Options) WithDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.MaxPixels <= 0 {
		o.MaxPixels = DefaultMaxPixels
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Failure records a photo that could not be decoded.
type Failure struct {
	Index int
	ID    string
	Err   error
}

// Result is the outcome of [DecodeAll].
type Result struct {
	// Images has one entry per source, in input order. Failed entries carry
	// a nil Image.
	Images []scene.ImageRef
	Failed []Failure
}

// Decoded returns the number of photos that decoded successfully.
func (r *Result) Decoded() int { return len(r.Images) - len(r.Failed) }

// DecodeAll decodes srcs concurrently. Per-photo failures are collected in
// the result; the returned error is non-nil only when ctx ends first.
func DecodeAll(ctx context.Context, srcs []Source, opts Options) (*Result, error) {
	opts = opts.WithDefaults()
	images := make([]scene.ImageRef, len(srcs))
	errs := make([]error, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, src := range srcs {
		images[i].ID = src.ID
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := Decode(src, opts.MaxPixels)
			if err != nil {
				errs[i] = err
				return nil
			}
			images[i].Image = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Images: images}
	for i, err := range errs {
		if err == nil {
			continue
		}
		opts.Logger.Warn("skipping photo", "id", srcs[i].ID, "err", err)
		res.Failed = append(res.Failed, Failure{Index: i, ID: srcs[i].ID, Err: err})
	}
	opts.Logger.Debug("decoded photos", "ok", res.Decoded(), "failed", len(res.Failed))
	return res, nil
}

// Decode opens and decodes a single source, applying its EXIF orientation.
// Failures are IMAGE_DECODE errors.
func Decode(src Source, maxPixels int) (image.Image, error) {
	if src.Open == nil {
		return nil, errors.New(errors.ErrCodeImageDecode, "photo %q has no data", src.ID)
	}
	data, err := readAll(src.Open)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageDecode, err, "read photo %q", src.ID)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageDecode, err, "photo %q is not a supported image", src.ID)
	}
	if maxPixels > 0 && cfg.Width*cfg.Height > maxPixels {
		return nil, errors.New(errors.ErrCodeImageDecode, "photo %q is %dx%d, larger than %d pixels",
			src.ID, cfg.Width, cfg.Height, maxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageDecode, err, "decode %s photo %q", format, src.ID)
	}
	return img, nil
}

func readAll(open Opener) ([]byte, error) {
	rc, err := open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return data, nil
}
