package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/matzehuels/printframe/pkg/buildinfo"
	"github.com/matzehuels/printframe/pkg/cache"
	"github.com/matzehuels/printframe/pkg/errors"
	"github.com/matzehuels/printframe/pkg/export"
	"github.com/matzehuels/printframe/pkg/layout"
	"github.com/matzehuels/printframe/pkg/scene"
	"github.com/matzehuels/printframe/pkg/session"
	"github.com/matzehuels/printframe/pkg/source"
)

// Response headers of the export endpoint.
const (
	HeaderCached       = "X-Printframe-Cached"
	HeaderFailedPhotos = "X-Printframe-Failed-Photos"
)

// maxParamsSize bounds the JSON part of an export request.
const maxParamsSize = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"templates": layout.Templates()})
}

// =============================================================================
// Layout
// =============================================================================

type layoutRequest struct {
	Template    string       `json:"template"`
	Count       int          `json:"count"`
	AspectRatio float64      `json:"aspect_ratio"`
	Word        string       `json:"word,omitempty"`
	Style       layout.Style `json:"style"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decodeJSON(http.MaxBytesReader(w, r.Body, maxParamsSize), &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Template == "" {
		req.Template = layout.TemplateGrid
	}
	if req.AspectRatio == 0 {
		req.AspectRatio = 1
	}
	if err := errors.ValidateAspectRatio(req.AspectRatio); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	key := s.keyer.LayoutKey(cache.LayoutKeyOpts{
		Template:    req.Template,
		Count:       req.Count,
		AspectRatio: req.AspectRatio,
		Word:        req.Word,
		Style:       req.Style,
	})
	c := cache.NewInstrumented(s.cache, "layout")
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		writeRawJSON(w, data)
		return
	}

	res, err := s.builder.Layout(scene.Params{
		Template:    req.Template,
		Slots:       req.Count,
		AspectRatio: req.AspectRatio,
		Word:        req.Word,
		Style:       req.Style,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode layout"))
		return
	}
	if err := c.Set(ctx, key, data, cache.LayoutTTL); err != nil {
		s.logger.Warn("layout cache write failed", "err", err)
	}
	writeRawJSON(w, data)
}

// =============================================================================
// Export
// =============================================================================

// exportParams is the "params" part of an export request.
type exportParams struct {
	Template    string                           `json:"template"`
	AspectRatio float64                          `json:"aspect_ratio"`
	Slots       int                              `json:"slots,omitempty"`
	Word        string                           `json:"word,omitempty"`
	Style       layout.Style                     `json:"style"`
	Filters     scene.Filters                    `json:"filters"`
	Background  string                           `json:"background,omitempty"`
	BorderColor string                           `json:"border_color,omitempty"`
	Texts       map[scene.Label]scene.TextParams `json:"texts,omitempty"`
	Adjust      []scene.Adjust                   `json:"adjust,omitempty"`

	WidthCm float64 `json:"width_cm"`
	DPI     int     `json:"dpi"`
	Palette int     `json:"palette,omitempty"`
}

func (p *exportParams) validate() error {
	if p.Template == "" {
		p.Template = layout.TemplateGrid
	}
	if p.AspectRatio == 0 {
		p.AspectRatio = 1
	}
	if err := errors.ValidateAspectRatio(p.AspectRatio); err != nil {
		return err
	}
	if err := errors.ValidateBrightness(p.Filters.Brightness); err != nil {
		return err
	}
	for _, c := range []string{p.Background, p.BorderColor} {
		if err := errors.ValidateHexColor(c); err != nil {
			return err
		}
	}
	for _, t := range p.Texts {
		if err := errors.ValidateHexColor(t.Color); err != nil {
			return err
		}
	}
	for _, a := range p.Adjust {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p *exportParams) sceneParams(images []scene.ImageRef) scene.Params {
	return scene.Params{
		Template:    p.Template,
		Images:      images,
		AspectRatio: p.AspectRatio,
		Slots:       p.Slots,
		Word:        p.Word,
		Style:       p.Style,
		Filters:     p.Filters,
		Background:  p.Background,
		BorderColor: p.BorderColor,
		Texts:       p.Texts,
		Adjust:      p.Adjust,
	}
}

// upload is a parsed export request.
type upload struct {
	params exportParams
	photos []source.Source
	hash   string
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "expected a multipart/form-data body")
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read multipart body")
	}

	var (
		up        upload
		rawParams []byte
		photoData [][]byte
	)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapBodyErr(err, "read multipart body")
		}
		switch part.FormName() {
		case "params":
			rawParams, err = io.ReadAll(io.LimitReader(part, maxParamsSize))
			if err != nil {
				return nil, wrapBodyErr(err, "read params")
			}
		case "photo":
			data, err := io.ReadAll(part)
			if err != nil {
				return nil, wrapBodyErr(err, "read photo")
			}
			id := part.FileName()
			if id == "" {
				id = "photo-" + strconv.Itoa(len(up.photos)+1)
			}
			up.photos = append(up.photos, source.FromBytes(id, data))
			photoData = append(photoData, data)
		}
		part.Close()
	}

	if rawParams == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, `missing "params" part`)
	}
	if err := json.Unmarshal(rawParams, &up.params); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid params JSON")
	}
	if err := up.params.validate(); err != nil {
		return nil, err
	}

	h := cache.NewHasher().JSON(up.params.sceneParams(nil))
	for _, d := range photoData {
		h.Bytes(d)
	}
	up.hash = h.Sum()
	return &up, nil
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	up, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	req := export.Request{
		WidthCm: up.params.WidthCm,
		DPI:     up.params.DPI,
		Palette: up.params.Palette,
	}
	if err := req.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.CacheKey = s.keyer.ExportKey(up.hash, cache.ExportKeyOpts{
		WidthCm: req.WidthCm,
		DPI:     req.DPI,
		Palette: req.Palette,
	})

	decoded, err := source.DecodeAll(ctx, up.photos, source.Options{Logger: s.logger})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := session.New(
		session.WithBuilder(s.builder),
		session.WithPipeline(s.pipeline),
		session.WithLogger(s.logger),
	)
	defer sess.Close()
	if _, err := sess.Apply(ctx, up.params.sceneParams(decoded.Images)); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := sess.Export(ctx, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set(HeaderCached, strconv.FormatBool(res.Cached))
	w.Header().Set(HeaderFailedPhotos, strconv.Itoa(len(decoded.Failed)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		s.logger.Debug("client went away", "id", RequestID(ctx), "err", err)
	}
}

// =============================================================================
// Helpers
// =============================================================================

func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return wrapBodyErr(err, "invalid JSON body")
	}
	return nil
}

// wrapBodyErr marks a body read failure as invalid input. Size-limit errors
// stay reachable through the cause.
func wrapBodyErr(err error, msg string) error {
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", msg)
}

func writeRawJSON(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
