package service

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"time"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"wavewall-mockups/models"
	"wavewall-mockups/repository"
	"wavewall-mockups/utils"
)

// MaskGenerator is the primary compositing engine. It builds photorealistic
// mockups from a flattened base photo, a cutout mask, and blend-mode
// compositing, without geometric displacement. Every call consults the
// content-addressed cache before and after rendering.
type MaskGenerator struct {
	templates *TemplateManager
	cache     *MockupCache
	history   repository.RenderRecordRepositoryInterface
}

// NewMaskGenerator creates a generator over a template manager and cache.
func NewMaskGenerator(templates *TemplateManager, cache *MockupCache) *MaskGenerator {
	return &MaskGenerator{templates: templates, cache: cache}
}

// WithHistory attaches an optional render-history recorder. A nil recorder
// disables history with no effect on generation.
func (g *MaskGenerator) WithHistory(history repository.RenderRecordRepositoryInterface) *MaskGenerator {
	g.history = history
	return g
}

// Generate renders one mockup. Fatal conditions are a missing design, an
// unknown template id, or an unreadable base image; missing optional
// assets (mask, shadow, highlight, displacement) skip their compositing
// step with a warning and the generation continues.
func (g *MaskGenerator) Generate(ctx context.Context, req models.GenerateRequest) (*models.RenderOutput, error) {
	if len(req.Design) == 0 {
		return nil, models.ErrMissingDesign
	}

	format := req.OutputFormat
	if format == "" {
		format = models.FormatPNG
	}
	switch format {
	case models.FormatPNG, models.FormatJPEG, models.FormatWebP:
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	quality := req.OutputQuality
	if quality <= 0 || quality > 100 {
		quality = defaultOutputQuality
	}

	designHash := req.DesignHash
	if designHash == "" {
		designHash = utils.HashBuffer(req.Design)
	}
	configHash := ""
	if !req.Config.IsZero() {
		h, err := utils.HashObject(req.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to hash config: %w", err)
		}
		configHash = h
	}
	// Each output format/quality pair caches independently; a png entry
	// must never be served for a jpeg or webp request.
	keyScope := fmt.Sprintf("mask-%s-%s-q%d", req.TemplateID, format, quality)
	cacheKey := g.cache.GenerateKey(keyScope, designHash, configHash)

	start := time.Now()
	if data := g.cache.Get(cacheKey); data != nil {
		out := &models.RenderOutput{Data: data, Cached: true, RenderTime: time.Since(start)}
		g.record(ctx, req, designHash, out)
		return out, nil
	}

	tpl := g.templates.GetTemplate(req.TemplateID)
	if tpl == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrTemplateNotFound, req.TemplateID)
	}

	composite, err := g.render(tpl, req.Design, req.Config.Resolve())
	if err != nil {
		return nil, err
	}

	data, err := encodeImage(composite, format, quality)
	if err != nil {
		return nil, err
	}

	g.cache.Set(cacheKey, data)
	out := &models.RenderOutput{Data: data, Cached: false, RenderTime: time.Since(start)}
	g.record(ctx, req, designHash, out)

	logrus.WithFields(logrus.Fields{
		"template_id": req.TemplateID,
		"render_ms":   out.RenderTime.Milliseconds(),
		"bytes":       len(data),
	}).Info("Mockup generated")
	return out, nil
}

// render performs the compositing pipeline on decoded images: fit the
// design into the print area, simulate material absorption, cut to the
// mask, overlay fabric texture, then flatten design / shadow / highlight
// onto the base in fixed order.
func (g *MaskGenerator) render(tpl *models.MockupTemplate, design []byte, settings models.RenderSettings) (image.Image, error) {
	base, err := imaging.Open(filepath.Join(g.templates.RootDir(), tpl.BasePath))
	if err != nil {
		return nil, fmt.Errorf("failed to load base image for %s: %w", tpl.ID, err)
	}
	baseW, baseH := base.Bounds().Dx(), base.Bounds().Dy()
	px, py, pw, ph := tpl.PrintArea.PixelRect(baseW, baseH)

	designImg, err := decodeDesign(design)
	if err != nil {
		return nil, err
	}

	// Contain-fit: preserve aspect ratio, pad with transparency. The
	// design never stretches to fill the print area.
	fitted := resizeContain(designImg, pw, ph)
	if settings.Smoothing > 0 {
		fitted = imaging.Blur(fitted, settings.Smoothing)
	}
	fitted = g.adjust(fitted, settings)

	// Work on a print-area-sized layer so the mask and texture operate in
	// print-area coordinates.
	ox, oy := utils.CenterOffset(0, 0, pw, ph, fitted.Bounds().Dx(), fitted.Bounds().Dy())
	areaLayer := padToCanvas(fitted, image.Pt(ox, oy), pw, ph)

	areaLayer = g.applyMask(tpl, areaLayer, pw, ph)
	areaLayer = g.applyTexture(tpl, areaLayer, settings, pw, ph)

	designLayer := padToCanvas(areaLayer, image.Pt(px, py), baseW, baseH)

	var composite image.Image
	switch settings.BlendMode {
	case models.BlendNormal:
		composite = imaging.Overlay(base, designLayer, image.Pt(0, 0), 1.0)
	case models.BlendOverlay:
		composite = blend.Overlay(base, designLayer)
	default: // multiply simulates ink sinking into the material
		composite = blend.Multiply(base, designLayer)
	}

	if layer := g.loadAuxLayer(tpl, tpl.ShadowPath, "shadow", baseW, baseH); layer != nil {
		composite = blend.Multiply(composite, layer)
	}
	if layer := g.loadAuxLayer(tpl, tpl.HighlightPath, "highlight", baseW, baseH); layer != nil {
		composite = blend.Screen(composite, layer)
	}

	return composite, nil
}

// adjust applies brightness/contrast/saturation multipliers to the fitted
// design. Multiplier 1.0 is a no-op; imaging expects percentage deltas.
func (g *MaskGenerator) adjust(img *image.NRGBA, s models.RenderSettings) *image.NRGBA {
	if s.Brightness != 1.0 {
		img = imaging.AdjustBrightness(img, (s.Brightness-1.0)*100)
	}
	if s.Contrast != 1.0 {
		img = imaging.AdjustContrast(img, (s.Contrast-1.0)*100)
	}
	if s.Saturation != 1.0 {
		img = imaging.AdjustSaturation(img, (s.Saturation-1.0)*100)
	}
	return img
}

// applyMask cuts the design layer to the template mask's alpha shape so it
// conforms to non-rectangular print areas such as garment contours.
func (g *MaskGenerator) applyMask(tpl *models.MockupTemplate, layer *image.NRGBA, pw, ph int) *image.NRGBA {
	if tpl.MaskPath == "" {
		return layer
	}
	mask, err := imaging.Open(filepath.Join(g.templates.RootDir(), tpl.MaskPath))
	if err != nil {
		logrus.WithError(err).WithField("template_id", tpl.ID).Warn("Mask unreadable, skipping mask step")
		return layer
	}
	return applyAlphaMask(layer, imaging.Resize(mask, pw, ph, imaging.Lanczos))
}

// applyTexture blends a lightened, opacity-capped displacement map over
// the design using an overlay blend. This simulates fabric weave and
// wrinkles without geometric distortion. A missing or unreadable map
// degrades gracefully: the step is skipped and generation continues.
func (g *MaskGenerator) applyTexture(tpl *models.MockupTemplate, layer *image.NRGBA, s models.RenderSettings, pw, ph int) *image.NRGBA {
	if tpl.DisplacementPath == "" || !s.TextureOverlay {
		return layer
	}

	disp, err := imaging.Open(filepath.Join(g.templates.RootDir(), tpl.DisplacementPath))
	if err != nil {
		logrus.WithError(err).WithField("template_id", tpl.ID).Warn("Displacement map unreadable, skipping texture overlay")
		return layer
	}

	texture := imaging.Resize(disp, pw, ph, imaging.Lanczos)
	texture = imaging.AdjustBrightness(texture, 10)

	// Overlay-blend the texture, confine it to the design's own alpha,
	// then mix at the capped opacity.
	textured := applyAlphaMask(blend.Overlay(layer, texture), layer)

	opacity := s.TextureOpacity * s.Intensity
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return imaging.Clone(blend.Opacity(layer, textured, opacity))
}

// loadAuxLayer loads an optional full-canvas layer (shadow or highlight),
// resized to the base dimensions. Nil means absent or unreadable.
func (g *MaskGenerator) loadAuxLayer(tpl *models.MockupTemplate, rel, kind string, w, h int) image.Image {
	if rel == "" {
		return nil
	}
	img, err := imaging.Open(filepath.Join(g.templates.RootDir(), rel))
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"template_id": tpl.ID, "layer": kind}).Warn("Auxiliary layer unreadable, skipping")
		return nil
	}
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		return imaging.Resize(img, w, h, imaging.Lanczos)
	}
	return img
}

// PreviewTemplate renders the base image with a translucent red rectangle
// over the print area. Used for template authoring; skips the cache and
// composites no design.
func (g *MaskGenerator) PreviewTemplate(id string) ([]byte, error) {
	tpl := g.templates.GetTemplate(id)
	if tpl == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrTemplateNotFound, id)
	}

	base, err := imaging.Open(filepath.Join(g.templates.RootDir(), tpl.BasePath))
	if err != nil {
		return nil, fmt.Errorf("failed to load base image for %s: %w", tpl.ID, err)
	}

	px, py, pw, ph := tpl.PrintArea.PixelRect(base.Bounds().Dx(), base.Bounds().Dy())
	marker := imaging.New(pw, ph, color.NRGBA{R: 255, A: 96})
	preview := imaging.Overlay(base, marker, image.Pt(px, py), 1.0)

	return encodeImage(preview, models.FormatPNG, 0)
}

// record appends a render-history row when a recorder is configured.
// History failures never affect the generation result.
func (g *MaskGenerator) record(ctx context.Context, req models.GenerateRequest, designHash string, out *models.RenderOutput) {
	if g.history == nil {
		return
	}
	rec := &models.RenderRecord{
		RunID:      req.RunID,
		TemplateID: req.TemplateID,
		DesignHash: designHash,
		Cached:     out.Cached,
		RenderMs:   out.RenderTime.Milliseconds(),
	}
	if err := g.history.Insert(ctx, rec); err != nil {
		logrus.WithError(err).WithField("template_id", req.TemplateID).Warn("Failed to record render history")
	}
}
