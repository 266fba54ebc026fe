package service

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"wavewall-mockups/models"
	"wavewall-mockups/utils"
)

// fallbackMarginFraction is the proportional margin used to guess a canvas
// area when a template declares neither mask nor design bounds. It is a
// rough approximation, tuned by eye rather than contract.
const fallbackMarginFraction = 0.12

// PSDCompositor rebuilds layered templates around a user design. Each
// template names one of three method strategies; when the layer extractor
// is unavailable or the source file yields no layers, a flatten-and-overlay
// fallback keeps the pipeline alive at lower fidelity.
type PSDCompositor struct {
	extractor LayerExtractor
	workers   int
}

// NewPSDCompositor creates a compositor. A nil extractor forces the
// fallback path for every template.
func NewPSDCompositor(extractor LayerExtractor, workers int) *PSDCompositor {
	if workers <= 0 {
		workers = 4
	}
	return &PSDCompositor{extractor: extractor, workers: workers}
}

// Composite renders one template around the design image.
func (c *PSDCompositor) Composite(tpl models.PSDTemplate, design image.Image) (image.Image, error) {
	if c.extractor == nil {
		logrus.WithField("template", tpl.Name).Warn("Layer extractor unavailable, using flatten fallback")
		return c.fallback(tpl, design, nil)
	}

	doc, err := c.extractor.Extract(tpl.PSDPath)
	if err != nil {
		logrus.WithError(err).WithField("template", tpl.Name).Warn("Layer extraction failed, using flatten fallback")
		return c.fallback(tpl, design, doc)
	}

	switch tpl.Method {
	case models.MethodLayerByLayer:
		return c.layerByLayer(doc, tpl, design)
	case models.MethodDeleteLayer:
		return c.deleteLayer(doc, tpl, design)
	case models.MethodMaskedLayer:
		return c.maskedLayer(doc, tpl, design)
	default:
		return nil, fmt.Errorf("unknown composite method %q for template %s", tpl.Method, tpl.Name)
	}
}

// layerByLayer extracts only the base layer, composites the fitted design
// on top, then re-applies the reflection/overlay layer last. The order is
// fixed: base, design, reflection.
func (c *PSDCompositor) layerByLayer(doc *LayerDocument, tpl models.PSDTemplate, design image.Image) (image.Image, error) {
	w, h := c.canvasSize(doc, tpl)

	base := LayerAt(doc.Layers, tpl.BaseLayerIndex)
	if base == nil || base.Picture == nil {
		return nil, fmt.Errorf("template %s: base layer %d not found", tpl.Name, tpl.BaseLayerIndex)
	}
	canvas := padToCanvas(base.Picture, base.Bounds.Min, w, h)

	bounds := tpl.DesignBounds
	if bounds == nil {
		return nil, fmt.Errorf("template %s: layerByLayer requires designBounds", tpl.Name)
	}
	fitted := c.fitDesign(design, *bounds, tpl)
	canvas = imaging.Overlay(canvas, c.placeInBounds(fitted, *bounds, w, h), image.Pt(0, 0), 1.0)

	if tpl.ReflLayerIndex != nil {
		refl := LayerAt(doc.Layers, *tpl.ReflLayerIndex)
		if refl == nil || refl.Picture == nil {
			logrus.WithField("template", tpl.Name).Warn("Reflection layer missing, compositing without it")
		} else {
			canvas = imaging.Overlay(canvas, padToCanvas(refl.Picture, refl.Bounds.Min, w, h), image.Pt(0, 0), 1.0)
		}
	}
	return canvas, nil
}

// deleteLayer drops the template's own placeholder design layer, flattens
// the remaining stack into a clean base, and composites the fitted design
// into the vacated area.
func (c *PSDCompositor) deleteLayer(doc *LayerDocument, tpl models.PSDTemplate, design image.Image) (image.Image, error) {
	w, h := c.canvasSize(doc, tpl)

	canvas := imaging.New(w, h, color.NRGBA{})
	for i := range doc.Layers {
		if tpl.DesignLayerIndex != nil && i == *tpl.DesignLayerIndex {
			continue
		}
		layer := &doc.Layers[i]
		if layer.Picture == nil {
			continue
		}
		canvas = imaging.Overlay(canvas, padToCanvas(layer.Picture, layer.Bounds.Min, w, h), image.Pt(0, 0), 1.0)
	}

	bounds, err := c.designBounds(doc, tpl)
	if err != nil {
		return nil, err
	}
	fitted := c.fitDesign(design, bounds, tpl)
	return imaging.Overlay(canvas, c.placeInBounds(fitted, bounds, w, h), image.Pt(0, 0), 1.0), nil
}

// maskedLayer cuts the design to the placeholder layer's alpha shape so it
// follows fabric folds, then layers the shadow over it with a multiply
// blend. Order: base, masked design, shadow.
func (c *PSDCompositor) maskedLayer(doc *LayerDocument, tpl models.PSDTemplate, design image.Image) (image.Image, error) {
	w, h := c.canvasSize(doc, tpl)

	base := LayerAt(doc.Layers, tpl.BaseLayerIndex)
	if base == nil || base.Picture == nil {
		return nil, fmt.Errorf("template %s: base layer %d not found", tpl.Name, tpl.BaseLayerIndex)
	}
	canvas := padToCanvas(base.Picture, base.Bounds.Min, w, h)

	maskIdx := tpl.MaskLayerIndex
	if maskIdx == nil {
		maskIdx = tpl.DesignLayerIndex
	}
	if maskIdx == nil {
		return nil, fmt.Errorf("template %s: maskedLayer requires a mask or design layer index", tpl.Name)
	}
	placeholder := LayerAt(doc.Layers, *maskIdx)
	if placeholder == nil || placeholder.Picture == nil {
		return nil, fmt.Errorf("template %s: mask layer %d not found", tpl.Name, *maskIdx)
	}

	bounds := tpl.MaskBounds
	if bounds == nil {
		b := models.PixelBounds{
			X:      placeholder.Bounds.Min.X,
			Y:      placeholder.Bounds.Min.Y,
			Width:  placeholder.Bounds.Dx(),
			Height: placeholder.Bounds.Dy(),
		}
		bounds = &b
	}

	fitted := c.fitDesign(design, *bounds, tpl)
	mask := imaging.Resize(placeholder.Picture, bounds.Width, bounds.Height, imaging.Lanczos)
	masked := applyAlphaMask(padToCanvas(fitted, image.Pt(0, 0), bounds.Width, bounds.Height), mask)

	canvas = imaging.Overlay(canvas, padToCanvas(masked, image.Pt(bounds.X, bounds.Y), w, h), image.Pt(0, 0), 1.0)

	if tpl.ShadowLayerIndex != nil {
		shadow := LayerAt(doc.Layers, *tpl.ShadowLayerIndex)
		if shadow == nil || shadow.Picture == nil {
			logrus.WithField("template", tpl.Name).Warn("Shadow layer missing, compositing without it")
		} else {
			canvas = imaging.Clone(blend.Multiply(canvas, padToCanvas(shadow.Picture, shadow.Bounds.Min, w, h)))
		}
	}
	return canvas, nil
}

// fallback flattens the whole template to one image and overlays the
// design into a generic canvas area: declared mask/design bounds when
// available, otherwise a proportional-margin guess. Lower fidelity, always
// available.
func (c *PSDCompositor) fallback(tpl models.PSDTemplate, design image.Image, doc *LayerDocument) (image.Image, error) {
	var flat image.Image
	if doc != nil && doc.Flattened != nil {
		flat = doc.Flattened
	} else {
		img, err := imaging.Open(tpl.PSDPath)
		if err != nil {
			return nil, fmt.Errorf("fallback flatten failed for template %s: %w", tpl.Name, err)
		}
		flat = img
	}

	w, h := flat.Bounds().Dx(), flat.Bounds().Dy()
	var bounds models.PixelBounds
	switch {
	case tpl.MaskBounds != nil:
		bounds = *tpl.MaskBounds
	case tpl.DesignBounds != nil:
		bounds = *tpl.DesignBounds
	default:
		mx := int(float64(w) * fallbackMarginFraction)
		my := int(float64(h) * fallbackMarginFraction)
		bounds = models.PixelBounds{X: mx, Y: my, Width: w - 2*mx, Height: h - 2*my}
	}

	fitted := resizeContain(design, bounds.Width, bounds.Height)
	ox, oy := utils.CenterOffset(bounds.X, bounds.Y, bounds.Width, bounds.Height, fitted.Bounds().Dx(), fitted.Bounds().Dy())
	return imaging.Overlay(flat, fitted, image.Pt(ox, oy), 1.0), nil
}

// CompositeAll renders every template for one design concurrently. Each
// template succeeds or fails independently; failures are logged and
// excluded from the result rather than aborting the batch.
func (c *PSDCompositor) CompositeAll(ctx context.Context, templates []models.PSDTemplate, design image.Image) []models.PSDResult {
	var (
		mu      sync.Mutex
		results []models.PSDResult
	)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, tpl := range templates {
		tpl := tpl
		g.Go(func() error {
			img, err := c.Composite(tpl, design)
			if err != nil {
				logrus.WithError(err).WithField("template", tpl.Name).Warn("Preview composite failed")
				return nil
			}
			data, err := encodeImage(img, models.FormatPNG, 0)
			if err != nil {
				logrus.WithError(err).WithField("template", tpl.Name).Warn("Preview encode failed")
				return nil
			}
			mu.Lock()
			results = append(results, models.PSDResult{Name: tpl.Name, Buffer: data})
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return results
}

// fitDesign scales the design into the target bounds using the template's
// fit mode: cover fills and crops biased by the focal point, inside fits
// without cropping and pads with white.
func (c *PSDCompositor) fitDesign(design image.Image, bounds models.PixelBounds, tpl models.PSDTemplate) *image.NRGBA {
	switch tpl.FitMode {
	case models.FitInside:
		fitted := resizeContain(design, bounds.Width, bounds.Height)
		canvas := imaging.New(bounds.Width, bounds.Height, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		ox, oy := utils.CenterOffset(0, 0, bounds.Width, bounds.Height, fitted.Bounds().Dx(), fitted.Bounds().Dy())
		return imaging.Paste(canvas, fitted, image.Pt(ox, oy))
	default: // cover
		anchor := imaging.Center
		if tpl.Focal != nil {
			anchor = utils.AnchorForFocal(tpl.Focal.X, tpl.Focal.Y)
		}
		return imaging.Fill(design, bounds.Width, bounds.Height, anchor, imaging.Lanczos)
	}
}

// placeInBounds centers a fitted design within its bounds and pads it to
// the full canvas so every layer shares one coordinate system.
func (c *PSDCompositor) placeInBounds(fitted *image.NRGBA, bounds models.PixelBounds, w, h int) *image.NRGBA {
	ox, oy := utils.CenterOffset(bounds.X, bounds.Y, bounds.Width, bounds.Height, fitted.Bounds().Dx(), fitted.Bounds().Dy())
	return padToCanvas(fitted, image.Pt(ox, oy), w, h)
}

// canvasSize prefers the template's declared canvas, falling back to the
// document's native size.
func (c *PSDCompositor) canvasSize(doc *LayerDocument, tpl models.PSDTemplate) (int, int) {
	if tpl.CanvasSize.Width > 0 && tpl.CanvasSize.Height > 0 {
		return tpl.CanvasSize.Width, tpl.CanvasSize.Height
	}
	return doc.Width, doc.Height
}

// designBounds resolves the rectangle a deleteLayer template vacates:
// declared bounds first, then the placeholder layer's own bounds.
func (c *PSDCompositor) designBounds(doc *LayerDocument, tpl models.PSDTemplate) (models.PixelBounds, error) {
	if tpl.DesignBounds != nil {
		return *tpl.DesignBounds, nil
	}
	if tpl.DesignLayerIndex != nil {
		if layer := LayerAt(doc.Layers, *tpl.DesignLayerIndex); layer != nil {
			return models.PixelBounds{
				X:      layer.Bounds.Min.X,
				Y:      layer.Bounds.Min.Y,
				Width:  layer.Bounds.Dx(),
				Height: layer.Bounds.Dy(),
			}, nil
		}
	}
	return models.PixelBounds{}, fmt.Errorf("template %s: no design bounds available", tpl.Name)
}
