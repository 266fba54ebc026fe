package service

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"wavewall-mockups/models"
	"wavewall-mockups/utils"
)

// Conventional layer names the extractor looks for in authored source
// files. Matching is case-insensitive substring search.
var (
	designLayerNames       = []string{"design", "artwork", "placement"}
	displacementLayerNames = []string{"displacement", "displace"}
	maskLayerNames         = []string{"mask", "cutout"}
	shadowLayerNames       = []string{"shadow"}
	highlightLayerNames    = []string{"highlight", "light"}
	baseLayerNames         = []string{"base", "background", "product", "photo"}
)

// TemplateExtractor is the offline tool that turns a layered source file
// into a Template Library entry: it extracts conventional layers to
// standalone rasters, infers the print area from the DESIGN layer's
// bounds, and synthesizes a displacement map when none is authored.
type TemplateExtractor struct {
	extractor LayerExtractor
	templates *TemplateManager
}

// ExtractionSummary reports what one extraction produced, for the CLI's
// human-readable output.
type ExtractionSummary struct {
	TemplateID              string
	CanvasWidth             int
	CanvasHeight            int
	PrintArea               models.PrintArea
	OutputDir               string
	ExtractedLayers         []string
	DisplacementSynthesized bool
}

// NewTemplateExtractor creates the extraction tool over a layer extractor
// and the template manager that will own the result.
func NewTemplateExtractor(extractor LayerExtractor, templates *TemplateManager) *TemplateExtractor {
	return &TemplateExtractor{extractor: extractor, templates: templates}
}

// Extract reads a layered source file, writes the per-template asset
// directory under the templates root, and upserts the library entry.
// Missing required layers (BASE or a flattened composite, DESIGN) and
// unreadable sources are fatal.
func (e *TemplateExtractor) Extract(sourcePath, templateID string) (*ExtractionSummary, error) {
	if e.extractor == nil {
		return nil, fmt.Errorf("%w: no layer extractor configured", models.ErrToolUnavailable)
	}

	doc, err := e.extractor.Extract(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to extract layers from %s: %w", sourcePath, err)
	}

	outDir := filepath.Join(e.templates.RootDir(), templateID)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create template directory: %w", err)
	}

	summary := &ExtractionSummary{
		TemplateID:   templateID,
		CanvasWidth:  doc.Width,
		CanvasHeight: doc.Height,
		OutputDir:    outDir,
	}

	// BASE is required; a merged composite is an acceptable stand-in.
	base := FindLayerByNames(doc.Layers, baseLayerNames)
	var baseCanvas image.Image
	switch {
	case base != nil && base.Picture != nil:
		baseCanvas = padToCanvas(base.Picture, base.Bounds.Min, doc.Width, doc.Height)
	case doc.Flattened != nil:
		logrus.WithField("source", sourcePath).Warn("No BASE layer found, using flattened composite")
		baseCanvas = doc.Flattened
	default:
		return nil, fmt.Errorf("source %s has neither a BASE layer nor a flattened composite", sourcePath)
	}
	if err := e.saveLayer(outDir, "base.png", baseCanvas, summary); err != nil {
		return nil, err
	}

	// DESIGN is required: its bounds define the print area.
	design := FindLayerByNames(doc.Layers, designLayerNames)
	if design == nil {
		return nil, fmt.Errorf("source %s has no DESIGN layer to infer the print area from", sourcePath)
	}
	summary.PrintArea = models.PrintArea{
		X:      float64(design.Bounds.Min.X) / float64(doc.Width),
		Y:      float64(design.Bounds.Min.Y) / float64(doc.Height),
		Width:  float64(design.Bounds.Dx()) / float64(doc.Width),
		Height: float64(design.Bounds.Dy()) / float64(doc.Height),
	}

	tpl := models.MockupTemplate{
		ID:        templateID,
		Name:      templateID,
		PrintArea: summary.PrintArea,
		BasePath:  filepath.Join(templateID, "base.png"),
		Metadata:  &models.TemplateMetadata{Source: filepath.Base(sourcePath)},
	}
	if c, err := utils.ParseTemplateID(templateID); err == nil {
		tpl.ProductType = c.ProductType
		tpl.Angle = c.Angle
		tpl.Color = c.Color
	}

	// Optional layers: extract when present.
	if layer := FindLayerByNames(doc.Layers, maskLayerNames); layer != nil && layer.Picture != nil {
		// The mask raster lives in print-area coordinates.
		offset := layer.Bounds.Min.Sub(design.Bounds.Min)
		if err := e.saveLayer(outDir, "mask.png", padToCanvas(layer.Picture, image.Pt(offset.X, offset.Y), design.Bounds.Dx(), design.Bounds.Dy()), summary); err == nil {
			tpl.MaskPath = filepath.Join(templateID, "mask.png")
		}
	}
	if layer := FindLayerByNames(doc.Layers, shadowLayerNames); layer != nil && layer.Picture != nil {
		if err := e.saveLayer(outDir, "shadow.png", padToCanvas(layer.Picture, layer.Bounds.Min, doc.Width, doc.Height), summary); err == nil {
			tpl.ShadowPath = filepath.Join(templateID, "shadow.png")
		}
	}
	if layer := FindLayerByNames(doc.Layers, highlightLayerNames); layer != nil && layer.Picture != nil {
		if err := e.saveLayer(outDir, "highlight.png", padToCanvas(layer.Picture, layer.Bounds.Min, doc.Width, doc.Height), summary); err == nil {
			tpl.HighlightPath = filepath.Join(templateID, "highlight.png")
		}
	}

	// DISPLACEMENT: authored map preferred, otherwise synthesized from
	// the base photo's luminance so texture overlay still has something
	// to work with.
	disp := FindLayerByNames(doc.Layers, displacementLayerNames)
	var dispImg image.Image
	if disp != nil && disp.Picture != nil {
		dispImg = padToCanvas(disp.Picture, disp.Bounds.Min, doc.Width, doc.Height)
	} else {
		dispImg = imaging.Blur(imaging.Grayscale(baseCanvas), 3.0)
		summary.DisplacementSynthesized = true
	}
	if err := e.saveLayer(outDir, "displacement.png", dispImg, summary); err == nil {
		tpl.DisplacementPath = filepath.Join(templateID, "displacement.png")
	}

	if err := e.writeMetadata(outDir, tpl); err != nil {
		return nil, err
	}
	if err := e.templates.AddTemplate(tpl); err != nil {
		return nil, fmt.Errorf("failed to register template %s: %w", templateID, err)
	}

	logrus.WithFields(logrus.Fields{
		"template_id": templateID,
		"layers":      summary.ExtractedLayers,
		"synthesized": summary.DisplacementSynthesized,
	}).Info("Template extracted")
	return summary, nil
}

func (e *TemplateExtractor) saveLayer(dir, name string, img image.Image, summary *ExtractionSummary) error {
	if err := imaging.Save(img, filepath.Join(dir, name)); err != nil {
		logrus.WithError(err).WithField("layer", name).Warn("Failed to write extracted layer")
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	summary.ExtractedLayers = append(summary.ExtractedLayers, name)
	return nil
}

// writeMetadata stores the per-template metadata.json with paths relative
// to the template's own directory, matching the scanner's expectations.
func (e *TemplateExtractor) writeMetadata(dir string, tpl models.MockupTemplate) error {
	local := tpl
	local.BasePath = filepath.Base(tpl.BasePath)
	if local.DisplacementPath != "" {
		local.DisplacementPath = filepath.Base(local.DisplacementPath)
	}
	if local.MaskPath != "" {
		local.MaskPath = filepath.Base(local.MaskPath)
	}
	if local.ShadowPath != "" {
		local.ShadowPath = filepath.Base(local.ShadowPath)
	}
	if local.HighlightPath != "" {
		local.HighlightPath = filepath.Base(local.HighlightPath)
	}

	data, err := json.MarshalIndent(local, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize template metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write template metadata: %w", err)
	}
	return nil
}
