package models

import "image"

// CompositeMethod selects the strategy used to rebuild a layered template
// around a user design.
type CompositeMethod string

const (
	// MethodLayerByLayer extracts the base layer, composites the design,
	// then re-applies a reflection/overlay layer on top.
	MethodLayerByLayer CompositeMethod = "layerByLayer"
	// MethodDeleteLayer removes the template's placeholder design layer,
	// flattens the rest, and composites the design into the vacated area.
	MethodDeleteLayer CompositeMethod = "deleteLayer"
	// MethodMaskedLayer cuts the design to the placeholder layer's alpha
	// shape and layers a shadow over it.
	MethodMaskedLayer CompositeMethod = "maskedLayer"
)

// FitMode controls how a design is scaled into a target rectangle.
type FitMode string

const (
	// FitCover fills the rectangle entirely, cropping overflow.
	FitCover FitMode = "cover"
	// FitInside fits entirely within the rectangle, padding with white.
	FitInside FitMode = "inside"
)

// FocalPoint is a normalized (0-1) anchor that biases which part of a
// cover-fitted design survives cropping.
type FocalPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PixelBounds is an absolute pixel rectangle within a template's native
// canvas (not normalized).
type PixelBounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the bounds to an image.Rectangle.
func (b PixelBounds) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// CanvasSize is the native pixel size of a layered template.
type CanvasSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PSDTemplate describes one layered-file template for the preview
// compositor. Layer indices refer to top-level layers in document order
// (bottom first); optional indices are nil when the template has no such
// layer.
type PSDTemplate struct {
	Name             string          `json:"name"`
	PSDPath          string          `json:"psdPath"`
	Orientation      string          `json:"orientation,omitempty"`
	CanvasSize       CanvasSize      `json:"canvasSize"`
	Method           CompositeMethod `json:"method"`
	DesignBounds     *PixelBounds    `json:"designBounds,omitempty"`
	MaskBounds       *PixelBounds    `json:"maskBounds,omitempty"`
	BaseLayerIndex   int             `json:"baseLayerIndex"`
	ReflLayerIndex   *int            `json:"reflLayerIndex,omitempty"`
	DesignLayerIndex *int            `json:"designLayerIndex,omitempty"`
	MaskLayerIndex   *int            `json:"maskLayerIndex,omitempty"`
	ShadowLayerIndex *int            `json:"shadowLayerIndex,omitempty"`
	FitMode          FitMode         `json:"fitMode,omitempty"`
	Focal            *FocalPoint     `json:"focal,omitempty"`
}

// PSDResult is one successful preview composite in a multi-template run.
type PSDResult struct {
	Name   string `json:"name"`
	Buffer []byte `json:"buffer"`
}
