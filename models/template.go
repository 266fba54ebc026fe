package models

import "time"

// ProductType identifies the physical product a mockup template renders.
type ProductType string

const (
	ProductTShirt ProductType = "tshirt"
	ProductHoodie ProductType = "hoodie"
	ProductMug    ProductType = "mug"
	ProductPoster ProductType = "poster"
	ProductCanvas ProductType = "canvas"
	ProductFramed ProductType = "framed"
)

// Angle identifies the camera angle of a template's base photo.
type Angle string

const (
	AngleFront     Angle = "front"
	AngleBack      Angle = "back"
	AngleSide      Angle = "side"
	AngleFlat      Angle = "flat"
	AngleLifestyle Angle = "lifestyle"
)

// Category groups product types for batch filtering.
type Category string

const (
	CategoryWallArt Category = "wall-art"
	CategoryApparel Category = "apparel"
	CategoryAll     Category = "all"
)

// CategoryOf returns the batch category a product type belongs to.
func CategoryOf(pt ProductType) Category {
	switch pt {
	case ProductPoster, ProductCanvas, ProductFramed:
		return CategoryWallArt
	case ProductTShirt, ProductHoodie:
		return CategoryApparel
	}
	return CategoryAll
}

// Includes reports whether a product type belongs to the category.
// CategoryAll matches everything.
func (c Category) Includes(pt ProductType) bool {
	if c == "" || c == CategoryAll {
		return true
	}
	return CategoryOf(pt) == c
}

// PrintArea is the normalized placement rectangle for a design on a
// template's base image. Values are fractions (0-1) of the base image's
// pixel dimensions.
type PrintArea struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation,omitempty"`
}

// Valid reports whether the rectangle has positive size. Out-of-range
// rectangles are tolerated (PixelRect clips them) rather than rejected.
func (p PrintArea) Valid() bool {
	return p.Width > 0 && p.Height > 0
}

// PixelRect converts the normalized rectangle into pixel coordinates for a
// base image of the given dimensions, clipping to the image bounds.
func (p PrintArea) PixelRect(baseW, baseH int) (x, y, w, h int) {
	x = int(p.X*float64(baseW) + 0.5)
	y = int(p.Y*float64(baseH) + 0.5)
	w = int(p.Width*float64(baseW) + 0.5)
	h = int(p.Height*float64(baseH) + 0.5)

	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x+w > baseW {
		w = baseW - x
	}
	if y+h > baseH {
		h = baseH - y
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return x, y, w, h
}

// TemplateMetadata holds informational fields that do not affect rendering.
type TemplateMetadata struct {
	Resolution string `json:"resolution,omitempty"`
	Source     string `json:"source,omitempty"`
	License    string `json:"license,omitempty"`
}

// MockupTemplate describes one renderable product/view combination.
// Asset paths are relative to the templates root directory.
type MockupTemplate struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	ProductType      ProductType       `json:"productType"`
	Color            string            `json:"color,omitempty"`
	Angle            Angle             `json:"angle"`
	BasePath         string            `json:"basePath"`
	DisplacementPath string            `json:"displacementPath,omitempty"`
	MaskPath         string            `json:"maskPath,omitempty"`
	ShadowPath       string            `json:"shadowPath,omitempty"`
	HighlightPath    string            `json:"highlightPath,omitempty"`
	PrintArea        PrintArea         `json:"printArea"`
	Metadata         *TemplateMetadata `json:"metadata,omitempty"`
}

// TemplateLibrary is the persisted index of all known templates.
// Template IDs are unique within Templates.
type TemplateLibrary struct {
	Templates   []MockupTemplate `json:"templates"`
	Version     string           `json:"version"`
	LastUpdated time.Time        `json:"lastUpdated"`
}

// TemplateCriteria filters templates. Zero-value fields match everything;
// set fields are AND-combined.
type TemplateCriteria struct {
	ProductType ProductType `json:"productType,omitempty"`
	Color       string      `json:"color,omitempty"`
	Angle       Angle       `json:"angle,omitempty"`
}

// Matches reports whether a template satisfies every set criterion.
func (c TemplateCriteria) Matches(t *MockupTemplate) bool {
	if c.ProductType != "" && t.ProductType != c.ProductType {
		return false
	}
	if c.Color != "" && t.Color != c.Color {
		return false
	}
	if c.Angle != "" && t.Angle != c.Angle {
		return false
	}
	return true
}

// LibraryStats aggregates template counts for observability.
type LibraryStats struct {
	Total         int                 `json:"total"`
	ByProductType map[ProductType]int `json:"byProductType"`
	ByAngle       map[Angle]int       `json:"byAngle"`
	ByColor       map[string]int      `json:"byColor"`
}
