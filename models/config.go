package models

// BlendMode selects how the design layer is combined with the base image.
type BlendMode string

const (
	BlendMultiply BlendMode = "multiply"
	BlendOverlay  BlendMode = "overlay"
	BlendNormal   BlendMode = "normal"
)

// Rendering defaults. Brightness below 1.0 simulates light absorption by
// the printed material; the texture overlay stays subtle by default.
const (
	DefaultIntensity      = 1.0
	DefaultBrightness     = 0.92
	DefaultContrast       = 1.0
	DefaultSaturation     = 1.0
	DefaultSmoothing      = 0.0
	DefaultTextureOpacity = 0.15
)

// DisplacementConfig is a per-generation override bag merged over the
// system defaults. Nil pointer fields mean "use the default"; the struct
// is immutable for the duration of a generation call.
type DisplacementConfig struct {
	Intensity      *float64  `json:"intensity,omitempty"`
	Brightness     *float64  `json:"brightness,omitempty"`
	Contrast       *float64  `json:"contrast,omitempty"`
	Saturation     *float64  `json:"saturation,omitempty"`
	BlendMode      BlendMode `json:"blendMode,omitempty"`
	Smoothing      *float64  `json:"smoothing,omitempty"`
	TextureOverlay *bool     `json:"textureOverlay,omitempty"`
	TextureOpacity *float64  `json:"textureOpacity,omitempty"`
}

// IsZero reports whether no override is set at all. Zero configs are
// excluded from cache-key hashing so that an empty bag and an absent one
// produce the same key.
func (c *DisplacementConfig) IsZero() bool {
	if c == nil {
		return true
	}
	return c.Intensity == nil && c.Brightness == nil && c.Contrast == nil &&
		c.Saturation == nil && c.BlendMode == "" && c.Smoothing == nil &&
		c.TextureOverlay == nil && c.TextureOpacity == nil
}

// RenderSettings is a fully resolved configuration with every default
// applied, ready for the compositing pipeline.
type RenderSettings struct {
	Intensity      float64
	Brightness     float64
	Contrast       float64
	Saturation     float64
	BlendMode      BlendMode
	Smoothing      float64
	TextureOverlay bool
	TextureOpacity float64
}

// Resolve merges the overrides over the system defaults. Safe on a nil
// receiver, which yields the pure defaults.
func (c *DisplacementConfig) Resolve() RenderSettings {
	s := RenderSettings{
		Intensity:      DefaultIntensity,
		Brightness:     DefaultBrightness,
		Contrast:       DefaultContrast,
		Saturation:     DefaultSaturation,
		BlendMode:      BlendMultiply,
		Smoothing:      DefaultSmoothing,
		TextureOverlay: true,
		TextureOpacity: DefaultTextureOpacity,
	}
	if c == nil {
		return s
	}
	if c.Intensity != nil {
		s.Intensity = *c.Intensity
	}
	if c.Brightness != nil {
		s.Brightness = *c.Brightness
	}
	if c.Contrast != nil {
		s.Contrast = *c.Contrast
	}
	if c.Saturation != nil {
		s.Saturation = *c.Saturation
	}
	if c.BlendMode != "" {
		s.BlendMode = c.BlendMode
	}
	if c.Smoothing != nil {
		s.Smoothing = *c.Smoothing
	}
	if c.TextureOverlay != nil {
		s.TextureOverlay = *c.TextureOverlay
	}
	if c.TextureOpacity != nil {
		s.TextureOpacity = *c.TextureOpacity
	}
	return s
}
