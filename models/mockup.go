package models

import "time"

// OutputFormat is the encoding of a generated mockup.
type OutputFormat string

const (
	FormatPNG  OutputFormat = "png"
	FormatJPEG OutputFormat = "jpeg"
	FormatWebP OutputFormat = "webp"
)

// GenerateRequest describes a single mockup generation call. DesignHash
// may be precomputed by the caller to avoid re-hashing a large buffer.
type GenerateRequest struct {
	TemplateID    string              `json:"templateId"`
	Design        []byte              `json:"design"`
	DesignHash    string              `json:"designHash,omitempty"`
	Config        *DisplacementConfig `json:"config,omitempty"`
	OutputFormat  OutputFormat        `json:"outputFormat,omitempty"`
	OutputQuality int                 `json:"outputQuality,omitempty"`
	RunID         string              `json:"-"`
}

// RenderOutput is the result of a single generation, including whether it
// was served from the cache and how long rendering took.
type RenderOutput struct {
	Data       []byte
	Cached     bool
	RenderTime time.Duration
}

// BatchRequest describes a batch pre-generation call. DesignHash may be
// precomputed by the caller to avoid re-hashing a large buffer.
type BatchRequest struct {
	Design      []byte      `json:"design"`
	DesignHash  string      `json:"designHash,omitempty"`
	Category    Category    `json:"category,omitempty"`
	ProductType ProductType `json:"productType,omitempty"`
	Config      *DisplacementConfig `json:"config,omitempty"`
}

// GeneratedMockup is one successful batch item. Buffer is held only for
// the duration of the batch response.
type GeneratedMockup struct {
	TemplateID  string      `json:"templateId"`
	Name        string      `json:"name"`
	Category    Category    `json:"category"`
	ProductType ProductType `json:"productType"`
	Buffer      []byte      `json:"buffer"`
	Cached      bool        `json:"cached"`
	RenderTime  int64       `json:"renderTime"`
}

// BatchResult collects the successes of one batch run. Failures are logged
// and visible only through the Requested/Succeeded delta.
type BatchResult struct {
	RunID     string            `json:"runId"`
	Requested int               `json:"requested"`
	Succeeded int               `json:"succeeded"`
	Mockups   []GeneratedMockup `json:"mockups"`
}

// RenderRecord is one row of the optional render-history log.
type RenderRecord struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"runId"`
	TemplateID string    `json:"templateId"`
	DesignHash string    `json:"designHash"`
	Cached     bool      `json:"cached"`
	RenderMs   int64     `json:"renderMs"`
	CreatedAt  time.Time `json:"createdAt"`
}
