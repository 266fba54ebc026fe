package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"wavewall-mockups/models"
	"wavewall-mockups/repository"
	"wavewall-mockups/service"
)

// MockupController handles HTTP requests for mockup generation.
type MockupController struct {
	generator    *service.MaskGenerator
	preGenerator *service.PreGenerator
	sheets       *service.SheetService
	history      repository.RenderRecordRepositoryInterface
}

// NewMockupController creates a new MockupController. history may be nil
// when no database is configured.
func NewMockupController(
	generator *service.MaskGenerator,
	preGenerator *service.PreGenerator,
	sheets *service.SheetService,
	history repository.RenderRecordRepositoryInterface,
) *MockupController {
	return &MockupController{
		generator:    generator,
		preGenerator: preGenerator,
		sheets:       sheets,
		history:      history,
	}
}

// Generate handles POST /api/mockups/generate. The design travels as a
// base64 string in the JSON body; the response is raw image bytes in the
// requested format.
func (c *MockupController) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.RunID = uuid.NewString()

	out, err := c.generator.Generate(r.Context(), req)
	if err != nil {
		respondGenerationError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(req.OutputFormat))
	if out.Cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(out.Data)
}

// Preview handles GET /api/mockups/preview/{templateID}: the base image
// with the print area outlined, for template authoring.
func (c *MockupController) Preview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateID")
	data, err := c.generator.PreviewTemplate(id)
	if err != nil {
		respondGenerationError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Batch handles POST /api/mockups/batch: fan the design out across every
// matching template. Failures are omitted from the array; the requested
// vs succeeded counts expose them.
func (c *MockupController) Batch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := c.preGenerator.GenerateAll(r.Context(), req)
	if err != nil {
		respondGenerationError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Sheet handles POST /api/mockups/sheet: run a batch and return a
// printable contact sheet, PDF when Chrome is available and HTML
// otherwise.
func (c *MockupController) Sheet(w http.ResponseWriter, r *http.Request) {
	var req models.BatchRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := c.preGenerator.GenerateAll(r.Context(), req)
	if err != nil {
		respondGenerationError(w, r, err)
		return
	}

	data, pdf, err := c.sheets.RenderSheet(r.Context(), result)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	if pdf {
		w.Header().Set("Content-Type", "application/pdf")
	} else {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// RecentRenders handles GET /api/renders/recent from the optional render
// history.
func (c *MockupController) RecentRenders(w http.ResponseWriter, r *http.Request) {
	if c.history == nil {
		respondError(w, r, http.StatusNotFound, "render history is not configured")
		return
	}

	records, err := c.history.ListRecent(r.Context(), 50)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	render.JSON(w, r, records)
}
