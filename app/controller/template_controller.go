package controller

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"wavewall-mockups/models"
	"wavewall-mockups/service"
)

// TemplateController handles HTTP requests for the template library.
type TemplateController struct {
	templates *service.TemplateManager
	sync      service.SyncServiceInterface
}

// NewTemplateController creates a new TemplateController. sync may be nil
// when no Drive credentials are configured.
func NewTemplateController(templates *service.TemplateManager, sync service.SyncServiceInterface) *TemplateController {
	return &TemplateController{templates: templates, sync: sync}
}

// List handles GET /api/templates with optional productType/color/angle
// query filters (AND-combined).
func (c *TemplateController) List(w http.ResponseWriter, r *http.Request) {
	criteria := models.TemplateCriteria{
		ProductType: models.ProductType(r.URL.Query().Get("productType")),
		Color:       r.URL.Query().Get("color"),
		Angle:       models.Angle(r.URL.Query().Get("angle")),
	}
	matched := c.templates.FindTemplates(criteria)
	if matched == nil {
		matched = []models.MockupTemplate{}
	}
	render.JSON(w, r, matched)
}

// Get handles GET /api/templates/{templateID}.
func (c *TemplateController) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateID")
	tpl := c.templates.GetTemplate(id)
	if tpl == nil {
		respondError(w, r, http.StatusNotFound, "template not found: "+id)
		return
	}
	render.JSON(w, r, tpl)
}

// Create handles POST /api/templates: upsert a manually authored template.
func (c *TemplateController) Create(w http.ResponseWriter, r *http.Request) {
	var tpl models.MockupTemplate
	if err := render.DecodeJSON(r.Body, &tpl); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := c.templates.AddTemplate(tpl); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, tpl)
}

// Delete handles DELETE /api/templates/{templateID}.
func (c *TemplateController) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateID")
	removed, err := c.templates.RemoveTemplate(id)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		respondError(w, r, http.StatusNotFound, "template not found: "+id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/templates/stats.
func (c *TemplateController) Stats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, c.templates.GetStats())
}

// Reload handles POST /api/templates/reload: force re-read of the index,
// falling back to a directory scan when it is missing or corrupt.
func (c *TemplateController) Reload(w http.ResponseWriter, r *http.Request) {
	lib, err := c.templates.LoadLibrary(true)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	render.JSON(w, r, map[string]any{
		"templates":   len(lib.Templates),
		"lastUpdated": lib.LastUpdated,
	})
}

// Sync handles POST /api/templates/sync: pull remote template packs from
// the configured Drive folder.
func (c *TemplateController) Sync(w http.ResponseWriter, r *http.Request) {
	if c.sync == nil {
		respondError(w, r, http.StatusNotFound, "template sync is not configured")
		return
	}
	folderID := r.URL.Query().Get("folderId")
	if folderID == "" {
		folderID = os.Getenv("DRIVE_TEMPLATES_FOLDER_ID")
	}
	if folderID == "" {
		respondError(w, r, http.StatusBadRequest, "folderId parameter is required")
		return
	}

	downloaded, skipped, total, err := c.sync.SyncTemplatePacks(r.Context(), folderID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	render.JSON(w, r, map[string]int{
		"downloaded": downloaded,
		"skipped":    skipped,
		"total":      total,
	})
}
