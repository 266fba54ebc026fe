package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"wavewall-mockups/models"
)

// errorResponse is the structured error body for every API failure.
type errorResponse struct {
	Message string `json:"message"`
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Message: message})
}

// respondGenerationError maps the generation error taxonomy onto HTTP
// statuses: unknown template and missing design are client-correctable,
// everything else is a server failure.
func respondGenerationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrTemplateNotFound):
		respondError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrMissingDesign):
		respondError(w, r, http.StatusBadRequest, err.Error())
	default:
		respondError(w, r, http.StatusInternalServerError, err.Error())
	}
}

func contentTypeFor(format models.OutputFormat) string {
	switch format {
	case models.FormatJPEG:
		return "image/jpeg"
	case models.FormatWebP:
		return "image/webp"
	default:
		return "image/png"
	}
}
