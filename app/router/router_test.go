package router

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"

	"wavewall-mockups/app/controller"
	"wavewall-mockups/models"
	"wavewall-mockups/service"
)

// newTestRouter wires a live stack over a temp template directory holding
// one poster template with a white 200x200 base.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	root := t.TempDir()

	dir := filepath.Join(root, "poster-front")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	base := imaging.New(200, 200, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	if err := imaging.Save(base, filepath.Join(dir, "base.png")); err != nil {
		t.Fatal(err)
	}
	meta := `{"id":"poster-front","basePath":"base.png","printArea":{"x":0.25,"y":0.2,"width":0.5,"height":0.5}}`
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(meta), 0644); err != nil {
		t.Fatal(err)
	}

	templates := service.NewTemplateManager(root)
	cache, err := service.NewMockupCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	generator := service.NewMaskGenerator(templates, cache)
	preGenerator := service.NewPreGenerator(generator, templates, 2)
	sheets, err := service.NewSheetService()
	if err != nil {
		t.Fatal(err)
	}

	return New(&Controllers{
		Mockup:   controller.NewMockupController(generator, preGenerator, sheets, nil),
		Template: controller.NewTemplateController(templates, nil),
		Cache:    controller.NewCacheController(cache),
	})
}

func designPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(40, 40, color.NRGBA{R: 255, A: 255})
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/ping", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	r := newTestRouter(t)

	t.Run("renders and reports cache status", func(t *testing.T) {
		body := models.GenerateRequest{TemplateID: "poster-front", Design: designPNG(t)}

		rec := doJSON(t, r, http.MethodPost, "/api/mockups/generate", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("X-Cache"); got != "MISS" {
			t.Fatalf("first call X-Cache = %q, want MISS", got)
		}
		if got := rec.Header().Get("Content-Type"); got != "image/png" {
			t.Fatalf("Content-Type = %q, want image/png", got)
		}

		rec = doJSON(t, r, http.MethodPost, "/api/mockups/generate", body)
		if got := rec.Header().Get("X-Cache"); got != "HIT" {
			t.Fatalf("second call X-Cache = %q, want HIT", got)
		}

		if _, err := imaging.Decode(bytes.NewReader(rec.Body.Bytes())); err != nil {
			t.Fatalf("response is not a decodable image: %v", err)
		}
	})

	t.Run("unknown template maps to 404", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/mockups/generate",
			models.GenerateRequest{TemplateID: "mug-white-side", Design: designPNG(t)})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("missing design maps to 400", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/mockups/generate",
			models.GenerateRequest{TemplateID: "poster-front"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestPreviewEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/mockups/preview/poster-front", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if _, _, err := image.Decode(bytes.NewReader(rec.Body.Bytes())); err != nil {
		t.Fatalf("preview is not a decodable image: %v", err)
	}
}

func TestBatchEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/mockups/batch",
		models.BatchRequest{Design: designPNG(t), Category: models.CategoryWallArt})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result models.BatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Requested != 1 || result.Succeeded != 1 {
		t.Fatalf("batch = %+v, want 1/1", result)
	}
	if result.RunID == "" {
		t.Fatal("batch result carries no run id")
	}
}

func TestTemplateEndpoints(t *testing.T) {
	r := newTestRouter(t)

	t.Run("list", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/templates/", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var got []models.MockupTemplate
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != "poster-front" {
			t.Fatalf("list = %+v, want just poster-front", got)
		}
	})

	t.Run("get by id", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/templates/poster-front", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		rec = doJSON(t, r, http.MethodGet, "/api/templates/missing", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status for unknown id = %d, want 404", rec.Code)
		}
	})

	t.Run("stats", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/templates/stats", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var stats models.LibraryStats
		if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
			t.Fatal(err)
		}
		if stats.Total != 1 {
			t.Fatalf("stats.Total = %d, want 1", stats.Total)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodDelete, "/api/templates/poster-front", nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		rec = doJSON(t, r, http.MethodDelete, "/api/templates/poster-front", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("second delete status = %d, want 404", rec.Code)
		}
	})
}

func TestCacheEndpoints(t *testing.T) {
	r := newTestRouter(t)

	// Populate one entry through a real generation.
	doJSON(t, r, http.MethodPost, "/api/mockups/generate",
		models.GenerateRequest{TemplateID: "poster-front", Design: designPNG(t)})

	rec := doJSON(t, r, http.MethodGet, "/api/cache/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats service.CacheStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 1 {
		t.Fatalf("stats.Entries = %d, want 1", stats.Entries)
	}

	rec = doJSON(t, r, http.MethodDelete, "/api/cache/", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d, want 204", rec.Code)
	}
}

func TestRecentRendersWithoutHistory(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/api/renders/recent", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 when history is not configured", rec.Code)
	}
}
