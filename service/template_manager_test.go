package service

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"wavewall-mockups/models"
)

func TestLoadLibraryScansDirectories(t *testing.T) {
	root := t.TempDir()
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	writeTemplateDir(t, root, posterTemplate("poster-front"), 400, 400, white)
	writeTemplateDir(t, root, models.MockupTemplate{
		ID:        "tshirt-black-front",
		PrintArea: models.PrintArea{X: 0.3, Y: 0.25, Width: 0.4, Height: 0.35},
	}, 400, 500, color.NRGBA{A: 255})

	m := NewTemplateManager(root)
	lib, err := m.LoadLibrary(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(lib.Templates) != 2 {
		t.Fatalf("scan discovered %d templates, want 2", len(lib.Templates))
	}

	// The scan persists a library.json so the next load reads the index.
	if _, err := os.Stat(filepath.Join(root, "library.json")); err != nil {
		t.Fatalf("library index was not persisted: %v", err)
	}

	fresh := NewTemplateManager(root)
	lib2, err := fresh.LoadLibrary(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(lib2.Templates) != 2 {
		t.Fatalf("index reload found %d templates, want 2", len(lib2.Templates))
	}
}

func TestRescanDiscoversNewDirectories(t *testing.T) {
	root := t.TempDir()
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	writeTemplateDir(t, root, posterTemplate("poster-front"), 100, 100, white)

	m := NewTemplateManager(root)
	if _, err := m.LoadLibrary(false); err != nil {
		t.Fatal(err)
	}

	// A template added on disk after the index was persisted is invisible
	// to a forced reload, which prefers the index, but a rescan finds it.
	writeTemplateDir(t, root, models.MockupTemplate{
		ID:        "canvas-front",
		PrintArea: models.PrintArea{X: 0.1, Y: 0.1, Width: 0.8, Height: 0.8},
	}, 100, 100, white)

	lib, err := m.LoadLibrary(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(lib.Templates) != 1 {
		t.Fatalf("forced reload found %d templates, want the 1 indexed", len(lib.Templates))
	}

	lib, err = m.Rescan()
	if err != nil {
		t.Fatal(err)
	}
	if len(lib.Templates) != 2 {
		t.Fatalf("rescan found %d templates, want 2", len(lib.Templates))
	}
	if m.GetTemplate("canvas-front") == nil {
		t.Fatal("rescanned template not visible to lookups")
	}

	// The rescan re-persists the index, so a fresh manager sees both.
	if got, err := NewTemplateManager(root).LoadLibrary(false); err != nil || len(got.Templates) != 2 {
		t.Fatalf("persisted rescan = %d templates (err %v), want 2", len(got.Templates), err)
	}
}

func TestScanBackfillsCriteriaFromID(t *testing.T) {
	root := t.TempDir()
	writeTemplateDir(t, root, models.MockupTemplate{
		ID:        "tshirt-black-front",
		PrintArea: models.PrintArea{X: 0.3, Y: 0.25, Width: 0.4, Height: 0.35},
	}, 100, 100, color.NRGBA{A: 255})

	m := NewTemplateManager(root)
	tpl := m.GetTemplate("tshirt-black-front")
	if tpl == nil {
		t.Fatal("template not found after scan")
	}
	if tpl.ProductType != models.ProductTShirt || tpl.Color != "black" || tpl.Angle != models.AngleFront {
		t.Fatalf("criteria not backfilled from id: %+v", tpl)
	}
}

func TestScanSkipsInvalidDirectories(t *testing.T) {
	root := t.TempDir()
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	writeTemplateDir(t, root, posterTemplate("poster-front"), 100, 100, white)

	// Broken folder: metadata references a base image that does not exist.
	broken := filepath.Join(root, "canvas-front")
	if err := os.MkdirAll(broken, 0755); err != nil {
		t.Fatal(err)
	}
	meta := `{"id":"canvas-front","basePath":"base.png","printArea":{"x":0.1,"y":0.1,"width":0.8,"height":0.8}}`
	if err := os.WriteFile(filepath.Join(broken, "metadata.json"), []byte(meta), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewTemplateManager(root)
	lib, err := m.LoadLibrary(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(lib.Templates) != 1 {
		t.Fatalf("scan discovered %d templates, want only the valid one", len(lib.Templates))
	}
	if lib.Templates[0].ID != "poster-front" {
		t.Fatalf("unexpected survivor: %s", lib.Templates[0].ID)
	}
}

func TestScanDropsMissingOptionalAssets(t *testing.T) {
	root := t.TempDir()
	tpl := posterTemplate("poster-front")
	tpl.DisplacementPath = "displacement.png" // never written to disk
	writeTemplateDir(t, root, tpl, 100, 100, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	m := NewTemplateManager(root)
	got := m.GetTemplate("poster-front")
	if got == nil {
		t.Fatal("template not found")
	}
	if got.DisplacementPath != "" {
		t.Fatalf("missing optional asset should be dropped, got %q", got.DisplacementPath)
	}
}

func TestFindTemplates(t *testing.T) {
	root := t.TempDir()
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	for _, id := range []string{"tshirt-black-front", "tshirt-white-front", "tshirt-black-back", "poster-front"} {
		writeTemplateDir(t, root, models.MockupTemplate{
			ID:        id,
			PrintArea: models.PrintArea{X: 0.25, Y: 0.2, Width: 0.5, Height: 0.5},
		}, 50, 50, white)
	}

	m := NewTemplateManager(root)

	t.Run("empty criteria matches all", func(t *testing.T) {
		if got := m.FindTemplates(models.TemplateCriteria{}); len(got) != 4 {
			t.Fatalf("matched %d templates, want 4", len(got))
		}
	})

	t.Run("criteria are AND combined", func(t *testing.T) {
		got := m.FindTemplates(models.TemplateCriteria{
			ProductType: models.ProductTShirt,
			Color:       "black",
			Angle:       models.AngleFront,
		})
		if len(got) != 1 || got[0].ID != "tshirt-black-front" {
			t.Fatalf("matched %v, want exactly tshirt-black-front", got)
		}
	})

	t.Run("no match returns empty", func(t *testing.T) {
		if got := m.FindTemplates(models.TemplateCriteria{Color: "red"}); len(got) != 0 {
			t.Fatalf("matched %d templates, want 0", len(got))
		}
	})
}

func TestAddAndRemoveTemplate(t *testing.T) {
	root := t.TempDir()
	m := NewTemplateManager(root)

	tpl := posterTemplate("poster-front")
	tpl.BasePath = "poster-front/base.png"
	if err := m.AddTemplate(tpl); err != nil {
		t.Fatal(err)
	}

	// Upsert replaces by id instead of duplicating.
	tpl.Name = "Poster, front view"
	if err := m.AddTemplate(tpl); err != nil {
		t.Fatal(err)
	}
	lib, _ := m.LoadLibrary(false)
	if len(lib.Templates) != 1 {
		t.Fatalf("upsert duplicated the template: %d entries", len(lib.Templates))
	}
	if got := m.GetTemplate("poster-front"); got == nil || got.Name != "Poster, front view" {
		t.Fatalf("upsert did not replace fields: %+v", got)
	}

	// The persisted index survives a fresh manager.
	fresh := NewTemplateManager(root)
	if fresh.GetTemplate("poster-front") == nil {
		t.Fatal("added template not visible after reload")
	}

	removed, err := m.RemoveTemplate("poster-front")
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Fatal("RemoveTemplate reported nothing removed")
	}
	if m.GetTemplate("poster-front") != nil {
		t.Fatal("template still present after removal")
	}

	removed, err = m.RemoveTemplate("poster-front")
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Fatal("second removal reported success")
	}
}

func TestAddTemplateValidation(t *testing.T) {
	m := NewTemplateManager(t.TempDir())

	if err := m.AddTemplate(models.MockupTemplate{PrintArea: models.PrintArea{Width: 0.5, Height: 0.5}}); err == nil {
		t.Fatal("expected error for missing id")
	}
	if err := m.AddTemplate(models.MockupTemplate{ID: "poster-front"}); err == nil {
		t.Fatal("expected error for empty print area")
	}
}

func TestGetTemplateReturnsCopy(t *testing.T) {
	root := t.TempDir()
	writeTemplateDir(t, root, posterTemplate("poster-front"), 50, 50, color.NRGBA{A: 255})

	m := NewTemplateManager(root)
	got := m.GetTemplate("poster-front")
	got.Name = "mutated"

	if again := m.GetTemplate("poster-front"); again.Name == "mutated" {
		t.Fatal("GetTemplate leaked a mutable reference into the library")
	}
}

func TestGetStats(t *testing.T) {
	root := t.TempDir()
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	for _, id := range []string{"tshirt-black-front", "tshirt-white-front", "poster-front"} {
		writeTemplateDir(t, root, models.MockupTemplate{
			ID:        id,
			PrintArea: models.PrintArea{X: 0.25, Y: 0.2, Width: 0.5, Height: 0.5},
		}, 50, 50, white)
	}

	stats := NewTemplateManager(root).GetStats()
	if stats.Total != 3 {
		t.Fatalf("Total = %d, want 3", stats.Total)
	}
	if stats.ByProductType[models.ProductTShirt] != 2 || stats.ByProductType[models.ProductPoster] != 1 {
		t.Fatalf("ByProductType = %v", stats.ByProductType)
	}
	if stats.ByColor["black"] != 1 || stats.ByColor["white"] != 1 {
		t.Fatalf("ByColor = %v", stats.ByColor)
	}
	if stats.ByAngle[models.AngleFront] != 3 {
		t.Fatalf("ByAngle = %v", stats.ByAngle)
	}
}
