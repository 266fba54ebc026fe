package service

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"wavewall-mockups/models"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	return imaging.New(w, h, c)
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("failed to save test image %s: %v", path, err)
	}
}

func toNRGBA(t *testing.T, img image.Image) *image.NRGBA {
	t.Helper()
	return imaging.Clone(img)
}

func decodePNG(t *testing.T, data []byte) *image.NRGBA {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode output image: %v", err)
	}
	return imaging.Clone(img)
}

// writeTemplateDir materializes one template folder (metadata.json plus a
// solid base image) under the templates root.
func writeTemplateDir(t *testing.T, root string, tpl models.MockupTemplate, baseW, baseH int, baseColor color.NRGBA) {
	t.Helper()
	dir := filepath.Join(root, tpl.ID)
	writePNG(t, filepath.Join(dir, "base.png"), solidImage(baseW, baseH, baseColor))

	meta := tpl
	meta.BasePath = "base.png"
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal metadata: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), data, 0644); err != nil {
		t.Fatalf("failed to write metadata: %v", err)
	}
}

func posterTemplate(id string) models.MockupTemplate {
	return models.MockupTemplate{
		ID:          id,
		Name:        id,
		ProductType: models.ProductPoster,
		Angle:       models.AngleFront,
		PrintArea:   models.PrintArea{X: 0.25, Y: 0.2, Width: 0.5, Height: 0.5},
	}
}
