package utils

import (
	"testing"

	"wavewall-mockups/models"
)

func TestParseTemplateID(t *testing.T) {
	tests := []struct {
		id      string
		want    models.TemplateCriteria
		wantErr bool
	}{
		{id: "tshirt-black-front", want: models.TemplateCriteria{ProductType: models.ProductTShirt, Color: "black", Angle: models.AngleFront}},
		{id: "hoodie-white-back", want: models.TemplateCriteria{ProductType: models.ProductHoodie, Color: "white", Angle: models.AngleBack}},
		{id: "canvas-lifestyle", want: models.TemplateCriteria{ProductType: models.ProductCanvas, Angle: models.AngleLifestyle}},
		{id: "framed-front", want: models.TemplateCriteria{ProductType: models.ProductFramed, Angle: models.AngleFront}},
		{id: "POSTER-FRONT", want: models.TemplateCriteria{ProductType: models.ProductPoster, Angle: models.AngleFront}},
		// Variant suffixes after the angle are tolerated; the angle is taken
		// from the last recognizable part.
		{id: "mug-white-side", want: models.TemplateCriteria{ProductType: models.ProductMug, Color: "white", Angle: models.AngleSide}},
		{id: "sofa-front", wantErr: true},
		{id: "tshirt", wantErr: true},
		{id: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := ParseTemplateID(tt.id)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTemplateID(%q) succeeded, want error", tt.id)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTemplateID(%q): %v", tt.id, err)
			}
			if *got != tt.want {
				t.Fatalf("ParseTemplateID(%q) = %+v, want %+v", tt.id, *got, tt.want)
			}
		})
	}
}
