package models

import "testing"

func TestPixelRect(t *testing.T) {
	t.Run("scales and rounds", func(t *testing.T) {
		area := PrintArea{X: 0.25, Y: 0.2, Width: 0.5, Height: 0.5}
		x, y, w, h := area.PixelRect(1000, 1000)
		if x != 250 || y != 200 || w != 500 || h != 500 {
			t.Fatalf("PixelRect = (%d,%d,%d,%d), want (250,200,500,500)", x, y, w, h)
		}
	})

	t.Run("clips to the base image", func(t *testing.T) {
		area := PrintArea{X: 0.8, Y: 0.8, Width: 0.5, Height: 0.5}
		x, y, w, h := area.PixelRect(100, 100)
		if x+w > 100 || y+h > 100 {
			t.Fatalf("PixelRect = (%d,%d,%d,%d) escapes a 100x100 base", x, y, w, h)
		}
	})

	t.Run("never collapses to zero size", func(t *testing.T) {
		area := PrintArea{X: 0.999, Y: 0.999, Width: 0.0001, Height: 0.0001}
		_, _, w, h := area.PixelRect(100, 100)
		if w < 1 || h < 1 {
			t.Fatalf("PixelRect yielded %dx%d, want at least 1x1", w, h)
		}
	})
}

func TestCategoryIncludes(t *testing.T) {
	tests := []struct {
		category Category
		product  ProductType
		want     bool
	}{
		{CategoryWallArt, ProductPoster, true},
		{CategoryWallArt, ProductCanvas, true},
		{CategoryWallArt, ProductFramed, true},
		{CategoryWallArt, ProductTShirt, false},
		{CategoryApparel, ProductTShirt, true},
		{CategoryApparel, ProductHoodie, true},
		{CategoryApparel, ProductMug, false},
		{CategoryAll, ProductMug, true},
		{Category(""), ProductPoster, true},
	}
	for _, tt := range tests {
		if got := tt.category.Includes(tt.product); got != tt.want {
			t.Errorf("%q.Includes(%q) = %v, want %v", tt.category, tt.product, got, tt.want)
		}
	}
}

func TestCriteriaMatches(t *testing.T) {
	tpl := MockupTemplate{
		ID:          "tshirt-black-front",
		ProductType: ProductTShirt,
		Color:       "black",
		Angle:       AngleFront,
	}

	if !(TemplateCriteria{}).Matches(&tpl) {
		t.Fatal("empty criteria must match everything")
	}
	if !(TemplateCriteria{ProductType: ProductTShirt, Color: "black"}).Matches(&tpl) {
		t.Fatal("matching criteria rejected the template")
	}
	if (TemplateCriteria{ProductType: ProductTShirt, Color: "white"}).Matches(&tpl) {
		t.Fatal("criteria are AND-combined; a color mismatch must reject")
	}
}
