package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"

	"wavewall-mockups/models"
	"wavewall-mockups/utils"

	// Decoder registrations for user-supplied design buffers and for the
	// flatten fallback on layered source files.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// decodeDesign decodes a user-supplied design buffer into an image.
func decodeDesign(design []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(design))
	if err != nil {
		return nil, fmt.Errorf("failed to decode design: %w", err)
	}
	return img, nil
}

// defaultOutputQuality is used when a request leaves the lossy-encoding
// quality unset or out of range.
const defaultOutputQuality = 90

// encodeImage encodes a composite to the requested output format. Quality
// applies to lossy formats only; zero picks a sensible default.
func encodeImage(img image.Image, format models.OutputFormat, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = defaultOutputQuality
	}

	var buf bytes.Buffer
	switch format {
	case models.FormatJPEG:
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, fmt.Errorf("failed to encode jpeg: %w", err)
		}
	case models.FormatWebP:
		if err := nativewebp.Encode(&buf, img, nil); err != nil {
			return nil, fmt.Errorf("failed to encode webp: %w", err)
		}
	case models.FormatPNG, "":
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, fmt.Errorf("failed to encode png: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	return buf.Bytes(), nil
}

// resizeContain scales an image to the largest size with its original
// aspect ratio that fits inside (boundW, boundH). Small designs are scaled
// up; the ratio is never distorted.
func resizeContain(img image.Image, boundW, boundH int) *image.NRGBA {
	w, h := utils.FitContain(img.Bounds().Dx(), img.Bounds().Dy(), boundW, boundH)
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// applyAlphaMask multiplies the alpha channel of img by the alpha of mask
// (destination-in compositing). Fully opaque masks with no alpha channel
// still work: their color is ignored, only alpha matters, and opaque
// pixels keep the design untouched. The mask is stretched to img's size
// by the caller; mismatched sizes clip to the smaller of the two.
func applyAlphaMask(img image.Image, mask image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	maskN := imaging.Clone(mask)

	w := out.Bounds().Dx()
	if mw := maskN.Bounds().Dx(); mw < w {
		w = mw
	}
	h := out.Bounds().Dy()
	if mh := maskN.Bounds().Dy(); mh < h {
		h = mh
	}

	for y := 0; y < out.Bounds().Dy(); y++ {
		for x := 0; x < out.Bounds().Dx(); x++ {
			i := out.PixOffset(x, y)
			if x >= w || y >= h {
				out.Pix[i+3] = 0
				continue
			}
			ma := maskN.Pix[maskN.PixOffset(x, y)+3]
			out.Pix[i+3] = uint8(uint16(out.Pix[i+3]) * uint16(ma) / 255)
		}
	}
	return out
}

// padToCanvas places an image at the given offset on a transparent canvas
// of the given size, aligning layer coordinates with the full template
// canvas before compositing.
func padToCanvas(img image.Image, offset image.Point, w, h int) *image.NRGBA {
	canvas := imaging.New(w, h, color.NRGBA{})
	return imaging.Paste(canvas, img, offset)
}
