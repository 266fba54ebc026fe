package utils

import "github.com/disintegration/imaging"

// FitContain returns the largest dimensions with the same aspect ratio as
// (w, h) that fit inside (boundW, boundH). Unlike imaging.Fit, the result
// may be larger than the source (small designs are scaled up to fill the
// print area).
func FitContain(w, h, boundW, boundH int) (int, int) {
	if w <= 0 || h <= 0 || boundW <= 0 || boundH <= 0 {
		return 0, 0
	}

	scaleW := float64(boundW) / float64(w)
	scaleH := float64(boundH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	fw := int(float64(w)*scale + 0.5)
	fh := int(float64(h)*scale + 0.5)
	if fw < 1 {
		fw = 1
	}
	if fh < 1 {
		fh = 1
	}
	return fw, fh
}

// CenterOffset returns the top-left position that centers a (w, h) image
// inside the rectangle at (boundX, boundY) with size (boundW, boundH).
func CenterOffset(boundX, boundY, boundW, boundH, w, h int) (int, int) {
	return boundX + (boundW-w)/2, boundY + (boundH-h)/2
}

// AnchorForFocal maps a normalized focal point onto one of the nine
// gravity anchors used for cover cropping. Coordinates are split into
// thirds: below 1/3 anchors to the near edge, above 2/3 to the far edge,
// anything else centers.
func AnchorForFocal(x, y float64) imaging.Anchor {
	col := third(x)
	row := third(y)

	anchors := [3][3]imaging.Anchor{
		{imaging.TopLeft, imaging.Top, imaging.TopRight},
		{imaging.Left, imaging.Center, imaging.Right},
		{imaging.BottomLeft, imaging.Bottom, imaging.BottomRight},
	}
	return anchors[row][col]
}

func third(v float64) int {
	switch {
	case v < 1.0/3.0:
		return 0
	case v > 2.0/3.0:
		return 2
	default:
		return 1
	}
}
