package ocr

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Default capture window around the cursor.
const (
	DefaultRegionWidth  = 420
	DefaultRegionHeight = 140
)

// Contrast boost parameters applied before recognition.
const (
	ContrastMidpoint = 80.0
	ContrastGain     = 1.8
)

// Center returns the crop center inside frame. A known cursor is clamped into
// the frame; without one the center is biased to the upper third, where
// tooltips usually sit. Coordinates are relative to frame.Min.
func Center(frame image.Rectangle, cursor *image.Point) (float64, float64) {
	w, h := float64(frame.Dx()), float64(frame.Dy())
	if cursor == nil {
		return w / 2, h / 3
	}
	p := cursor.Sub(frame.Min)
	x := math.Min(math.Max(float64(p.X), 0), w)
	y := math.Min(math.Max(float64(p.Y), 0), h)
	return x, y
}

// CropRect returns a w x h window centered on (cx, cy), shifted and shrunk so
// it never leaves frame. The result is in frame coordinates.
func CropRect(frame image.Rectangle, cx, cy float64, w, h int) image.Rectangle {
	fw, fh := frame.Dx(), frame.Dy()
	left := max(0, int(math.Round(cx-float64(w)/2)))
	top := max(0, int(math.Round(cy-float64(h)/2)))
	left = min(left, fw)
	top = min(top, fh)
	cw := min(w, fw-left)
	ch := min(h, fh-top)
	return image.Rect(left, top, left+cw, top+ch).Add(frame.Min)
}

// Enhance converts img to a contrast-boosted grayscale: luminance is remapped
// around ContrastMidpoint with ContrastGain and clamped to [0,255]. Alpha is
// kept as is.
func Enhance(img image.Image) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		v := boost(luminance(c))
		return color.NRGBA{R: v, G: v, B: v, A: c.A}
	})
}

func luminance(c color.NRGBA) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

func boost(gray float64) uint8 {
	v := (gray-ContrastMidpoint)*ContrastGain + ContrastMidpoint
	v = math.Min(255, math.Max(0, v))
	return uint8(math.RoundToEven(v))
}
