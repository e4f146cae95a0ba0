package ocr

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pt(x, y int) *image.Point { return &image.Point{X: x, Y: y} }

func TestCropRect(t *testing.T) {
	hd := image.Rect(0, 0, 1920, 1080)
	cases := []struct {
		name   string
		frame  image.Rectangle
		cursor *image.Point
		want   image.Rectangle
	}{
		{"unknown cursor biases to upper third", hd, nil, image.Rect(750, 290, 1170, 430)},
		{"top-left corner", hd, pt(0, 0), image.Rect(0, 0, 420, 140)},
		{"bottom-right corner", hd, pt(1920, 1080), image.Rect(1710, 1010, 1920, 1080)},
		{"outside frame is clamped", hd, pt(5000, -20), image.Rect(1710, 0, 1920, 140)},
		{"frame smaller than region", image.Rect(0, 0, 100, 50), pt(100, 50), image.Rect(0, 0, 100, 50)},
		{"offset frame origin", image.Rect(100, 100, 300, 300), pt(150, 150), image.Rect(100, 100, 300, 240)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cx, cy := Center(tc.frame, tc.cursor)
			got := CropRect(tc.frame, cx, cy, DefaultRegionWidth, DefaultRegionHeight)
			assert.Equal(t, tc.want, got)
			assert.True(t, got.In(tc.frame), "crop %v escapes frame %v", got, tc.frame)
			assert.False(t, got.Empty())
		})
	}
}

func TestCropRect_NeverEscapesFrame(t *testing.T) {
	frame := image.Rect(0, 0, 640, 360)
	for x := -50; x <= 700; x += 37 {
		for y := -50; y <= 400; y += 23 {
			cx, cy := Center(frame, pt(x, y))
			r := CropRect(frame, cx, cy, 420, 140)
			if !r.In(frame) || r.Empty() {
				t.Fatalf("cursor (%d,%d): bad crop %v", x, y, r)
			}
		}
	}
}

func TestEnhance(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 128})
	src.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	src.SetNRGBA(2, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 255})
	src.SetNRGBA(3, 0, color.NRGBA{R: 100, G: 100, B: 100, A: 255})

	out := Enhance(src)
	want := []color.NRGBA{
		{R: 73, G: 73, B: 73, A: 128},
		{R: 255, G: 255, B: 255, A: 255},
		{R: 0, G: 0, B: 0, A: 255},
		{R: 116, G: 116, B: 116, A: 255},
	}
	for i, w := range want {
		assert.Equal(t, w, out.NRGBAAt(i, 0), "pixel %d", i)
	}
}

func TestFirstLine(t *testing.T) {
	cases := map[string]string{
		"\n  Adrenaline Shot \nx2\n": "Adrenaline Shot",
		"Wolfpack":                   "Wolfpack",
		"   \n\t\n":                  "",
		"":                           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, FirstLine(in), "input %q", in)
	}
}
