// Command capture_debug runs the capture preprocessing and recognition on a
// saved screenshot, for tuning the crop and contrast without a live screen.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/disintegration/imaging"

	"arcvalue/pkg/itemvalue"
	"arcvalue/pkg/lookup"
	"arcvalue/pkg/ocr"
	"arcvalue/pkg/ocr/tesseract"
)

func main() {
	in := flag.String("img", "tmp/screen.png", "screenshot to read")
	x := flag.Int("x", -1, "cursor x (negative: unknown)")
	y := flag.Int("y", -1, "cursor y (negative: unknown)")
	w := flag.Int("w", ocr.DefaultRegionWidth, "crop width")
	h := flag.Int("h", ocr.DefaultRegionHeight, "crop height")
	out := flag.String("out", "", "save the enhanced crop to this PNG")
	lang := flag.String("lang", "eng", "tesseract language")
	skipOCR := flag.Bool("no-ocr", false, "only crop and enhance")
	flag.Parse()

	frame, err := imaging.Open(*in)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	var cursor *image.Point
	if *x >= 0 && *y >= 0 {
		cursor = &image.Point{X: *x, Y: *y}
	}
	cx, cy := ocr.Center(frame.Bounds(), cursor)
	rect := ocr.CropRect(frame.Bounds(), cx, cy, *w, *h)
	fmt.Printf("frame=%v center=(%.0f,%.0f) crop=%v\n", frame.Bounds(), cx, cy, rect)

	if *out != "" {
		if err := imaging.Save(ocr.Enhance(imaging.Crop(frame, rect)), *out); err != nil {
			log.Fatalf("save crop: %v", err)
		}
		fmt.Printf("enhanced crop saved to %s\n", *out)
	}
	if *skipOCR {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	p := ocr.NewPipeline(tesseract.New(*lang)).WithRegion(*w, *h)
	raw, err := p.Recognize(ctx, frame, cursor)
	if err != nil {
		log.Fatalf("recognize: %v", err)
	}
	name := lookup.CleanName(raw.Text)
	fmt.Printf("line=%q cleaned=%q slug=%q\n", raw.Text, name, itemvalue.Slug(name))
}
