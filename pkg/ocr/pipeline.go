package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"arcvalue/pkg/itemvalue"
)

// Pipeline captures the screen region around the cursor and reads the item
// name printed there.
type Pipeline struct {
	providers  []FrameProvider
	recognizer Recognizer
	width      int
	height     int
	whitelist  string
	debugDir   string
}

// NewPipeline probes providers in the given order.
func NewPipeline(recognizer Recognizer, providers ...FrameProvider) *Pipeline {
	return &Pipeline{
		providers:  providers,
		recognizer: recognizer,
		width:      DefaultRegionWidth,
		height:     DefaultRegionHeight,
		whitelist:  Whitelist,
	}
}

// WithRegion sets the crop size. Non-positive values keep the defaults.
func (p *Pipeline) WithRegion(w, h int) *Pipeline {
	if w > 0 {
		p.width = w
	}
	if h > 0 {
		p.height = h
	}
	return p
}

// WithDebugDir saves every enhanced crop as a PNG under dir.
func (p *Pipeline) WithDebugDir(dir string) *Pipeline {
	p.debugDir = dir
	return p
}

// Providers returns the configured frame providers.
func (p *Pipeline) Providers() []FrameProvider { return p.providers }

// Capture returns the first frame any available provider delivers.
func (p *Pipeline) Capture(ctx context.Context) (image.Image, error) {
	var failures []string
	for _, fp := range p.providers {
		if !fp.Available() {
			zap.L().Debug("ocr: frame provider unavailable", zap.String("provider", fp.Name()))
			continue
		}
		img, err := fp.Frame(ctx)
		if err == nil && (img == nil || img.Bounds().Empty()) {
			err = ErrEmptyFrame
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			zap.L().Warn("ocr: frame provider failed", zap.String("provider", fp.Name()), zap.Error(err))
			failures = append(failures, fp.Name()+": "+err.Error())
			continue
		}
		return img, nil
	}
	if len(failures) > 0 {
		return nil, fmt.Errorf("%w (%s)", ErrCaptureUnavailable, strings.Join(failures, "; "))
	}
	return nil, ErrCaptureUnavailable
}

// CaptureRegion grabs a frame and recognizes the text near cursor. A nil
// cursor means the position is unknown.
func (p *Pipeline) CaptureRegion(ctx context.Context, cursor *image.Point) (itemvalue.RawContent, error) {
	frame, err := p.Capture(ctx)
	if err != nil {
		return itemvalue.RawContent{}, err
	}
	return p.Recognize(ctx, frame, cursor)
}

// Recognize crops frame around cursor, boosts contrast and runs the
// recognizer. The result holds the first non-empty line.
func (p *Pipeline) Recognize(ctx context.Context, frame image.Image, cursor *image.Point) (itemvalue.RawContent, error) {
	bounds := frame.Bounds()
	if bounds.Empty() {
		return itemvalue.RawContent{}, ErrEmptyFrame
	}
	cx, cy := Center(bounds, cursor)
	rect := CropRect(bounds, cx, cy, p.width, p.height)
	region := Enhance(imaging.Crop(frame, rect))
	p.dump(region)

	text, err := p.recognizer.Recognize(ctx, region, p.whitelist)
	if err != nil {
		return itemvalue.RawContent{}, fmt.Errorf("%w: %w", ErrRecognition, err)
	}
	line := FirstLine(text)
	zap.L().Debug("ocr: recognized region",
		zap.Stringer("rect", rect),
		zap.String("raw", snippet(text, 120)),
		zap.String("line", line))
	return itemvalue.RawContent{Text: line, Kind: itemvalue.KindOCR}, nil
}

func (p *Pipeline) dump(region image.Image) {
	if p.debugDir == "" {
		return
	}
	if err := os.MkdirAll(p.debugDir, 0o755); err != nil {
		zap.L().Warn("ocr: debug dir", zap.Error(err))
		return
	}
	path := filepath.Join(p.debugDir, fmt.Sprintf("capture-%d.png", time.Now().UnixNano()))
	if err := imaging.Save(region, path); err != nil {
		zap.L().Warn("ocr: save debug crop", zap.String("path", path), zap.Error(err))
	}
}
