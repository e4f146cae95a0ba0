package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcvalue/pkg/itemvalue"
)

type stubProvider struct {
	name  string
	avail bool
	img   image.Image
	err   error
	calls int
}

func (s *stubProvider) Name() string    { return s.name }
func (s *stubProvider) Available() bool { return s.avail }
func (s *stubProvider) Frame(context.Context) (image.Image, error) {
	s.calls++
	return s.img, s.err
}

type stubRecognizer struct {
	text      string
	err       error
	calls     int
	bounds    image.Rectangle
	whitelist string
	gray      bool
}

func (s *stubRecognizer) Recognize(_ context.Context, img image.Image, whitelist string) (string, error) {
	s.calls++
	s.bounds = img.Bounds()
	s.whitelist = whitelist
	s.gray = true
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 7 {
		for x := b.Min.X; x < b.Max.X; x += 7 {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r != g || g != bl {
				s.gray = false
			}
		}
	}
	return s.text, s.err
}

func colorFrame(w, h int) *image.NRGBA {
	return imaging.New(w, h, color.NRGBA{R: 200, G: 40, B: 90, A: 255})
}

func TestCaptureRegion_FallsThroughProviders(t *testing.T) {
	off := &stubProvider{name: "off"}
	broken := &stubProvider{name: "broken", avail: true, err: errors.New("permission denied")}
	good := &stubProvider{name: "good", avail: true, img: colorFrame(1920, 1080)}
	rec := &stubRecognizer{text: "\n  Adrenaline Shot \nx2\n"}

	p := NewPipeline(rec, off, broken, good)
	raw, err := p.CaptureRegion(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, itemvalue.RawContent{Text: "Adrenaline Shot", Kind: itemvalue.KindOCR}, raw)
	assert.Equal(t, 0, off.calls)
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, good.calls)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, image.Rect(0, 0, 420, 140), rec.bounds)
	assert.Equal(t, Whitelist, rec.whitelist)
	assert.True(t, rec.gray, "region should be grayscale")
}

func TestCaptureRegion_Unavailable(t *testing.T) {
	rec := &stubRecognizer{text: "x"}
	p := NewPipeline(rec,
		&stubProvider{name: "off"},
		&stubProvider{name: "broken", avail: true, err: errors.New("denied")},
		&stubProvider{name: "blank", avail: true, img: image.NewNRGBA(image.Rect(0, 0, 0, 0))},
	)
	_, err := p.CaptureRegion(context.Background(), pt(10, 10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCaptureUnavailable))
	assert.Contains(t, err.Error(), "denied")
	assert.Equal(t, 0, rec.calls)

	_, err = NewPipeline(rec).CaptureRegion(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrCaptureUnavailable))
}

func TestCaptureRegion_RecognitionError(t *testing.T) {
	boom := errors.New("engine crashed")
	p := NewPipeline(&stubRecognizer{err: boom}, &stubProvider{name: "good", avail: true, img: colorFrame(800, 600)})
	_, err := p.CaptureRegion(context.Background(), pt(400, 300))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRecognition))
	assert.True(t, errors.Is(err, boom))
}

func TestRecognize_RegionAndDebugDump(t *testing.T) {
	dir := t.TempDir()
	rec := &stubRecognizer{text: "   "}
	p := NewPipeline(rec).WithRegion(100, 40).WithDebugDir(dir)

	raw, err := p.Recognize(context.Background(), colorFrame(300, 200), pt(300, 200))
	require.NoError(t, err)
	assert.Equal(t, "", raw.Text)
	assert.Equal(t, image.Rect(0, 0, 50, 20), rec.bounds)

	files, err := filepath.Glob(filepath.Join(dir, "capture-*.png"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	img, err := imaging.Open(files[0])
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
}

type fakeStream struct {
	frames int
	stops  int
	img    image.Image
}

func (f *fakeStream) NextFrame(context.Context) (image.Image, error) {
	f.frames++
	return f.img, nil
}

func (f *fakeStream) Stop() error {
	f.stops++
	return nil
}

func TestStreamProvider_OneFrameThenStop(t *testing.T) {
	fs := &fakeStream{img: colorFrame(64, 32)}
	opened := 0
	sp := NewStreamProvider("fake", func(context.Context) (Stream, error) {
		opened++
		return fs, nil
	}, nil)

	require.True(t, sp.Available())
	img, err := sp.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, fs.frames)
	assert.Equal(t, 1, fs.stops)
	_, isRaster := img.(*image.NRGBA)
	assert.True(t, isRaster)
	assert.Equal(t, 64, img.Bounds().Dx())
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, imaging.Save(colorFrame(w, h), path))
	return path
}

func TestCommandStreamProvider(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	src := writePNG(t, 120, 80)
	sp := NewStreamProvider("cmd", CommandStreamOpener([]string{"sh", "-c", "cat " + src + "; exec sleep 30"}), nil)

	img, err := sp.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 120, 80), img.Bounds())
}

func TestScreenshotProvider(t *testing.T) {
	if _, err := exec.LookPath("cp"); err != nil {
		t.Skip("cp not available")
	}
	src := writePNG(t, 90, 60)
	sp := NewScreenshotProvider("cp " + src + " " + PathPlaceholder)
	require.True(t, sp.Available())

	img, err := sp.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 90, 60), img.Bounds())

	assert.False(t, NewScreenshotProvider("").Available())
	assert.False(t, NewScreenshotProvider("definitely-not-a-real-binary-42").Available())
}

func TestScreenshotProvider_CommandFails(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}
	_, err := NewScreenshotProvider("false").Frame(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "screenshot")
}
