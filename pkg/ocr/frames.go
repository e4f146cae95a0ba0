package ocr

import (
	"bufio"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// PathPlaceholder in a screenshot command is replaced with the output file.
const PathPlaceholder = "{path}"

// FrameProvider acquires one full-display still image.
type FrameProvider interface {
	Name() string
	Available() bool
	Frame(ctx context.Context) (image.Image, error)
}

// ScreenshotProvider runs a command that writes a PNG screenshot to a file,
// e.g. "grim {path}" or "screencapture -x {path}".
type ScreenshotProvider struct {
	args []string
}

// NewScreenshotProvider parses cmd into arguments. An argument equal to or
// containing PathPlaceholder receives the output path; without one the path
// is appended.
func NewScreenshotProvider(cmd string) *ScreenshotProvider {
	return &ScreenshotProvider{args: strings.Fields(cmd)}
}

func (s *ScreenshotProvider) Name() string { return "screenshot" }

func (s *ScreenshotProvider) Available() bool {
	if len(s.args) == 0 {
		return false
	}
	_, err := exec.LookPath(s.args[0])
	return err == nil
}

func (s *ScreenshotProvider) Frame(ctx context.Context) (image.Image, error) {
	if len(s.args) == 0 {
		return nil, eris.New("screenshot: no command configured")
	}
	tmp, err := os.CreateTemp("", "arcvalue-shot-*.png")
	if err != nil {
		return nil, eris.Wrap(err, "screenshot: temp file")
	}
	path := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(path)

	args := make([]string, 0, len(s.args)+1)
	placed := false
	for _, a := range s.args {
		if strings.Contains(a, PathPlaceholder) {
			a = strings.ReplaceAll(a, PathPlaceholder, path)
			placed = true
		}
		args = append(args, a)
	}
	if !placed {
		args = append(args, path)
	}
	out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
	if err != nil {
		return nil, eris.Wrapf(err, "screenshot: %s (%s)", args[0], snippet(strings.TrimSpace(string(out)), 120))
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "screenshot: open image")
	}
	return img, nil
}

// Stream is a running display-capture stream.
type Stream interface {
	NextFrame(ctx context.Context) (image.Image, error)
	Stop() error
}

// StreamOpener starts a new display stream.
type StreamOpener func(ctx context.Context) (Stream, error)

// StreamProvider grabs exactly one frame from a display stream, copies it to
// an offscreen raster and stops the stream.
type StreamProvider struct {
	name      string
	open      StreamOpener
	available func() bool
}

// NewStreamProvider wraps open. A nil available reports true.
func NewStreamProvider(name string, open StreamOpener, available func() bool) *StreamProvider {
	if available == nil {
		available = func() bool { return true }
	}
	return &StreamProvider{name: name, open: open, available: available}
}

// NewCommandStreamProvider streams PNG frames from the stdout of cmd, e.g.
// an ffmpeg grab with "-f image2pipe -vcodec png -".
func NewCommandStreamProvider(cmd string) *StreamProvider {
	args := strings.Fields(cmd)
	return NewStreamProvider("stream", CommandStreamOpener(args), func() bool {
		if len(args) == 0 {
			return false
		}
		_, err := exec.LookPath(args[0])
		return err == nil
	})
}

func (s *StreamProvider) Name() string    { return s.name }
func (s *StreamProvider) Available() bool { return s.open != nil && s.available() }

func (s *StreamProvider) Frame(ctx context.Context) (image.Image, error) {
	stream, err := s.open(ctx)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: open stream", s.name)
	}
	img, err := stream.NextFrame(ctx)
	if stopErr := stream.Stop(); stopErr != nil {
		zap.L().Debug("ocr: stream stop failed", zap.String("provider", s.name), zap.Error(stopErr))
	}
	if err != nil {
		return nil, eris.Wrapf(err, "%s: read frame", s.name)
	}
	if img == nil {
		return nil, eris.Wrapf(ErrEmptyFrame, "%s: read frame", s.name)
	}
	return imaging.Clone(img), nil
}

// CommandStreamOpener starts args and decodes PNG frames from its stdout.
func CommandStreamOpener(args []string) StreamOpener {
	return func(ctx context.Context) (Stream, error) {
		if len(args) == 0 {
			return nil, eris.New("no stream command configured")
		}
		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, err
		}
		if err := cmd.Start(); err != nil {
			return nil, err
		}
		return &commandStream{cmd: cmd, r: bufio.NewReader(stdout)}, nil
	}
}

type commandStream struct {
	cmd *exec.Cmd
	r   io.Reader
}

type decoded struct {
	img image.Image
	err error
}

func (c *commandStream) NextFrame(ctx context.Context) (image.Image, error) {
	done := make(chan decoded, 1)
	go func() {
		img, err := png.Decode(c.r)
		done <- decoded{img: img, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case d := <-done:
		return d.img, d.err
	}
}

// Stop kills the capture process and reaps it.
func (c *commandStream) Stop() error {
	if c.cmd.Process == nil {
		return nil
	}
	if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	_ = c.cmd.Wait()
	return nil
}
