package ocr

import "errors"

// ErrCaptureUnavailable is returned when no frame provider could deliver a
// screen image. The message is meant to be shown to the user.
var ErrCaptureUnavailable = errors.New("screen capture not available; allow screen capture or configure a screenshot command")

// ErrRecognition wraps failures of the text recognition engine.
var ErrRecognition = errors.New("text recognition failed")

// ErrEmptyFrame is returned for frames without pixels.
var ErrEmptyFrame = errors.New("captured frame is empty")

// ErrNoText is returned when the captured region holds no recognizable text.
var ErrNoText = errors.New("no text recognized near the cursor")
