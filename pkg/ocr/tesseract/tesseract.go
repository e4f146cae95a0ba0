// Package tesseract implements ocr.Recognizer on top of gosseract. It is the
// only package in the module that needs cgo and the leptonica/tesseract
// headers.
package tesseract

import (
	"bytes"
	"context"
	"image"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"github.com/rotisserie/eris"
)

// Recognizer runs Tesseract through gosseract. A zero PageSegMode keeps the
// engine default.
type Recognizer struct {
	Lang        string
	PageSegMode gosseract.PageSegMode
}

// New returns a recognizer for lang ("eng" when empty).
func New(lang string) *Recognizer {
	if lang == "" {
		lang = "eng"
	}
	return &Recognizer{Lang: lang}
}

type recognition struct {
	text string
	err  error
}

// Recognize encodes img as PNG and hands it to a fresh Tesseract client. The
// call returns early with ctx.Err() when ctx ends first.
func (t *Recognizer) Recognize(ctx context.Context, img image.Image, whitelist string) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", eris.Wrap(err, "encode region")
	}
	done := make(chan recognition, 1)
	go func() {
		text, err := t.run(buf.Bytes(), whitelist)
		done <- recognition{text: text, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}

func (t *Recognizer) run(png []byte, whitelist string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	lang := t.Lang
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		return "", eris.Wrapf(err, "set language %q", lang)
	}
	if whitelist != "" {
		if err := client.SetWhitelist(whitelist); err != nil {
			return "", eris.Wrap(err, "set whitelist")
		}
	}
	if t.PageSegMode != 0 {
		if err := client.SetPageSegMode(t.PageSegMode); err != nil {
			return "", eris.Wrap(err, "set page seg mode")
		}
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return "", eris.Wrap(err, "set image")
	}
	text, err := client.Text()
	if err != nil {
		return "", eris.Wrap(err, "ocr error")
	}
	return text, nil
}
