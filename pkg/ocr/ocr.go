package ocr

import (
	"context"
	"image"
)

// Whitelist restricts recognition to characters that occur in item names.
const Whitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789 _-()"

// Recognizer turns a preprocessed region into text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, whitelist string) (string, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context, img image.Image, whitelist string) (string, error)

func (f RecognizerFunc) Recognize(ctx context.Context, img image.Image, whitelist string) (string, error) {
	return f(ctx, img, whitelist)
}
