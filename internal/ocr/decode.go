package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is returned for a zero-length upload.
var ErrEmptyImage = errors.New("ocr: empty image")

// DecodeConfig checks that data is an image in a supported format and
// returns its format name and dimensions without decoding pixels.
func DecodeConfig(data []byte) (string, image.Config, error) {
	if len(data) == 0 {
		return "", image.Config{}, ErrEmptyImage
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", image.Config{}, fmt.Errorf("ocr: unsupported or corrupt image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", image.Config{}, fmt.Errorf("ocr: image has no pixels (%dx%d)", cfg.Width, cfg.Height)
	}
	return format, cfg, nil
}

// DecodeImage fully decodes data.
func DecodeImage(data []byte) (image.Image, string, error) {
	if _, _, err := DecodeConfig(data); err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("ocr: decode %s: %w", format, err)
	}
	return img, format, nil
}

// leptonicaFormats are read by the tesseract CLI straight from stdin.
var leptonicaFormats = map[string]bool{"png": true, "jpeg": true, "tiff": true, "bmp": true}

// StdinImage returns data unchanged when tesseract reads its format natively
// or when it is not a recognizable image, and re-encodes other formats such
// as webp and gif to PNG.
func StdinImage(data []byte) ([]byte, error) {
	format, _, err := DecodeConfig(data)
	if err != nil || leptonicaFormats[format] {
		return data, nil
	}
	img, _, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("ocr: re-encode %s as png: %w", format, err)
	}
	return buf.Bytes(), nil
}
