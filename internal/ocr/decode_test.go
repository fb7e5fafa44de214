package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func testImage() image.Image {
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.White)
	return img
}

func TestDecodeConfigPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))

	format, cfg, err := DecodeConfig(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 4, cfg.Width)
	assert.Equal(t, 3, cfg.Height)
}

func TestDecodeImageBMP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, testImage()))

	img, format, err := DecodeImage(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "bmp", format)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := DecodeConfig([]byte("definitely not an image"))
	assert.Error(t, err)

	_, _, err = DecodeConfig(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestDecodeImageRejectsTruncatedPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	truncated := buf.Bytes()[:buf.Len()-20]

	_, _, err := DecodeImage(truncated)
	assert.Error(t, err)
}

func TestStdinImage(t *testing.T) {
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, testImage()))
	out, err := StdinImage(pngBuf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, pngBuf.Bytes(), out)

	out, err = StdinImage([]byte("not an image"))
	require.NoError(t, err)
	assert.Equal(t, []byte("not an image"), out)

	var gifBuf bytes.Buffer
	require.NoError(t, gif.Encode(&gifBuf, testImage(), nil))
	out, err = StdinImage(gifBuf.Bytes())
	require.NoError(t, err)
	format, cfg, err := DecodeConfig(out)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 4, cfg.Width)
}
