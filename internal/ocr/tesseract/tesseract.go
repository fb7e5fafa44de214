//go:build tesseract

package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/rxcatalog/rxcatalog/internal/ocr"
)

// EngineName selects this engine in ocr.New.
const EngineName = "tesseract"

func init() {
	ocr.Register(EngineName, func(cfg ocr.Config) (ocr.Engine, error) {
		return NewEngine(cfg.Languages), nil
	})
}

// Engine implements ocr.Engine with an in-process gosseract client.
type Engine struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// NewEngine constructs a Tesseract-backed OCR engine.
func NewEngine(languages []string) *Engine {
	return &Engine{languages: languages, clientFactory: gosseract.NewClient}
}

// Name implements ocr.Engine.
func (e *Engine) Name() string { return EngineName }

// Recognize implements ocr.Engine. Text is returned untrimmed, matching the
// CLI engine. gosseract clients are not safe for concurrent use, so each call
// gets its own.
func (e *Engine) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := e.clientFactory()
	defer c.Close()

	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return "", fmt.Errorf("tesseract: set languages: %w", err)
		}
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("tesseract: set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: recognize text: %w", err)
	}
	return text, nil
}
