//go:build tesseract

package main

import _ "github.com/rxcatalog/rxcatalog/internal/ocr/tesseract"
