// Package tesseract registers the "tesseract" OCR engine backed by the
// gosseract cgo binding. The engine is compiled only with the tesseract build
// tag, since it needs libtesseract and leptonica headers at build time.
package tesseract
