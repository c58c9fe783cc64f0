// Package ocr recognizes text in image patches using Tesseract.
//
// Converter wraps the Tesseract OCR engine (via gosseract/v2) and plugs into
// patch.Extractor as a payload converter:
//
//	ex := patch.New[*ocr.Text](ocr.Converter{Language: "eng"})
//
// # Prerequisites
//
// Tesseract and its development headers must be installed, and the package
// builds with cgo:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Each language needs its data files (tesseract-ocr-<lang> packages).
//
// # Coordinates
//
// Word boxes are relative to the patch. Text.Offset translates them into
// image coordinates given the patch rectangle's origin.
//
// # Performance
//
// OCR is expensive. Patches smaller than a line of text rarely produce
// anything useful; prefer few, large patches.
package ocr
