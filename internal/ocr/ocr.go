package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/image-patches-mcp/internal/imaging"
)

// DefaultLanguage is used when Converter.Language is empty.
const DefaultLanguage = "eng"

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Word is a recognized word with its location and OCR confidence.
type Word struct {
	// Text is the recognized word.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around the word.
	Bounds Bounds `json:"bounds"`
}

// Text is the OCR payload of one patch.
type Text struct {
	// Text is all recognized text with original spacing and newlines.
	Text string `json:"text"`

	// Words holds the individual words. It may be empty even when Text is
	// not, if word-level boxes are unavailable.
	Words []Word `json:"words"`
}

// Offset moves every word box by p. Converter reports boxes relative to the
// patch; callers use Offset with the patch rectangle's Min to get image
// coordinates.
func (t *Text) Offset(p image.Point) {
	for i := range t.Words {
		t.Words[i].Bounds.X1 += p.X
		t.Words[i].Bounds.Y1 += p.Y
		t.Words[i].Bounds.X2 += p.X
		t.Words[i].Bounds.Y2 += p.Y
	}
}

// Converter recognizes the text in a patch.
type Converter struct {
	// Language is the Tesseract language code, e.g. "eng" or "deu". The
	// language data must be installed.
	Language string

	// MinConfidence drops words below this confidence (0.0 to 1.0).
	MinConfidence float64
}

// Convert runs Tesseract over the patch.
//
// Each call uses its own Tesseract client, so a Converter can serve
// concurrent extraction workers.
func (c Converter) Convert(buf *imaging.PixelBuffer) (*Text, error) {
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, buf.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode patch: %w", err)
	}

	lang := c.Language
	if lang == "" {
		lang = DefaultLanguage
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(encoded.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Return just text if boxes fail
		return &Text{Text: text, Words: []Word{}}, nil
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		confidence := float64(box.Confidence) / 100.0
		if confidence < c.MinConfidence {
			continue
		}
		words = append(words, Word{
			Text:       box.Word,
			Confidence: confidence,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}

	return &Text{Text: text, Words: words}, nil
}
