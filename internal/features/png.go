package features

import (
	"bytes"
	"encoding/base64"
	"fmt"

	dimaging "github.com/disintegration/imaging"

	"github.com/ironsheep/image-patches-mcp/internal/imaging"
)

// Encoded contains a patch encoded as an image file.
type Encoded struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// PNG encodes patches as base64 PNG.
type PNG struct{}

// Convert encodes buf losslessly.
func (PNG) Convert(buf *imaging.PixelBuffer) (*Encoded, error) {
	var out bytes.Buffer
	if err := dimaging.Encode(&out, buf.Image(), dimaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode patch: %w", err)
	}

	return &Encoded{
		Width:       buf.Width,
		Height:      buf.Height,
		ImageBase64: base64.StdEncoding.EncodeToString(out.Bytes()),
		MimeType:    "image/png",
	}, nil
}
