package optimiser

import (
	"image"
	"io"
)

// WebPEncoder abstracts the image codec so tests can fail encode/decode
// deterministically.
type WebPEncoder interface {
	Encode(img image.Image, quality float32, w io.Writer) error
	Decode(r io.Reader) (image.Image, string, error)
}

// PDFValidator abstracts document structural validation.
type PDFValidator interface {
	ValidateFile(inPath string) error
}
