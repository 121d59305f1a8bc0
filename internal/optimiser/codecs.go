package optimiser

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	_ "golang.org/x/image/webp"
)

type webpEncoder struct{}

// NewWebPEncoder returns the production codec: stdlib/x-image decoders and
// chai2010's lossy WebP encoder.
func NewWebPEncoder() WebPEncoder { return webpEncoder{} }

func (webpEncoder) Encode(img image.Image, quality float32, w io.Writer) error {
	return webp.Encode(w, img, &webp.Options{Quality: quality})
}

func (webpEncoder) Decode(r io.Reader) (image.Image, string, error) {
	return image.Decode(r)
}

type pdfValidator struct{}

// NewPDFValidator returns the pdfcpu-backed document validator.
func NewPDFValidator() PDFValidator { return pdfValidator{} }

func (pdfValidator) ValidateFile(inPath string) error {
	return api.ValidateFile(inPath, nil)
}
