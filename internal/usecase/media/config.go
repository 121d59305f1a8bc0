package media

import (
	"strings"
	"time"
)

// Defaults for the pipeline's fixed constants. All of them can be overridden
// through the configuration surface.
const (
	DefaultMaxImageBytes    = 5 * 1024 * 1024
	DefaultMaxDocumentBytes = 20 * 1024 * 1024
	DefaultRateLimitCeiling = 20
	DefaultRateLimitWindow  = time.Hour
)

// VariantDef is one configured variant: its name and target width. Height is
// always computed from aspect ratio.
type VariantDef struct {
	Name     string
	MaxWidth int
}

// DefaultVariants are generated for every image, in this fixed order.
var DefaultVariants = []VariantDef{
	{Name: "thumb", MaxWidth: 200},
	{Name: "medium", MaxWidth: 800},
}

// DefaultFolders are the logical namespaces monitored by the worker.
var DefaultFolders = []string{"temples", "posts", "avatars"}

// VariantNames projects the configured definitions onto their names,
// preserving order.
func VariantNames(defs []VariantDef) []string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}

// AllowedImageMimeTypes is the closed allow-list for image submissions.
var AllowedImageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

func IsAllowedImage(mimeType string) bool {
	return AllowedImageMimeTypes[mimeType]
}

func IsDocument(mimeType string) bool {
	return mimeType == "application/pdf"
}
