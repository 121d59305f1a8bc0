// Package naming derives object-store keys. Everything here is pure string
// work: no I/O, no clock injection beyond the timestamp component of new keys.
package naming

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxBaseNameLen bounds the sanitized filename component so full keys stay
// within the path-length limits of the object store and CDN.
const MaxBaseNameLen = 40

const defaultBaseName = "file"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// BuildObjectKey returns `{folder}/{epochMillis}-{uuid}-{sanitizedBase}{ext}`.
// The random component makes collisions impossible even for two uploads of
// the same filename in the same millisecond; the timestamp keeps keys
// roughly sortable. Images are always stored as WebP, so their extension is
// forced regardless of the original one.
func BuildObjectKey(folder, filename, contentType string) string {
	base := SanitiseBaseName(strings.TrimSuffix(path.Base(filename), path.Ext(filename)))
	ext := extensionFor(filename, contentType)
	return fmt.Sprintf("%s/%d-%s-%s%s",
		strings.Trim(folder, "/"),
		time.Now().UnixMilli(),
		uuid.NewString(),
		base,
		ext,
	)
}

// SanitiseBaseName lowercases the name, collapses every run of
// non-alphanumeric characters into a single dash, trims leading/trailing
// dashes and truncates to MaxBaseNameLen. Empty results fall back to "file".
func SanitiseBaseName(name string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxBaseNameLen {
		s = strings.Trim(s[:MaxBaseNameLen], "-")
	}
	if s == "" {
		return defaultBaseName
	}
	return s
}

// VariantKey derives the storage key of a named variant from the original
// key: `_{name}` is inserted before the extension and the extension is
// forced to the variant output format. The transform is pure so both halves
// of the pipeline derive identical keys without coordination.
func VariantKey(originalKey, name string) string {
	ext := path.Ext(originalKey)
	return strings.TrimSuffix(originalKey, ext) + "_" + name + ".webp"
}

// IsVariantKey reports whether key looks like a derived variant for one of
// the given variant names. This is the loop-breaker that stops a variant's
// own finalize event from re-triggering generation.
func IsVariantKey(key string, names []string) bool {
	base := strings.TrimSuffix(path.Base(key), path.Ext(key))
	for _, n := range names {
		if strings.HasSuffix(base, "_"+n) {
			return true
		}
	}
	return false
}

// InFolder reports whether key falls under one of the given logical folders.
func InFolder(key string, folders []string) bool {
	for _, f := range folders {
		if strings.HasPrefix(key, strings.Trim(f, "/")+"/") {
			return true
		}
	}
	return false
}

func extensionFor(filename, contentType string) string {
	if strings.HasPrefix(contentType, "image/") {
		return ".webp"
	}
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		return ext
	}
	return ".bin"
}
