package naming

import (
	"regexp"
	"strings"
	"sync"
	"testing"
)

func TestSanitiseBaseName(t *testing.T) {
	cases := map[string]string{
		"Temple Photo":        "temple-photo",
		"__weird--NAME!!.jpg": "weird-name-jpg",
		"ÀéÎ":                 "file",
		"":                    "file",
		"a":                   "a",
		strings.Repeat("x", 80) + "-end": strings.Repeat("x", MaxBaseNameLen),
	}
	for in, want := range cases {
		if got := SanitiseBaseName(in); got != want {
			t.Errorf("SanitiseBaseName(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestBuildObjectKey_ImageForcesWebp(t *testing.T) {
	key := BuildObjectKey("posts/", "Temple Photo.jpg", "image/jpeg")

	if !strings.HasPrefix(key, "posts/") {
		t.Errorf("key %q should be under posts/", key)
	}
	if !strings.HasSuffix(key, "-temple-photo.webp") {
		t.Errorf("key %q should end with sanitized base and .webp", key)
	}
	re := regexp.MustCompile(`^posts/\d+-[0-9a-f-]{36}-temple-photo\.webp$`)
	if !re.MatchString(key) {
		t.Errorf("key %q does not match expected shape", key)
	}
}

func TestBuildObjectKey_DocumentKeepsExtension(t *testing.T) {
	key := BuildObjectKey("docs", "Report FINAL.PDF", "application/pdf")
	if !strings.HasSuffix(key, "-report-final.pdf") {
		t.Errorf("key %q should keep the lowercased original extension", key)
	}
}

func TestBuildObjectKey_NoExtensionDefaultsToBin(t *testing.T) {
	key := BuildObjectKey("docs", "README", "application/octet-stream")
	if !strings.HasSuffix(key, ".bin") {
		t.Errorf("key %q should default to .bin", key)
	}
}

func TestVariantKey(t *testing.T) {
	got := VariantKey("posts/123-abc-temple-photo.webp", "thumb")
	want := "posts/123-abc-temple-photo_thumb.webp"
	if got != want {
		t.Errorf("VariantKey = %q; want %q", got, want)
	}

	// extension is forced to webp even if the original was not
	got = VariantKey("avatars/x.png", "medium")
	if got != "avatars/x_medium.webp" {
		t.Errorf("VariantKey = %q; want avatars/x_medium.webp", got)
	}
}

func TestIsVariantKey(t *testing.T) {
	names := []string{"thumb", "medium"}
	if !IsVariantKey("posts/x_thumb.webp", names) {
		t.Error("x_thumb.webp should be detected as a variant")
	}
	if !IsVariantKey("posts/a/b_medium.webp", names) {
		t.Error("b_medium.webp should be detected as a variant")
	}
	if IsVariantKey("posts/x.webp", names) {
		t.Error("x.webp should not be detected as a variant")
	}
	if IsVariantKey("posts/thumbnail_gallery.webp", names) {
		t.Error("suffix must match a whole variant name")
	}
}

func TestInFolder(t *testing.T) {
	folders := []string{"temples", "posts/", "avatars"}
	if !InFolder("posts/x.webp", folders) {
		t.Error("posts/x.webp should be in scope")
	}
	if InFolder("private/x.webp", folders) {
		t.Error("private/x.webp should be out of scope")
	}
	if InFolder("postscript/x.webp", folders) {
		t.Error("prefix match must stop at the path separator")
	}
}

// Naming collision freedom: many concurrent calls with identical inputs must
// all yield distinct keys.
func TestBuildObjectKey_CollisionFree(t *testing.T) {
	const n = 10000
	keys := make([]string, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			keys[i] = BuildObjectKey("posts", "same.jpg", "image/jpeg")
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			t.Fatalf("duplicate key generated: %q", k)
		}
		seen[k] = struct{}{}
	}
}
