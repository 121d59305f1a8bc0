package optimiser

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"strings"
	"testing"
)

// fakeCodec stands in for the WebP codec so transform logic can be tested
// without real image payloads.
type fakeCodec struct {
	decodeImg image.Image
	decodeErr error

	// bytesPerQualityPoint makes output size depend on quality so the
	// stepping loop can be observed.
	bytesPerQualityPoint int

	encodedQualities []float32
	encodedSizes     []image.Point
}

func (f *fakeCodec) Encode(img image.Image, quality float32, w io.Writer) error {
	f.encodedQualities = append(f.encodedQualities, quality)
	f.encodedSizes = append(f.encodedSizes, img.Bounds().Size())
	n := f.bytesPerQualityPoint
	if n <= 0 {
		n = 1
	}
	_, err := w.Write(bytes.Repeat([]byte("x"), int(quality)*n))
	return err
}

func (f *fakeCodec) Decode(r io.Reader) (image.Image, string, error) {
	if f.decodeErr != nil {
		return nil, "", f.decodeErr
	}
	return f.decodeImg, "png", nil
}

type fakeValidator struct {
	err    error
	called bool
}

func (f *fakeValidator) ValidateFile(inPath string) error {
	f.called = true
	return f.err
}

func newTestOptimiser(cfg Config, codec *fakeCodec, val *fakeValidator) *Optimiser {
	if codec.decodeImg == nil {
		codec.decodeImg = image.NewRGBA(image.Rect(0, 0, 100, 50))
	}
	if val == nil {
		val = &fakeValidator{}
	}
	return NewOptimiser(cfg, codec, val)
}

func TestNormalise_NonImagePassthrough(t *testing.T) {
	codec := &fakeCodec{}
	o := newTestOptimiser(Config{Quality: 82}, codec, nil)

	content := []byte("%PDF-1.7 fake document")
	data, mime, err := o.Normalise(context.Background(), "application/pdf", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Error("non-image payloads must pass through unchanged")
	}
	if mime != "application/pdf" {
		t.Errorf("mime = %q; want application/pdf", mime)
	}
	if len(codec.encodedQualities) != 0 {
		t.Error("non-images must not be re-encoded")
	}
}

func TestNormalise_DecodeError(t *testing.T) {
	codec := &fakeCodec{decodeErr: errors.New("not an image")}
	o := newTestOptimiser(Config{Quality: 82}, codec, nil)

	_, _, err := o.Normalise(context.Background(), "image/jpeg", strings.NewReader("junk"))
	if err == nil {
		t.Fatal("expected error for corrupt image data")
	}
}

func TestNormalise_OutputIsWebP(t *testing.T) {
	codec := &fakeCodec{}
	o := newTestOptimiser(Config{Quality: 82}, codec, nil)

	_, mime, err := o.Normalise(context.Background(), "image/jpeg", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mime != "image/webp" {
		t.Errorf("mime = %q; want image/webp", mime)
	}
	if got := codec.encodedQualities; len(got) != 1 || got[0] != 82 {
		t.Errorf("encoded qualities = %v; want [82]", got)
	}
}

func TestNormalise_CapsDimensions(t *testing.T) {
	codec := &fakeCodec{decodeImg: image.NewRGBA(image.Rect(0, 0, 4000, 2000))}
	o := newTestOptimiser(Config{Quality: 82, MaxDimension: 1920}, codec, nil)

	if _, _, err := o.Normalise(context.Background(), "image/jpeg", strings.NewReader("img")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	size := codec.encodedSizes[0]
	if size.X != 1920 || size.Y != 960 {
		t.Errorf("encoded at %dx%d; want 1920x960", size.X, size.Y)
	}
}

func TestNormalise_NeverUpscales(t *testing.T) {
	codec := &fakeCodec{decodeImg: image.NewRGBA(image.Rect(0, 0, 800, 600))}
	o := newTestOptimiser(Config{Quality: 82, MaxDimension: 1920}, codec, nil)

	if _, _, err := o.Normalise(context.Background(), "image/png", strings.NewReader("img")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	size := codec.encodedSizes[0]
	if size.X != 800 || size.Y != 600 {
		t.Errorf("encoded at %dx%d; want original 800x600", size.X, size.Y)
	}
}

func TestNormalise_QualitySteppingStopsAtFloor(t *testing.T) {
	// every encode stays over target, so quality steps down until the floor
	codec := &fakeCodec{bytesPerQualityPoint: 10}
	o := newTestOptimiser(Config{Quality: 82, TargetBytes: 100}, codec, nil)

	data, _, err := o.Normalise(context.Background(), "image/jpeg", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float32{82, 72, 62, 52}
	if len(codec.encodedQualities) != len(want) {
		t.Fatalf("encoded qualities = %v; want %v", codec.encodedQualities, want)
	}
	for i, q := range want {
		if codec.encodedQualities[i] != q {
			t.Fatalf("encoded qualities = %v; want %v", codec.encodedQualities, want)
		}
	}
	if len(data) != 520 {
		t.Errorf("returned %d bytes; want the final (lowest-quality) encode", len(data))
	}
}

func TestNormalise_TargetMetOnFirstTry(t *testing.T) {
	codec := &fakeCodec{bytesPerQualityPoint: 1}
	o := newTestOptimiser(Config{Quality: 82, TargetBytes: 1 << 20}, codec, nil)

	if _, _, err := o.Normalise(context.Background(), "image/jpeg", strings.NewReader("img")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(codec.encodedQualities) != 1 {
		t.Errorf("expected a single encode, got %v", codec.encodedQualities)
	}
}

func TestResize(t *testing.T) {
	t.Run("rejects non-images", func(t *testing.T) {
		o := newTestOptimiser(Config{Quality: 80}, &fakeCodec{}, nil)
		if _, err := o.Resize(context.Background(), "application/pdf", strings.NewReader("x"), 200); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("caps width preserving aspect ratio", func(t *testing.T) {
		codec := &fakeCodec{decodeImg: image.NewRGBA(image.Rect(0, 0, 1000, 400))}
		o := newTestOptimiser(Config{Quality: 80}, codec, nil)

		if _, err := o.Resize(context.Background(), "image/webp", strings.NewReader("img"), 200); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		size := codec.encodedSizes[0]
		if size.X != 200 || size.Y != 80 {
			t.Errorf("resized to %dx%d; want 200x80", size.X, size.Y)
		}
		if codec.encodedQualities[0] != 80 {
			t.Errorf("quality = %v; want 80", codec.encodedQualities[0])
		}
	})

	t.Run("never upscales", func(t *testing.T) {
		codec := &fakeCodec{decodeImg: image.NewRGBA(image.Rect(0, 0, 150, 90))}
		o := newTestOptimiser(Config{Quality: 80}, codec, nil)

		if _, err := o.Resize(context.Background(), "image/webp", strings.NewReader("img"), 800); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		size := codec.encodedSizes[0]
		if size.X != 150 || size.Y != 90 {
			t.Errorf("resized to %dx%d; want original 150x90", size.X, size.Y)
		}
	})
}

func TestInspectDocument(t *testing.T) {
	t.Run("rejects non-documents", func(t *testing.T) {
		o := newTestOptimiser(Config{}, &fakeCodec{}, nil)
		if _, err := o.InspectDocument(context.Background(), "image/png", strings.NewReader("x")); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("validation failure", func(t *testing.T) {
		val := &fakeValidator{err: errors.New("xref table broken")}
		o := newTestOptimiser(Config{}, &fakeCodec{}, val)

		_, err := o.InspectDocument(context.Background(), "application/pdf", strings.NewReader("junk"))
		if err == nil {
			t.Fatal("expected error")
		}
		if !val.called {
			t.Error("validator must run")
		}
	})

	t.Run("unreadable pdf", func(t *testing.T) {
		// validator passes but the bytes are not a PDF the reader can open
		o := newTestOptimiser(Config{}, &fakeCodec{}, &fakeValidator{})

		if _, err := o.InspectDocument(context.Background(), "application/pdf", strings.NewReader("junk")); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestDownscale(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		maxW, maxH int
		wantW      int
		wantH      int
	}{
		{"no bounds", 500, 300, 0, 0, 500, 300},
		{"under bounds", 500, 300, 800, 800, 500, 300},
		{"width bound", 1000, 400, 200, 0, 200, 80},
		{"height bound", 400, 1000, 0, 200, 80, 200},
		{"both bounds takes tighter", 2000, 1000, 1000, 250, 500, 250},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, tc.w, tc.h))
			out := downscale(img, tc.maxW, tc.maxH)
			size := out.Bounds().Size()
			if size.X != tc.wantW || size.Y != tc.wantH {
				t.Errorf("downscale(%dx%d, %d, %d) = %dx%d; want %dx%d",
					tc.w, tc.h, tc.maxW, tc.maxH, size.X, size.Y, tc.wantW, tc.wantH)
			}
		})
	}
}
