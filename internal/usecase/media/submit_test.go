package media

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/templeatlas/media-pipeline-go/internal/db"
	"github.com/templeatlas/media-pipeline-go/internal/mock"
	"github.com/templeatlas/media-pipeline-go/internal/model"
	"github.com/templeatlas/media-pipeline-go/internal/port"
)

var testUUID = db.UUID(uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"))

func fixedUUID() db.UUID { return testUUID }

type submitterDeps struct {
	repo    *mock.MockMediaRepo
	strg    *mock.MockStorage
	opt     *mock.MockFileOptimiser
	limiter *mock.MockRateLimiter
}

func newTestSubmitter(cfg SubmitterConfig) (port.MediaSubmitter, *submitterDeps) {
	d := &submitterDeps{
		repo:    &mock.MockMediaRepo{},
		strg:    &mock.MockStorage{},
		opt:     &mock.MockFileOptimiser{NormaliseOut: []byte("webp bytes"), MimeOut: "image/webp"},
		limiter: &mock.MockRateLimiter{},
	}
	return NewSubmitter(d.repo, d.strg, d.opt, d.limiter, fixedUUID, cfg), d
}

func imageInput() port.SubmitInput {
	return port.SubmitInput{
		ActorID:     "user-1",
		Folder:      "temples",
		MediaType:   model.MediaTypeTempleImage,
		Filename:    "Roof Photo.JPG",
		ContentType: "image/jpeg",
		SizeBytes:   1024,
		Reader:      bytes.NewReader([]byte("jpeg bytes")),
	}
}

func TestSubmit_Unauthenticated(t *testing.T) {
	svc, d := newTestSubmitter(SubmitterConfig{})
	in := imageInput()
	in.ActorID = ""

	_, err := svc.Submit(context.Background(), in)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if d.limiter.Called {
		t.Error("limiter should not run for anonymous callers")
	}
}

func TestSubmit_RateLimited(t *testing.T) {
	svc, d := newTestSubmitter(SubmitterConfig{})
	d.limiter.Err = &RateLimitedError{Ceiling: 20, Window: DefaultRateLimitWindow}

	_, err := svc.Submit(context.Background(), imageInput())
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if d.opt.NormaliseCalled || len(d.strg.SavedKeys) != 0 || d.repo.Created != nil {
		t.Error("nothing should happen after a rate-limit rejection")
	}
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*port.SubmitInput)
	}{
		{
			name:   "unknown media type",
			mutate: func(in *port.SubmitInput) { in.MediaType = "banner" },
		},
		{
			name:   "unsupported image type",
			mutate: func(in *port.SubmitInput) { in.ContentType = "image/gif" },
		},
		{
			name: "image too large",
			mutate: func(in *port.SubmitInput) {
				in.SizeBytes = DefaultMaxImageBytes + 1
			},
		},
		{
			name: "document too large",
			mutate: func(in *port.SubmitInput) {
				in.ContentType = "application/pdf"
				in.MediaType = model.MediaTypeDocument
				in.SizeBytes = DefaultMaxDocumentBytes + 1
			},
		},
		{
			name:   "unsupported file type",
			mutate: func(in *port.SubmitInput) { in.ContentType = "video/mp4" },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, d := newTestSubmitter(SubmitterConfig{})
			in := imageInput()
			tc.mutate(&in)

			_, err := svc.Submit(context.Background(), in)
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("expected ErrValidationFailed, got %v", err)
			}
			if len(d.strg.SavedKeys) != 0 || d.repo.Created != nil {
				t.Error("rejected submission must leave no residue")
			}
		})
	}
}

func TestSubmit_CompressionFailure(t *testing.T) {
	svc, d := newTestSubmitter(SubmitterConfig{})
	d.opt.NormaliseErr = errors.New("corrupt image data")

	_, err := svc.Submit(context.Background(), imageInput())
	if !errors.Is(err, ErrCompressionFailed) {
		t.Fatalf("expected ErrCompressionFailed, got %v", err)
	}
	if len(d.strg.SavedKeys) != 0 || d.repo.Created != nil {
		t.Error("failed compression must leave no residue")
	}
}

func TestSubmit_UploadFailure(t *testing.T) {
	svc, d := newTestSubmitter(SubmitterConfig{})
	d.strg.SaveErr = errors.New("minio down")

	_, err := svc.Submit(context.Background(), imageInput())
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	if d.repo.Created != nil {
		t.Error("no record must exist after a failed upload")
	}
}

func TestSubmit_CreateFailureCleansUpObject(t *testing.T) {
	svc, d := newTestSubmitter(SubmitterConfig{})
	d.repo.CreateErr = errors.New("duplicate key")

	_, err := svc.Submit(context.Background(), imageInput())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(d.strg.SavedKeys) != 1 {
		t.Fatalf("expected one upload, got %d", len(d.strg.SavedKeys))
	}
	if len(d.strg.RemovedKeys) != 1 || d.strg.RemovedKeys[0] != d.strg.SavedKeys[0] {
		t.Errorf("uploaded object %q must be removed, removed: %v", d.strg.SavedKeys[0], d.strg.RemovedKeys)
	}
}

func TestSubmit_ImageSuccess(t *testing.T) {
	svc, d := newTestSubmitter(SubmitterConfig{})

	out, err := svc.Submit(context.Background(), imageInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(d.strg.SavedKeys) != 1 {
		t.Fatalf("expected one upload, got %d", len(d.strg.SavedKeys))
	}
	key := d.strg.SavedKeys[0]
	if !strings.HasPrefix(key, "temples/") {
		t.Errorf("key %q not under submitted folder", key)
	}
	if !strings.HasSuffix(key, "-roof-photo.webp") {
		t.Errorf("key %q should end with the sanitized name and .webp", key)
	}
	if !bytes.Equal(d.strg.SavedBodies[key], []byte("webp bytes")) {
		t.Error("stored bytes must be the normalised output")
	}
	opts := d.strg.SavedOpts[key]
	if opts.ContentType != "image/webp" {
		t.Errorf("stored content type %q; want image/webp", opts.ContentType)
	}
	if opts.CacheControl != CacheControlImmutable {
		t.Errorf("cache control %q; want immutable", opts.CacheControl)
	}
	if opts.UserMetadata["owner-id"] != "user-1" {
		t.Errorf("owner metadata %q; want user-1", opts.UserMetadata["owner-id"])
	}

	m := d.repo.Created
	if m == nil {
		t.Fatal("expected a record to be created")
	}
	if m.ID != testUUID {
		t.Errorf("record ID %s; want %s", m.ID, testUUID)
	}
	if m.Status != model.MediaStatusProcessing {
		t.Errorf("new record status %q; want processing", m.Status)
	}
	if len(m.Variants) != 0 {
		t.Errorf("new record must have no variants, got %v", m.Variants)
	}
	if m.OwnerID != "user-1" || m.MediaType != model.MediaTypeTempleImage {
		t.Errorf("record identity wrong: %+v", m)
	}
	if m.SizeBytes != int64(len("webp bytes")) {
		t.Errorf("record size %d; want post-compression size", m.SizeBytes)
	}

	if out.MediaID != testUUID || out.ObjectKey != key {
		t.Errorf("unexpected output: %+v", out)
	}
	if out.DownloadURL == "" || !strings.HasSuffix(out.DownloadURL, key) {
		t.Errorf("download URL %q should resolve the object key", out.DownloadURL)
	}
}

func TestSubmit_DocumentSuccess(t *testing.T) {
	svc, d := newTestSubmitter(SubmitterConfig{})
	d.opt.InspectOut = port.DocumentInfo{PageCount: 3}

	content := []byte("%PDF-1.7 fake")
	in := imageInput()
	in.MediaType = model.MediaTypeDocument
	in.Filename = "Property Deed.pdf"
	in.ContentType = "application/pdf"
	in.SizeBytes = int64(len(content))
	in.Reader = bytes.NewReader(content)

	out, err := svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.opt.InspectCalled {
		t.Error("documents must be structurally validated")
	}
	if d.opt.NormaliseCalled {
		t.Error("documents must not run through the image normaliser")
	}
	key := out.ObjectKey
	if !strings.HasSuffix(key, "-property-deed.pdf") {
		t.Errorf("key %q should keep the original extension", key)
	}
	if !bytes.Equal(d.strg.SavedBodies[key], content) {
		t.Error("document bytes must pass through unchanged")
	}
}

func TestSubmit_InvalidDocument(t *testing.T) {
	svc, d := newTestSubmitter(SubmitterConfig{})
	d.opt.InspectErr = errors.New("not a pdf")

	in := imageInput()
	in.MediaType = model.MediaTypeDocument
	in.ContentType = "application/pdf"

	_, err := svc.Submit(context.Background(), in)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if len(d.strg.SavedKeys) != 0 || d.repo.Created != nil {
		t.Error("invalid document must leave no residue")
	}
}

func TestSubmit_DocumentActualSizeRecheck(t *testing.T) {
	svc, _ := newTestSubmitter(SubmitterConfig{MaxDocumentBytes: 8})

	in := imageInput()
	in.MediaType = model.MediaTypeDocument
	in.ContentType = "application/pdf"
	in.SizeBytes = 4 // lies about its size
	in.Reader = bytes.NewReader([]byte("way more than eight bytes"))

	_, err := svc.Submit(context.Background(), in)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
}

func TestSubmit_ProgressIsMonotonic(t *testing.T) {
	svc, _ := newTestSubmitter(SubmitterConfig{})

	var reported []int
	in := imageInput()
	in.OnProgress = func(pct int) { reported = append(reported, pct) }

	if _, err := svc.Submit(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(reported) == 0 {
		t.Fatal("expected progress callbacks")
	}
	last := -1
	for _, pct := range reported {
		if pct < last {
			t.Fatalf("progress went backwards: %v", reported)
		}
		if pct < 0 || pct > 100 {
			t.Fatalf("progress out of range: %v", reported)
		}
		last = pct
	}
	if reported[len(reported)-1] != 100 {
		t.Errorf("progress must end at 100, got %v", reported)
	}
}
