package mock

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/templeatlas/media-pipeline-go/internal/port"
)

type readSeekCloser struct{ *bytes.Reader }

func (readSeekCloser) Close() error { return nil }

// MockStorage implements object storage operations for tests. Saves may
// happen concurrently, so the write-side fields are guarded.
type MockStorage struct {
	mu sync.Mutex

	FileContent []byte
	Info        port.FileInfo
	BaseURL     string

	EnsureErr error
	StatErr   error
	GetErr    error
	SaveErr   error
	RemoveErr error
	// SaveErrByKey fails only specific keys, others succeed
	SaveErrByKey map[string]error

	EnsureCalled bool
	StatCalled   bool
	GetCalled    bool
	GotKey       string
	SavedKeys    []string
	SavedBodies  map[string][]byte
	SavedOpts    map[string]port.SaveOptions
	RemovedKeys  []string
}

func (s *MockStorage) EnsureBucket(ctx context.Context) error {
	s.EnsureCalled = true
	return s.EnsureErr
}

func (s *MockStorage) StatFile(ctx context.Context, fileKey string) (port.FileInfo, error) {
	s.StatCalled = true
	if s.StatErr != nil {
		return port.FileInfo{}, s.StatErr
	}
	return s.Info, nil
}

func (s *MockStorage) GetFile(ctx context.Context, fileKey string) (io.ReadSeekCloser, error) {
	s.GetCalled = true
	s.GotKey = fileKey
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	return readSeekCloser{bytes.NewReader(s.FileContent)}, nil
}

func (s *MockStorage) SaveFile(ctx context.Context, fileKey string, reader io.Reader, fileSize int64, opts port.SaveOptions) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if s.SaveErrByKey != nil {
		if ferr, ok := s.SaveErrByKey[fileKey]; ok {
			return ferr
		}
	}
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SavedKeys = append(s.SavedKeys, fileKey)
	if s.SavedBodies == nil {
		s.SavedBodies = make(map[string][]byte)
	}
	s.SavedBodies[fileKey] = data
	if s.SavedOpts == nil {
		s.SavedOpts = make(map[string]port.SaveOptions)
	}
	s.SavedOpts[fileKey] = opts
	return nil
}

func (s *MockStorage) RemoveFile(ctx context.Context, fileKey string) error {
	s.RemovedKeys = append(s.RemovedKeys, fileKey)
	return s.RemoveErr
}

func (s *MockStorage) PublicURL(fileKey string) string {
	base := s.BaseURL
	if base == "" {
		base = "https://cdn.test/media"
	}
	return base + "/" + fileKey
}
