package mock

import (
	"context"
	"io"
	"sync"

	"github.com/templeatlas/media-pipeline-go/internal/port"
)

// MockFileOptimiser implements file optimisation operations for tests.
// Resizes may happen concurrently, so the call log is guarded.
type MockFileOptimiser struct {
	mu sync.Mutex

	NormaliseOut  []byte
	MimeOut       string
	ResizeOut     []byte
	InspectOut    port.DocumentInfo
	// ResizeOutByWidth overrides ResizeOut per target width when set
	ResizeOutByWidth map[int][]byte

	NormaliseErr error
	ResizeErr    error
	// ResizeErrByWidth fails only specific widths
	ResizeErrByWidth map[int]error
	InspectErr       error

	NormaliseCalled bool
	ResizeCalled    bool
	ResizeWidths    []int
	InspectCalled   bool
}

func (m *MockFileOptimiser) Normalise(ctx context.Context, mimeType string, r io.Reader) ([]byte, string, error) {
	m.NormaliseCalled = true
	if m.NormaliseErr != nil {
		return nil, "", m.NormaliseErr
	}
	if m.NormaliseOut == nil {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, "", err
		}
		return data, mimeType, nil
	}
	return m.NormaliseOut, m.MimeOut, nil
}

func (m *MockFileOptimiser) Resize(ctx context.Context, mimeType string, r io.Reader, maxWidth int) ([]byte, error) {
	m.mu.Lock()
	m.ResizeCalled = true
	m.ResizeWidths = append(m.ResizeWidths, maxWidth)
	m.mu.Unlock()
	if m.ResizeErrByWidth != nil {
		if err, ok := m.ResizeErrByWidth[maxWidth]; ok {
			return nil, err
		}
	}
	if m.ResizeErr != nil {
		return nil, m.ResizeErr
	}
	if m.ResizeOutByWidth != nil {
		if out, ok := m.ResizeOutByWidth[maxWidth]; ok {
			return out, nil
		}
	}
	return m.ResizeOut, nil
}

func (m *MockFileOptimiser) InspectDocument(ctx context.Context, mimeType string, r io.Reader) (port.DocumentInfo, error) {
	m.InspectCalled = true
	if m.InspectErr != nil {
		return port.DocumentInfo{}, m.InspectErr
	}
	return m.InspectOut, nil
}
