package mock

import (
	"context"

	"github.com/templeatlas/media-pipeline-go/internal/db"
	"github.com/templeatlas/media-pipeline-go/internal/port"
)

// MockHTTPRenderer implements renderer.HTTPRenderer for tests.
type MockHTTPRenderer struct {
	Data []byte
	Etag string
	Err  error

	Called bool
	Getter port.MediaGetter
	ID     db.UUID
}

func (m *MockHTTPRenderer) RenderGetMedia(ctx context.Context, getter port.MediaGetter, id db.UUID) ([]byte, string, error) {
	m.Called = true
	m.Getter = getter
	m.ID = id
	return m.Data, m.Etag, m.Err
}
