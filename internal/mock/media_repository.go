package mock

import (
	"context"
	"time"

	"github.com/templeatlas/media-pipeline-go/internal/db"
	"github.com/templeatlas/media-pipeline-go/internal/model"
)

// MockMediaRepo implements repository operations for tests.
type MockMediaRepo struct {
	MediaRecord *model.Media

	CreateErr    error
	GetErr       error
	GetByKeyErr  error
	CountErr     error
	FinaliseErr  error
	MarkErr      error
	ListErr      error
	CountOut     int
	ListOut      []*model.Media
	ListBefore   time.Time
	CountOwnerID string
	CountSince   time.Time

	Created        *model.Media
	GetCalled      bool
	GetByKeyCalled bool
	GotKey         string
	CountCalled    bool
	FinaliseCalled bool
	FinalisedID    db.UUID
	Finalised      model.Variants
	MarkCalled     bool
	MarkedID       db.UUID
	MarkedReason   string
	ListCalled     bool
}

func (m *MockMediaRepo) Create(ctx context.Context, media *model.Media) error {
	m.Created = media
	return m.CreateErr
}

func (m *MockMediaRepo) GetByID(ctx context.Context, id db.UUID) (*model.Media, error) {
	m.GetCalled = true
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.MediaRecord, nil
}

func (m *MockMediaRepo) GetByObjectKey(ctx context.Context, objectKey string) (*model.Media, error) {
	m.GetByKeyCalled = true
	m.GotKey = objectKey
	if m.GetByKeyErr != nil {
		return nil, m.GetByKeyErr
	}
	return m.MediaRecord, nil
}

func (m *MockMediaRepo) CountOwnedSince(ctx context.Context, ownerID string, since time.Time) (int, error) {
	m.CountCalled = true
	m.CountOwnerID = ownerID
	m.CountSince = since
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	return m.CountOut, nil
}

func (m *MockMediaRepo) FinaliseVariants(ctx context.Context, id db.UUID, variants model.Variants) error {
	m.FinaliseCalled = true
	m.FinalisedID = id
	m.Finalised = variants
	return m.FinaliseErr
}

func (m *MockMediaRepo) MarkFailed(ctx context.Context, id db.UUID, reason string) error {
	m.MarkCalled = true
	m.MarkedID = id
	m.MarkedReason = reason
	return m.MarkErr
}

func (m *MockMediaRepo) ListProcessingBefore(ctx context.Context, before time.Time) ([]*model.Media, error) {
	m.ListCalled = true
	m.ListBefore = before
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.ListOut, nil
}
