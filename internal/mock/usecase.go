package mock

import (
	"context"

	"github.com/templeatlas/media-pipeline-go/internal/db"
	"github.com/templeatlas/media-pipeline-go/internal/port"
)

// MockRateLimiter implements port.RateLimiter for tests.
type MockRateLimiter struct {
	Err error

	Called  bool
	ActorID string
}

func (m *MockRateLimiter) CheckAndAdmit(ctx context.Context, actorID string) error {
	m.Called = true
	m.ActorID = actorID
	return m.Err
}

// MockMediaSubmitter implements port.MediaSubmitter for tests.
type MockMediaSubmitter struct {
	Out port.SubmitOutput
	Err error

	Called bool
	In     port.SubmitInput
}

func (m *MockMediaSubmitter) Submit(ctx context.Context, in port.SubmitInput) (port.SubmitOutput, error) {
	m.Called = true
	m.In = in
	if m.Err != nil {
		return port.SubmitOutput{}, m.Err
	}
	return m.Out, nil
}

// MockMediaGetter implements port.MediaGetter for tests.
type MockMediaGetter struct {
	Out *port.GetMediaOutput
	Err error

	Called bool
	ID     db.UUID
}

func (m *MockMediaGetter) GetMedia(ctx context.Context, id db.UUID) (*port.GetMediaOutput, error) {
	m.Called = true
	m.ID = id
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Out, nil
}

// MockVariantGenerator implements port.VariantGenerator for tests.
type MockVariantGenerator struct {
	Err error

	Called bool
	Event  port.FinalizeEvent
}

func (m *MockVariantGenerator) GenerateVariants(ctx context.Context, ev port.FinalizeEvent) error {
	m.Called = true
	m.Event = ev
	return m.Err
}

// MockReconciler implements port.Reconciler for tests.
type MockReconciler struct {
	Err error

	Called bool
}

func (m *MockReconciler) ReconcileStuck(ctx context.Context) error {
	m.Called = true
	return m.Err
}
