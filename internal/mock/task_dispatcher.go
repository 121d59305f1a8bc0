package mock

import "context"

// MockTaskDispatcher implements task dispatching for tests.
type MockTaskDispatcher struct {
	EnqueueErr error
	// EnqueueErrs fails only specific object keys
	EnqueueErrs map[string]error

	EnqueuedKeys  []string
	EnqueuedTypes []string
}

func (d *MockTaskDispatcher) EnqueueGenerateVariants(ctx context.Context, objectKey, contentType string) error {
	d.EnqueuedKeys = append(d.EnqueuedKeys, objectKey)
	d.EnqueuedTypes = append(d.EnqueuedTypes, contentType)
	if d.EnqueueErrs != nil {
		if err, ok := d.EnqueueErrs[objectKey]; ok {
			return err
		}
	}
	return d.EnqueueErr
}
