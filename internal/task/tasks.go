package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const TypeGenerateVariants = "media:generate_variants"

// GenerateVariantsPayload mirrors the finalize event: the storage path of
// the new object and its content type. Nothing else crosses the boundary
// between the two halves of the pipeline.
type GenerateVariantsPayload struct {
	ObjectKey   string `json:"object_key" validate:"required"`
	ContentType string `json:"content_type"`
}

// NewGenerateVariantsTask creates an Asynq task for deriving variants of a
// finalized object.
func NewGenerateVariantsTask(objectKey, contentType string) (*asynq.Task, error) {
	p := GenerateVariantsPayload{ObjectKey: objectKey, ContentType: contentType}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("could not marshal generate-variants payload: %w", err)
	}
	return asynq.NewTask(TypeGenerateVariants, data), nil
}

// ParseGenerateVariantsPayload parses the task payload.
func ParseGenerateVariantsPayload(t *asynq.Task) (GenerateVariantsPayload, error) {
	var p GenerateVariantsPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return GenerateVariantsPayload{}, fmt.Errorf("could not unmarshal payload: %w", err)
	}
	return p, nil
}
