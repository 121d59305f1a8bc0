package model

import (
	"time"

	"github.com/templeatlas/media-pipeline-go/internal/db"
)

// MediaStatus is the lifecycle state of a media record. A record starts as
// `processing` and moves exactly once to `ready` or `failed`; both are terminal.
type MediaStatus string

const (
	MediaStatusProcessing MediaStatus = "processing"
	MediaStatusReady      MediaStatus = "ready"
	MediaStatusFailed     MediaStatus = "failed"
)

// MediaType is a closed tag describing the semantic use of a media.
type MediaType string

const (
	MediaTypeTempleImage MediaType = "temple_image"
	MediaTypePostImage   MediaType = "post_image"
	MediaTypeAvatar      MediaType = "avatar"
	MediaTypeDocument    MediaType = "document"
)

// IsValid reports whether t is one of the known media types.
func (t MediaType) IsValid() bool {
	switch t {
	case MediaTypeTempleImage, MediaTypePostImage, MediaTypeAvatar, MediaTypeDocument:
		return true
	}
	return false
}

// Media is the one persistent entity the pipeline owns. ObjectKey,
// DownloadURL, OwnerID, MediaType, ContentType, SizeBytes and CreatedAt are
// immutable after creation; only the variant generator mutates Status and
// Variants afterwards.
type Media struct {
	ID             db.UUID     `json:"id"`
	OwnerID        string      `json:"owner_id"`
	MediaType      MediaType   `json:"media_type"`
	ObjectKey      string      `json:"object_key"`
	DownloadURL    string      `json:"download_url"`
	ContentType    string      `json:"content_type"`
	SizeBytes      int64       `json:"size_bytes"`
	Status         MediaStatus `json:"status"`
	Variants       Variants    `json:"variants"`
	FailureMessage *string     `json:"failure_message,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
