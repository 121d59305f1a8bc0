package api_context

import (
	"context"

	"github.com/templeatlas/media-pipeline-go/internal/db"
)

type ctxKey string

const (
	MediaIDKey ctxKey = "mediaID"
	ActorIDKey ctxKey = "actorID"
)

// WithActorID stores the authenticated actor identity in the context. The
// pipeline itself never reads ambient user state; handlers extract the actor
// here and pass it down as an explicit parameter.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ActorIDKey, actorID)
}

func ActorIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ActorIDKey).(string)
	return id, ok && id != ""
}

func WithMediaID(ctx context.Context, id db.UUID) context.Context {
	return context.WithValue(ctx, MediaIDKey, id)
}

func MediaIDFromContext(ctx context.Context) (db.UUID, bool) {
	id, ok := ctx.Value(MediaIDKey).(db.UUID)
	return id, ok
}
