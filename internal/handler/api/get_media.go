package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/templeatlas/media-pipeline-go/internal/api_context"
	"github.com/templeatlas/media-pipeline-go/internal/port"
	"github.com/templeatlas/media-pipeline-go/internal/renderer"
	"github.com/templeatlas/media-pipeline-go/internal/usecase/media"
)

func GetMediaHandler(rdr renderer.HTTPRenderer, svc port.MediaGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.MediaIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}

		raw, etag, err := rdr.RenderGetMedia(r.Context(), svc, id)
		if err != nil {
			if errors.Is(err, media.ErrObjectNotFound) {
				WriteError(w, http.StatusNotFound, "Media not found", nil)
				return
			}
			WriteError(w, http.StatusInternalServerError, "Could not get media details", err)
			return
		}

		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "public, max-age=300")
		if match := r.Header.Get("If-None-Match"); match == etag {
			w.WriteHeader(http.StatusNotModified)
			log.Printf("✅  Returning cached media #%s", id)
			return
		}

		RespondRawJSON(w, http.StatusOK, raw)
		log.Printf("✅  Successfully returned details for media #%s", id)
	}
}
