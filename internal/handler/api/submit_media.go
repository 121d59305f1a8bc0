package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/templeatlas/media-pipeline-go/internal/api_context"
	"github.com/templeatlas/media-pipeline-go/internal/model"
	"github.com/templeatlas/media-pipeline-go/internal/port"
	"github.com/templeatlas/media-pipeline-go/internal/usecase/media"
	"github.com/templeatlas/media-pipeline-go/internal/validation"
)

// maxMultipartMemory bounds how much of the multipart form is buffered in
// memory; larger file parts spill to temp files.
const maxMultipartMemory = 10 << 20

type SubmitMediaRequest struct {
	Folder    string `json:"folder" validate:"required"`
	MediaType string `json:"media_type" validate:"required"`
}

// SubmitMediaHandler accepts a multipart upload (`file` part plus `folder`
// and `media_type` fields) and runs the synchronous half of the pipeline.
func SubmitMediaHandler(svc port.MediaSubmitter, allowedFolders []string) http.HandlerFunc {
	folders := make(map[string]struct{}, len(allowedFolders))
	for _, f := range allowedFolders {
		folders[f] = struct{}{}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		actorID, _ := api_context.ActorIDFromContext(r.Context())

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid multipart payload", err)
			return
		}

		req := SubmitMediaRequest{
			Folder:    r.FormValue("folder"),
			MediaType: r.FormValue("media_type"),
		}
		if errs := validation.ValidateStruct(req); errs != nil {
			errsJSON, err := validation.ErrorsToJson(errs)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to encode validation errors", err)
				return
			}
			RespondRawJSON(w, http.StatusBadRequest, []byte(errsJSON))
			log.Printf("❌  Validation failed: %s", errsJSON)
			return
		}
		if _, ok := folders[req.Folder]; !ok {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("folder %q does not exist", req.Folder), nil)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "file is required", err)
			return
		}
		defer func() { _ = file.Close() }()

		out, err := svc.Submit(r.Context(), port.SubmitInput{
			ActorID:     actorID,
			Folder:      req.Folder,
			MediaType:   model.MediaType(req.MediaType),
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			SizeBytes:   header.Size,
			Reader:      file,
		})
		if err != nil {
			writeSubmitError(w, err)
			return
		}

		RespondJSON(w, http.StatusCreated, out)
		log.Printf("✅  Successfully registered media #%s", out.MediaID)
	}
}

func writeSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, media.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, "authentication required", nil)
	case errors.Is(err, media.ErrRateLimited):
		WriteError(w, http.StatusTooManyRequests, err.Error(), nil)
	case errors.Is(err, media.ErrValidationFailed):
		WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, media.ErrCompressionFailed):
		WriteError(w, http.StatusUnprocessableEntity, "file could not be processed", err)
	default:
		WriteError(w, http.StatusInternalServerError, "could not submit media", err)
	}
}
