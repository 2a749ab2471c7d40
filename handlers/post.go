package handlers

import (
	"context"
	"errors"
	"log"
	"mime"
	"net/http"

	"github.com/gorilla/mux"
	"masterboxer.com/project-newsfeed/auth"
	"masterboxer.com/project-newsfeed/models"
)

type Posts interface {
	CreatePost(ctx context.Context, actorID, status string, upload *models.Upload) (string, error)
	GetPost(ctx context.Context, postID string) (*models.PostView, error)
	ListPostsByOwner(ctx context.Context, ownerID string) ([]models.PostView, error)
	DeletePost(ctx context.Context, actorID, postID string) error
}

// UploadLimits bounds request bodies of CreatePost. Multipart data beyond
// MaxMemory is spooled to temporary files rather than held in memory.
type UploadLimits struct {
	MaxBytes  int64
	MaxMemory int64
}

// CreatePost accepts a "status" value and an optional "file" part.
func CreatePost(posts Posts, limits UploadLimits) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := auth.CurrentUser(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, limits.MaxBytes)

		var upload *models.Upload
		if isMultipart(r) {
			if err := r.ParseMultipartForm(limits.MaxMemory); err != nil {
				writeBodyError(w, err)
				return
			}
			defer r.MultipartForm.RemoveAll()

			file, header, err := r.FormFile("file")
			switch {
			case errors.Is(err, http.ErrMissingFile):
			case err != nil:
				writeError(w, http.StatusBadRequest, "Invalid file part")
				return
			default:
				defer file.Close()
				upload = &models.Upload{
					Filename:    header.Filename,
					ContentType: header.Header.Get("Content-Type"),
					Content:     file,
				}
			}
		} else if err := r.ParseForm(); err != nil {
			writeBodyError(w, err)
			return
		}

		id, err := posts.CreatePost(r.Context(), actorID, r.FormValue("status"), upload)
		if err != nil {
			writeServiceError(w, "CreatePost", err)
			return
		}

		log.Printf("CreatePost: user %s created post %s (attachment=%t)", actorID, id, upload != nil)
		writeSuccess(w, http.StatusCreated, id)
	}
}

func GetPost(posts Posts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID := mux.Vars(r)["post_id"]

		view, err := posts.GetPost(r.Context(), postID)
		if err != nil {
			writeServiceError(w, "GetPost", err)
			return
		}
		writeSuccess(w, http.StatusOK, view)
	}
}

func GetPostsByOwner(posts Posts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := mux.Vars(r)["owner_id"]

		views, err := posts.ListPostsByOwner(r.Context(), ownerID)
		if err != nil {
			writeServiceError(w, "GetPostsByOwner", err)
			return
		}
		if views == nil {
			views = []models.PostView{}
		}
		writeSuccess(w, http.StatusOK, views)
	}
}

func DeletePost(posts Posts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := auth.CurrentUser(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		postID := mux.Vars(r)["post_id"]

		if err := posts.DeletePost(r.Context(), actorID, postID); err != nil {
			writeServiceError(w, "DeletePost", err)
			return
		}
		writeSuccess(w, http.StatusOK, nil)
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid request body")
}
