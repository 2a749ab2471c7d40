package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"masterboxer.com/project-newsfeed/services"
	"masterboxer.com/project-newsfeed/storage"
)

type envelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Detail string      `json:"detail,omitempty"`
}

func writeSuccess(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(envelope{Status: "success", Data: data})
}

func writeError(w http.ResponseWriter, code int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(envelope{Status: "error", Detail: detail})
}

// writeServiceError maps post service failures onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrNotOwner):
		writeError(w, http.StatusForbidden, "Post belongs to another user")
	case errors.Is(err, storage.ErrInvalidContentType):
		writeError(w, http.StatusBadRequest, "File content type is missing or invalid")
	case errors.Is(err, services.ErrAttachmentUnavailable):
		writeError(w, http.StatusInternalServerError, "Attachment unavailable")
		log.Printf("%s error: %v", op, err)
	case errors.Is(err, storage.ErrStorageWrite):
		writeError(w, http.StatusInternalServerError, "Failed to store attachment")
		log.Printf("%s error: %v", op, err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
		log.Printf("%s error: %v", op, err)
	}
}
