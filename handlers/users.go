package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"masterboxer.com/project-newsfeed/models"
	"masterboxer.com/project-newsfeed/store"
)

type Accounts interface {
	CreateUser(ctx context.Context, u *models.User) error
	Authenticate(ctx context.Context, username, password string) (string, error)
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

func CreateUser(accounts Accounts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u models.User
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := accounts.CreateUser(r.Context(), &u); err != nil {
			switch {
			case errors.Is(err, store.ErrInvalidRecord):
				writeError(w, http.StatusBadRequest, "Username, display_name and password are required")
			case errors.Is(err, store.ErrUsernameTaken):
				writeError(w, http.StatusConflict, "Username already taken")
			default:
				writeError(w, http.StatusInternalServerError, "Failed to create user")
				log.Println("CreateUser error:", err)
			}
			return
		}

		writeSuccess(w, http.StatusCreated, u.ID)
	}
}

func Login(accounts Accounts, tokens TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		userID, err := accounts.Authenticate(r.Context(), creds.Username, creds.Password)
		if err != nil {
			if errors.Is(err, store.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "Invalid username or password")
				return
			}
			writeError(w, http.StatusInternalServerError, "Login failed")
			log.Println("Login error:", err)
			return
		}

		token, err := tokens.Issue(userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Login failed")
			log.Println("Login token error:", err)
			return
		}

		writeSuccess(w, http.StatusOK, map[string]string{
			"access_token": token,
			"token_type":   "bearer",
			"user_id":      userID,
		})
	}
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, nil)
}
