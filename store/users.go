package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"masterboxer.com/project-newsfeed/models"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore is the user directory backing post ownership and display names.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) UserExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).
		Scan(&exists)
	if err != nil {
		if isInvalidID(err) {
			return false, nil
		}
		return false, fmt.Errorf("check user %s: %w", id, err)
	}
	return exists, nil
}

func (s *UserStore) DisplayName(ctx context.Context, id string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT display_name FROM users WHERE id = $1`, id).
		Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get display name for %s: %w", id, err)
	}
	return name, nil
}

// CreateUser stores a new user with a bcrypt-hashed password.
func (s *UserStore) CreateUser(ctx context.Context, u *models.User) error {
	u.Username = strings.TrimSpace(u.Username)
	u.DisplayName = strings.TrimSpace(u.DisplayName)
	if u.Username == "" || u.DisplayName == "" || u.Password == "" {
		return fmt.Errorf("%w: username, display_name and password are required", ErrInvalidRecord)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, display_name, password, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at`,
		u.Username, u.DisplayName, string(hashed),
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	u.Password = ""
	return nil
}

// Authenticate returns the id of the user whose credentials match.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (string, error) {
	var id, hashed string
	err := s.db.QueryRowContext(ctx, `SELECT id, password FROM users WHERE username = $1`,
		strings.TrimSpace(username)).Scan(&id, &hashed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user %s: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return id, nil
}
