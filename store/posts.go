// Package store is the PostgreSQL persistence boundary for posts and users.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"masterboxer.com/project-newsfeed/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidRecord = errors.New("invalid record")
)

type PostStore struct {
	db *sql.DB
}

func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// Insert stores p and returns the generated id. p.ID is ignored.
func (s *PostStore) Insert(ctx context.Context, p *models.Post) (string, error) {
	if err := validatePost(p); err != nil {
		return "", err
	}

	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (owner_id, status, attachment_location, attachment_media_class, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		p.OwnerID,
		p.Status,
		p.AttachmentLocation,
		p.AttachmentMediaClass,
		p.CreatedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert post: %w", err)
	}
	return id, nil
}

func (s *PostStore) Get(ctx context.Context, id string) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, status, attachment_location, attachment_media_class, created_at
		FROM posts
		WHERE id = $1`,
		id)

	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	return p, nil
}

// ListByOwner returns at most limit posts, newest first. Posts sharing a
// timestamp are ordered by id so repeated calls agree.
func (s *PostStore) ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, status, attachment_location, attachment_media_class, created_at
		FROM posts
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		ownerID, limit)
	if err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list posts for %s: %w", ownerID, err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

func (s *PostStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		if isInvalidID(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AttachmentLocations returns every location still referenced by a post.
func (s *PostStore) AttachmentLocations(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT attachment_location FROM posts WHERE attachment_location IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("list attachment locations: %w", err)
	}
	defer rows.Close()

	locs := make(map[string]struct{})
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, fmt.Errorf("scan attachment location: %w", err)
		}
		locs[loc] = struct{}{}
	}
	return locs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*models.Post, error) {
	var (
		p          models.Post
		location   sql.NullString
		mediaClass sql.NullString
	)
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Status, &location, &mediaClass, &p.CreatedAt); err != nil {
		return nil, err
	}
	if location.Valid != mediaClass.Valid {
		return nil, fmt.Errorf("%w: post %s has a partial attachment reference", ErrInvalidRecord, p.ID)
	}
	if location.Valid {
		p.AttachmentLocation = &location.String
		p.AttachmentMediaClass = &mediaClass.String
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func validatePost(p *models.Post) error {
	switch {
	case p == nil:
		return fmt.Errorf("%w: nil post", ErrInvalidRecord)
	case p.OwnerID == "":
		return fmt.Errorf("%w: owner_id is required", ErrInvalidRecord)
	case p.CreatedAt.IsZero():
		return fmt.Errorf("%w: created_at is required", ErrInvalidRecord)
	case (p.AttachmentLocation == nil) != (p.AttachmentMediaClass == nil):
		return fmt.Errorf("%w: attachment location and media class must be set together", ErrInvalidRecord)
	case p.AttachmentLocation != nil && (*p.AttachmentLocation == "" || *p.AttachmentMediaClass == ""):
		return fmt.Errorf("%w: empty attachment reference", ErrInvalidRecord)
	}
	return nil
}

// isInvalidID reports whether postgres rejected an id that is not a UUID.
func isInvalidID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "invalid_text_representation"
}
