package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
	"masterboxer.com/project-newsfeed/models"
	"masterboxer.com/project-newsfeed/store"
)

// MaxListPosts caps how many posts ListPostsByOwner returns.
const MaxListPosts = 1000

// listWorkers bounds concurrent attachment reads while listing.
const listWorkers = 8

type PostStore interface {
	Insert(ctx context.Context, p *models.Post) (string, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.Post, error)
	Delete(ctx context.Context, id string) error
}

type UserDirectory interface {
	UserExists(ctx context.Context, id string) (bool, error)
	DisplayName(ctx context.Context, id string) (string, error)
}

type AttachmentStore interface {
	Put(ctx context.Context, content io.Reader, ownerID, filename, contentType string) (location, mediaClass string, err error)
	Get(ctx context.Context, location string) ([]byte, error)
	Delete(ctx context.Context, location string) error
}

type PostNotifier interface {
	PostCreated(ctx context.Context, post models.Post) error
}

// PostService keeps post records and their attachments in step.
type PostService struct {
	posts       PostStore
	users       UserDirectory
	attachments AttachmentStore
	notifier    PostNotifier

	now func() time.Time
}

// NewPostService wires the stores together. notifier may be nil.
func NewPostService(posts PostStore, users UserDirectory, attachments AttachmentStore, notifier PostNotifier) *PostService {
	return &PostService{
		posts:       posts,
		users:       users,
		attachments: attachments,
		notifier:    notifier,
		now:         time.Now,
	}
}

// CreatePost writes the attachment, if any, before inserting the record, so
// a failure never leaves a record pointing at a missing file.
func (s *PostService) CreatePost(ctx context.Context, actorID, status string, upload *models.Upload) (string, error) {
	if err := s.requireUser(ctx, actorID); err != nil {
		return "", err
	}

	post := models.Post{
		OwnerID:   actorID,
		Status:    status,
		CreatedAt: s.now().UTC(),
	}

	if upload != nil {
		location, mediaClass, err := s.attachments.Put(ctx, upload.Content, actorID, upload.Filename, upload.ContentType)
		if err != nil {
			return "", fmt.Errorf("store attachment: %w", err)
		}
		post.AttachmentLocation = &location
		post.AttachmentMediaClass = &mediaClass
	}

	id, err := s.posts.Insert(ctx, &post)
	if err != nil {
		if post.HasAttachment() {
			s.discardAttachment(*post.AttachmentLocation)
		}
		return "", fmt.Errorf("insert post: %w", err)
	}
	post.ID = id

	if s.notifier != nil {
		go func() {
			if err := s.notifier.PostCreated(context.WithoutCancel(ctx), post); err != nil {
				log.Printf("[POSTS] Notification for post %s failed: %v", id, err)
			}
		}()
	}

	return id, nil
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*models.PostView, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post %s: %w", postID, err)
	}

	username, err := s.displayName(ctx, post.OwnerID)
	if err != nil {
		return nil, err
	}

	return s.assembleView(ctx, post, username)
}

// ListPostsByOwner returns the owner's newest posts first, each assembled
// exactly as GetPost would.
func (s *PostService) ListPostsByOwner(ctx context.Context, ownerID string) ([]models.PostView, error) {
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}

	posts, err := s.posts.ListByOwner(ctx, ownerID, MaxListPosts)
	if err != nil {
		return nil, fmt.Errorf("list posts for %s: %w", ownerID, err)
	}

	username, err := s.displayName(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	views := make([]models.PostView, len(posts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listWorkers)
	for i := range posts {
		g.Go(func() error {
			v, err := s.assembleView(gctx, &posts[i], username)
			if err != nil {
				return err
			}
			views[i] = *v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// DeletePost removes the record and then its attachment. Only the owner may
// delete; ownership is always read from the record store.
func (s *PostService) DeletePost(ctx context.Context, actorID, postID string) error {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("get post %s: %w", postID, err)
	}

	if post.OwnerID != actorID {
		return ErrNotOwner
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("delete post %s: %w", postID, err)
	}

	if post.HasAttachment() {
		if err := s.attachments.Delete(ctx, *post.AttachmentLocation); err != nil {
			log.Printf("[POSTS] Post %s deleted but attachment %s remains: %v", postID, *post.AttachmentLocation, err)
		}
	}
	return nil
}

func (s *PostService) assembleView(ctx context.Context, post *models.Post, username string) (*models.PostView, error) {
	view := &models.PostView{
		ID:        post.ID,
		OwnerID:   post.OwnerID,
		Username:  username,
		Status:    post.Status,
		TimeStamp: post.CreatedAt,
	}

	if post.HasAttachment() {
		data, err := s.attachments.Get(ctx, *post.AttachmentLocation)
		if err != nil {
			return nil, fmt.Errorf("%w: post %s: %v", ErrAttachmentUnavailable, post.ID, err)
		}
		encoded := base64.StdEncoding.EncodeToString(data)
		mediaClass := *post.AttachmentMediaClass
		view.File = &encoded
		view.FileType = &mediaClass
	}
	return view, nil
}

func (s *PostService) requireUser(ctx context.Context, id string) error {
	ok, err := s.users.UserExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check user %s: %w", id, err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

// displayName tolerates owners missing from the directory; their posts are
// still readable, just without a name.
func (s *PostService) displayName(ctx context.Context, id string) (string, error) {
	name, err := s.users.DisplayName(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("[POSTS] No display name for owner %s", id)
			return "", nil
		}
		return "", fmt.Errorf("display name for %s: %w", id, err)
	}
	return name, nil
}

func (s *PostService) discardAttachment(location string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.attachments.Delete(ctx, location); err != nil {
		log.Printf("[POSTS] Orphaned attachment %s left for sweep: %v", location, err)
	}
}
