package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"masterboxer.com/project-newsfeed/models"
	"masterboxer.com/project-newsfeed/store"
)

type memPostStore struct {
	mu        sync.Mutex
	posts     map[string]models.Post
	insertErr error
}

func newMemPostStore() *memPostStore {
	return &memPostStore{posts: map[string]models.Post{}}
}

func (m *memPostStore) Insert(_ context.Context, p *models.Post) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return "", m.insertErr
	}
	rec := *p
	rec.ID = uuid.NewString()
	m.posts[rec.ID] = rec
	return rec.ID, nil
}

func (m *memPostStore) Get(_ context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (m *memPostStore) ListByOwner(_ context.Context, ownerID string, limit int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Post
	for _, p := range m.posts {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memPostStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *memPostStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

type memUsers map[string]string

func (u memUsers) UserExists(_ context.Context, id string) (bool, error) {
	_, ok := u[id]
	return ok, nil
}

func (u memUsers) DisplayName(_ context.Context, id string) (string, error) {
	name, ok := u[id]
	if !ok {
		return "", store.ErrNotFound
	}
	return name, nil
}

type recordingNotifier struct {
	posts chan models.Post
}

func (n *recordingNotifier) PostCreated(_ context.Context, p models.Post) error {
	n.posts <- p
	return nil
}

var errDiskFull = errors.New("no space left on device")
