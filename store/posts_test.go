package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"masterboxer.com/project-newsfeed/models"
)

func TestValidatePost(t *testing.T) {
	now := time.Now()
	loc, class, empty := "u1/a.png", "image", ""

	tests := []struct {
		name  string
		post  *models.Post
		valid bool
	}{
		{"nil", nil, false},
		{"no owner", &models.Post{CreatedAt: now}, false},
		{"no timestamp", &models.Post{OwnerID: "u1"}, false},
		{"location only", &models.Post{OwnerID: "u1", CreatedAt: now, AttachmentLocation: &loc}, false},
		{"class only", &models.Post{OwnerID: "u1", CreatedAt: now, AttachmentMediaClass: &class}, false},
		{"empty location", &models.Post{OwnerID: "u1", CreatedAt: now, AttachmentLocation: &empty, AttachmentMediaClass: &class}, false},
		{"text only", &models.Post{OwnerID: "u1", CreatedAt: now}, true},
		{"empty status", &models.Post{OwnerID: "u1", Status: "", CreatedAt: now}, true},
		{"with attachment", &models.Post{OwnerID: "u1", CreatedAt: now, AttachmentLocation: &loc, AttachmentMediaClass: &class}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePost(tt.post)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidRecord)
			}
		})
	}
}
