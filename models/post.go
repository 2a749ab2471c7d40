package models

import (
	"io"
	"time"
)

// Post is the stored record. AttachmentLocation and AttachmentMediaClass
// are either both set or both nil.
type Post struct {
	ID                   string    `json:"id"`
	OwnerID              string    `json:"owner_id"`
	Status               string    `json:"status"`
	AttachmentLocation   *string   `json:"attachment_location,omitempty"`
	AttachmentMediaClass *string   `json:"attachment_media_class,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

func (p Post) HasAttachment() bool {
	return p.AttachmentLocation != nil
}

// PostView is what clients receive for a single post.
type PostView struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Username  string    `json:"username"`
	Status    string    `json:"status"`
	File      *string   `json:"file"`
	FileType  *string   `json:"file_type"`
	TimeStamp time.Time `json:"time_stamp"`
}

// Upload is an attachment as received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}
