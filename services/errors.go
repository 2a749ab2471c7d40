package services

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrPostNotFound          = errors.New("post not found")
	ErrNotOwner              = errors.New("post belongs to another user")
	ErrAttachmentUnavailable = errors.New("attachment unavailable")
)
