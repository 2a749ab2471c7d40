package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"masterboxer.com/project-newsfeed/models"
)

type fakeSender struct {
	sent []*messaging.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m *messaging.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, m)
	return "projects/test/messages/1", nil
}

func TestFCMNotifierSendsToOwnerTopic(t *testing.T) {
	sender := &fakeSender{}
	n := &FCMNotifier{client: sender}
	class := "image"

	err := n.PostCreated(context.Background(), models.Post{
		ID:                   "p1",
		OwnerID:              "u1",
		Status:               strings.Repeat("x", 150),
		AttachmentMediaClass: &class,
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	m := sender.sent[0]
	assert.Equal(t, "posts_u1", m.Topic)
	assert.Len(t, m.Notification.Body, 100)
	assert.True(t, strings.HasSuffix(m.Notification.Body, "..."))
	assert.Equal(t, "p1", m.Data["post_id"])
	assert.Equal(t, "image", m.Data["file_type"])
}

func TestFCMNotifierTextOnlyPost(t *testing.T) {
	sender := &fakeSender{}
	n := &FCMNotifier{client: sender}

	require.NoError(t, n.PostCreated(context.Background(), models.Post{ID: "p2", OwnerID: "u1", Status: "short"}))
	m := sender.sent[0]
	assert.Equal(t, "short", m.Notification.Body)
	assert.NotContains(t, m.Data, "file_type")
}

func TestFCMNotifierSendError(t *testing.T) {
	n := &FCMNotifier{client: &fakeSender{err: errors.New("unavailable")}}
	err := n.PostCreated(context.Background(), models.Post{ID: "p3", OwnerID: "u1"})
	assert.Error(t, err)
}
