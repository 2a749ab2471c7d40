package services

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
	"masterboxer.com/project-newsfeed/models"
)

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotifier announces new posts on the owner's FCM topic. Clients that
// follow a user subscribe to that topic themselves.
type FCMNotifier struct {
	client messageSender
}

func NewFCMNotifier(ctx context.Context, credentialsPath string) (*FCMNotifier, error) {
	log.Printf("[FCM] Initializing Firebase with credentials: %s", credentialsPath)

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}

	log.Println("[FCM] Firebase Messaging client initialized successfully")
	return &FCMNotifier{client: client}, nil
}

// OwnerTopic is the FCM topic carrying a user's new posts.
func OwnerTopic(ownerID string) string {
	return "posts_" + ownerID
}

func (n *FCMNotifier) PostCreated(ctx context.Context, post models.Post) error {
	body := post.Status
	if len(body) > 100 {
		body = body[:97] + "..."
	}

	data := map[string]string{
		"type":     "new_post",
		"post_id":  post.ID,
		"owner_id": post.OwnerID,
	}
	if post.AttachmentMediaClass != nil {
		data["file_type"] = *post.AttachmentMediaClass
	}

	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: "New post",
			Body:  body,
		},
		Data:  data,
		Topic: OwnerTopic(post.OwnerID),
	}

	response, err := n.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("send to topic %s: %w", message.Topic, err)
	}

	log.Printf("[FCM] Sent new post %s to %s: %s", post.ID, message.Topic, response)
	return nil
}
