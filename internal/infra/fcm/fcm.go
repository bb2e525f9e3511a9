package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type Config struct {
	CredentialsFile string
}

// Client wraps the Firebase messaging client behind the small surface
// the notification dispatcher needs.
type Client struct {
	messaging *messaging.Client
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("fcm credentials file is required")
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("create messaging client: %w", err)
	}

	return &Client{messaging: client}, nil
}

// Send delivers one push message to a device token. Data keys carry the
// deep-link action and the listing the client should open.
func (c *Client) Send(ctx context.Context, token, title, body, action, listingID string) error {
	if c.messaging == nil {
		return fmt.Errorf("messaging client is nil")
	}
	if token == "" {
		return fmt.Errorf("push token is empty")
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"action": action,
			"id":     listingID,
		},
	}

	if _, err := c.messaging.Send(ctx, msg); err != nil {
		return fmt.Errorf("send push message: %w", err)
	}

	return nil
}
