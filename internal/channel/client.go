// Package channel defines the consumed interface to the external messaging
// platform. The moderation services depend only on the Client interface;
// publish and notification failures never roll back committed decisions.
package channel

import "context"

// Message is a reference to a message delivered to a chat.
type Message struct {
	ID     int64
	ChatID int64
}

// Chat holds the metadata needed to build a deep link to a chat.
type Chat struct {
	ID       int64
	Username string
	Title    string
}

// Client is the messaging operations the moderation backend consumes.
type Client interface {
	// SendMessage sends a text message to a chat.
	SendMessage(ctx context.Context, chatID int64, text string) (*Message, error)
	// SendPhoto, SendVideo and SendAnimation send captioned media by file reference.
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (*Message, error)
	SendVideo(ctx context.Context, chatID int64, fileID, caption string) (*Message, error)
	SendAnimation(ctx context.Context, chatID int64, fileID, caption string) (*Message, error)
	// EditMessageText edits the text of an existing message.
	EditMessageText(ctx context.Context, chatID, messageID int64, text string) error
	// DeleteMessage deletes a message by reference.
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	// GetChat resolves a chat's metadata.
	GetChat(ctx context.Context, chatID int64) (*Chat, error)
}
