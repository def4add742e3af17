package chatview

import (
	"context"
	"io"
)

// The ports below are the full surface this package consumes. Adapters
// (httpstore, test fakes) are responsible for validating raw records
// into the typed entities before they cross this boundary.

// Directory resolves user ids into display profiles.
type Directory interface {
	GetUser(ctx context.Context, userID string) (*Author, error)
}

// MessageStore is the durable message record store. Insert returns the
// authoritative record, permanent id assigned, synchronously.
type MessageStore interface {
	Insert(ctx context.Context, conversationID, authorID, text, replyTo string) (*Message, error)
	Delete(ctx context.Context, messageID string) error
	ListByConversation(ctx context.Context, conversationID string) ([]*Message, error)
}

type AttachmentStore interface {
	Insert(ctx context.Context, messageID, url, path, kind string) (*Attachment, error)
}

// ObjectStore is raw byte storage. Remove takes multiple paths but the
// contract is per-path best effort; a failed path must not stop the rest.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data io.Reader) error
	PublicURL(path string) string
	Remove(ctx context.Context, paths []string) error
}

type NoteStore interface {
	ListByConversation(ctx context.Context, conversationID string) ([]*Note, error)
	Insert(ctx context.Context, conversationID string, blocks []NoteBlock) (*Note, error)
	Update(ctx context.Context, noteID string, blocks []NoteBlock) (*Note, error)
	Delete(ctx context.Context, noteID string) error
}

// Feed hands out one cancellable subscription per conversation channel.
type Feed interface {
	Subscribe(ctx context.Context, conversationID string) (Subscription, error)
}

// Subscription yields typed change events until closed. Close is
// idempotent; the adapter closes the Events channel when the stream ends.
type Subscription interface {
	Events() <-chan Event
	Close() error
}
