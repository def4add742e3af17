package chatview

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Identifiers are opaque strings owned by the remote store. The one
// exception is the reserved "local:" namespace, which marks provisional
// messages minted by the send pipeline before the store has confirmed
// the write. The store never issues ids in this namespace.
const provisionalPrefix = "local:"

func newProvisionalID() string {
	return provisionalPrefix + uuid.NewString()
}

// IsProvisional reports whether id belongs to the local namespace.
func IsProvisional(id string) bool {
	return strings.HasPrefix(id, provisionalPrefix)
}

const (
	AttachmentKindImage = "image"
	AttachmentKindFile  = "file"
)

// Author is the directory projection of a user shown on a message.
type Author struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string
}

// UnknownAuthor stands in when the directory lookup fails. A failed
// lookup must never suppress the message itself.
var UnknownAuthor = Author{Name: "Unknown"}

type Attachment struct {
	ID        string
	MessageID string
	URL       string
	// Path is the object-store path the URL resolves to, when the
	// adapter can derive it. Empty means storage cleanup is skipped
	// for this attachment.
	Path string
	Kind string
	// Uploading is presentational only and never persisted.
	Uploading bool
}

type Message struct {
	ID             string
	ConversationID string
	AuthorID       string
	Author         *Author
	Content        string
	ReplyTo        string
	CreatedAt      time.Time
	Attachments    []Attachment
}

type NoteBlock struct {
	Type string
	Text string
}

type Note struct {
	ID             string
	ConversationID string
	AuthorID       string
	Blocks         []NoteBlock
	UpdatedAt      time.Time
}
