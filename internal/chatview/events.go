package chatview

// Event is the closed set of change-feed notifications a subscription
// can yield. Consumers switch on the concrete type.
type Event interface {
	isEvent()
}

type MessageCreatedEvent struct {
	Message *Message
}

type MessageDeletedEvent struct {
	MessageID string
}

type AttachmentCreatedEvent struct {
	Attachment *Attachment
}

type NoteSavedEvent struct {
	Note *Note
}

// AuthorChangedEvent covers profile renames and avatar updates.
type AuthorChangedEvent struct {
	Author *Author
}

func (MessageCreatedEvent) isEvent()    {}
func (MessageDeletedEvent) isEvent()    {}
func (AttachmentCreatedEvent) isEvent() {}
func (NoteSavedEvent) isEvent()         {}
func (AuthorChangedEvent) isEvent()     {}
