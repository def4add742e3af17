package chatview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yungbote/groupchat-backend/internal/platform/logger"
)

// SubscriptionState is the feed lifecycle of one conversation.
type SubscriptionState int

const (
	Unsubscribed SubscriptionState = iota
	Subscribing
	Active
)

func (s SubscriptionState) String() string {
	switch s {
	case Subscribing:
		return "subscribing"
	case Active:
		return "active"
	default:
		return "unsubscribed"
	}
}

var (
	ErrNoSession          = errors.New("no valid session")
	ErrConversationClosed = errors.New("conversation closed")
	ErrAlreadyOpen        = errors.New("conversation already open")
	ErrUnknownMessage     = errors.New("message not in conversation")
)

// Deps are the external collaborators a Window wires in. All fields are
// required except Notes and Directory, which only disable the features
// that need them.
type Deps struct {
	Directory   Directory
	Messages    MessageStore
	Attachments AttachmentStore
	Objects     ObjectStore
	Notes       NoteStore
	Feed        Feed
	Log         *logger.Logger
}

// Conversation is the live view of one group chat: the message cache,
// the feed subscription keeping it current, and the local state backing
// composing, replying and note editing. All mutation goes through one
// mutex, the library's stand-in for a UI event loop; remote calls
// happen outside it and re-check liveness before touching the cache.
type Conversation struct {
	id      string
	deps    Deps
	session *Session
	log     *logger.Logger

	mu    sync.Mutex
	state SubscriptionState
	// gen increments on every Close; handlers capture it at subscribe
	// time so in-flight completions for a torn-down view are discarded
	// instead of mutating a cache that has moved on.
	gen   uint64
	sub   Subscription
	cache *Cache

	draft     string
	replyTo   string
	uploading int

	notes       []*Note
	notesLoaded bool
	editingNote string
	noteDraft   []NoteBlock
}

func newConversation(deps Deps, session *Session, conversationID string) *Conversation {
	return &Conversation{
		id:      conversationID,
		deps:    deps,
		session: session,
		log:     deps.Log.With("conversation_id", conversationID),
		cache:   NewCache(),
	}
}

// open loads the backlog and subscribes to the change feed. A backlog
// retrieval failure is soft: the conversation still goes Active with an
// empty cache and the error is returned for display. A subscribe
// failure is hard: the conversation stays Unsubscribed.
func (c *Conversation) open(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Unsubscribed {
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	c.state = Subscribing
	gen := c.gen
	c.mu.Unlock()

	msgs, loadErr := c.deps.Messages.ListByConversation(ctx, c.id)
	if loadErr != nil {
		c.log.Warn("Failed to load conversation backlog", "error", loadErr)
		msgs = nil
	}

	sub, err := c.deps.Feed.Subscribe(ctx, c.id)
	if err != nil {
		c.mu.Lock()
		c.state = Unsubscribed
		c.mu.Unlock()
		return fmt.Errorf("subscribe: %w", err)
	}

	c.mu.Lock()
	if c.gen != gen {
		// closed while the subscribe was in flight
		c.mu.Unlock()
		_ = sub.Close()
		return ErrConversationClosed
	}
	c.cache.Load(msgs)
	c.sub = sub
	c.state = Active
	c.mu.Unlock()

	go c.consume(ctx, sub, gen)
	if loadErr != nil {
		return fmt.Errorf("load backlog: %w", loadErr)
	}
	return nil
}

// Close releases the feed subscription and invalidates every in-flight
// handler for this view. Idempotent.
func (c *Conversation) Close() {
	c.mu.Lock()
	if c.state == Unsubscribed {
		c.mu.Unlock()
		return
	}
	c.state = Unsubscribed
	c.gen++
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()
	if sub != nil {
		_ = sub.Close()
	}
}

func (c *Conversation) consume(ctx context.Context, sub Subscription, gen uint64) {
	for ev := range sub.Events() {
		c.apply(ctx, ev, gen)
	}
}

// live reports whether the handler generation still matches the view.
// Callers hold c.mu.
func (c *Conversation) live(gen uint64) bool {
	return c.gen == gen && c.state == Active
}

func (c *Conversation) apply(ctx context.Context, ev Event, gen uint64) {
	switch e := ev.(type) {
	case MessageCreatedEvent:
		if e.Message == nil {
			return
		}
		msg := e.Message
		if msg.Author == nil && msg.AuthorID != "" {
			msg.Author = c.resolveAuthor(ctx, msg.AuthorID)
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.live(gen) {
			return
		}
		c.cache.InsertIfAbsent(msg)

	case AttachmentCreatedEvent:
		if e.Attachment == nil {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.live(gen) {
			return
		}
		if !c.cache.PatchAttachment(e.Attachment.MessageID, *e.Attachment) {
			c.log.Debug("Dropped attachment event for unknown message",
				"attachment_id", e.Attachment.ID)
		}

	case MessageDeletedEvent:
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.live(gen) {
			return
		}
		c.cache.Remove(e.MessageID)
		if c.replyTo == e.MessageID {
			c.replyTo = ""
		}

	case NoteSavedEvent:
		if e.Note == nil {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.live(gen) || !c.notesLoaded {
			return
		}
		c.upsertNoteLocked(e.Note)

	case AuthorChangedEvent:
		if e.Author == nil {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.live(gen) {
			return
		}
		c.cache.RepointAuthor(e.Author)
	}
}

// resolveAuthor looks the author up in the directory. A failed lookup
// never suppresses the message; it falls back to the Unknown placeholder.
func (c *Conversation) resolveAuthor(ctx context.Context, authorID string) *Author {
	if c.deps.Directory == nil {
		unknown := UnknownAuthor
		return &unknown
	}
	author, err := c.deps.Directory.GetUser(ctx, authorID)
	if err != nil || author == nil {
		c.log.Warn("Author lookup failed, using placeholder", "error", err)
		unknown := UnknownAuthor
		return &unknown
	}
	return author
}

func (c *Conversation) ID() string { return c.id }

func (c *Conversation) State() SubscriptionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Messages returns the ordered view of the conversation.
func (c *Conversation) Messages() []*Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Messages()
}

// Uploading reports whether any attachment upload is still in flight.
// Presentational only.
func (c *Conversation) Uploading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploading > 0
}

// Window owns at most one open conversation at a time. Selecting a new
// conversation always releases the previous subscription first, so a
// client never receives events for a conversation it no longer shows.
type Window struct {
	deps    Deps
	session *Session

	mu      sync.Mutex
	current *Conversation
}

func NewWindow(deps Deps, session *Session) (*Window, error) {
	if deps.Messages == nil || deps.Feed == nil || deps.Log == nil {
		return nil, errors.New("message store, feed and logger are required")
	}
	if !session.Valid() {
		return nil, ErrNoSession
	}
	return &Window{deps: deps, session: session}, nil
}

// Select opens conversationID, tearing down the previous conversation
// first. Selecting the already-open conversation is a no-op. A non-nil
// conversation with a non-nil error means the backlog load failed soft.
func (w *Window) Select(ctx context.Context, conversationID string) (*Conversation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current != nil {
		if w.current.id == conversationID && w.current.State() != Unsubscribed {
			return w.current, nil
		}
		w.current.Close()
		w.current = nil
	}
	conv := newConversation(w.deps, w.session, conversationID)
	err := conv.open(ctx)
	if err != nil && conv.State() != Active {
		return nil, err
	}
	w.current = conv
	return conv, err
}

// Deselect closes the open conversation, if any.
func (w *Window) Deselect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current != nil {
		w.current.Close()
		w.current = nil
	}
}

func (w *Window) Current() *Conversation {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}
