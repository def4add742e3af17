package chatview

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/groupchat-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

type fakeDirectory struct {
	mu    sync.Mutex
	users map[string]*Author
	err   error
}

func (d *fakeDirectory) GetUser(ctx context.Context, userID string) (*Author, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	if a, ok := d.users[userID]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, fmt.Errorf("user %s not found", userID)
}

type fakeMessageStore struct {
	mu        sync.Mutex
	seq       int
	backlog   map[string][]*Message
	inserted  []*Message
	deleted   []string
	insertErr error
	deleteErr error
	listErr   error
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{backlog: make(map[string][]*Message)}
}

func (s *fakeMessageStore) Insert(ctx context.Context, conversationID, authorID, text, replyTo string) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	s.seq++
	msg := &Message{
		ID:             fmt.Sprintf("m-%d", s.seq),
		ConversationID: conversationID,
		AuthorID:       authorID,
		Content:        text,
		ReplyTo:        replyTo,
		CreatedAt:      time.Now(),
	}
	s.inserted = append(s.inserted, msg)
	return msg, nil
}

func (s *fakeMessageStore) Delete(ctx context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, messageID)
	return nil
}

func (s *fakeMessageStore) ListByConversation(ctx context.Context, conversationID string) ([]*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]*Message(nil), s.backlog[conversationID]...), nil
}

type fakeAttachmentStore struct {
	mu        sync.Mutex
	seq       int
	inserted  []*Attachment
	insertErr error
}

func (s *fakeAttachmentStore) Insert(ctx context.Context, messageID, url, path, kind string) (*Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	s.seq++
	att := &Attachment{
		ID:        fmt.Sprintf("a-%d", s.seq),
		MessageID: messageID,
		URL:       url,
		Path:      path,
		Kind:      kind,
	}
	s.inserted = append(s.inserted, att)
	return att, nil
}

type fakeObjectStore struct {
	mu         sync.Mutex
	uploaded   []string
	removed    []string
	failSubstr string
	removeErr  error
}

func (s *fakeObjectStore) Upload(ctx context.Context, path string, data io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSubstr != "" && strings.Contains(path, s.failSubstr) {
		return fmt.Errorf("upload refused for %s", path)
	}
	s.uploaded = append(s.uploaded, path)
	return nil
}

func (s *fakeObjectStore) PublicURL(path string) string {
	return "https://files.test/" + path
}

func (s *fakeObjectStore) Remove(ctx context.Context, paths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, paths...)
	return s.removeErr
}

type fakeNoteStore struct {
	mu        sync.Mutex
	seq       int
	notes     map[string]*Note
	order     []string
	updateErr error
}

func newFakeNoteStore() *fakeNoteStore {
	return &fakeNoteStore{notes: make(map[string]*Note)}
}

func (s *fakeNoteStore) ListByConversation(ctx context.Context, conversationID string) ([]*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Note
	for _, id := range s.order {
		n := s.notes[id]
		if n.ConversationID == conversationID {
			copied := *n
			copied.Blocks = append([]NoteBlock(nil), n.Blocks...)
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeNoteStore) Insert(ctx context.Context, conversationID string, blocks []NoteBlock) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	note := &Note{
		ID:             fmt.Sprintf("n-%d", s.seq),
		ConversationID: conversationID,
		Blocks:         append([]NoteBlock(nil), blocks...),
		UpdatedAt:      time.Now(),
	}
	s.notes[note.ID] = note
	s.order = append(s.order, note.ID)
	copied := *note
	return &copied, nil
}

func (s *fakeNoteStore) Update(ctx context.Context, noteID string, blocks []NoteBlock) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	n, ok := s.notes[noteID]
	if !ok {
		return nil, fmt.Errorf("note %s not found", noteID)
	}
	n.Blocks = append([]NoteBlock(nil), blocks...)
	n.UpdatedAt = time.Now()
	copied := *n
	copied.Blocks = append([]NoteBlock(nil), n.Blocks...)
	return &copied, nil
}

func (s *fakeNoteStore) Delete(ctx context.Context, noteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notes, noteID)
	for i, id := range s.order {
		if id == noteID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeSub struct {
	conversationID string
	ch             chan Event
	mu             sync.Mutex
	closed         bool
}

func (s *fakeSub) Events() <-chan Event { return s.ch }

// Close marks the subscription released but leaves the channel open so
// tests can model events still in flight after the unsubscribe.
func (s *fakeSub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSub) emit(t *testing.T, ev Event) {
	t.Helper()
	select {
	case s.ch <- ev:
	case <-time.After(time.Second):
		t.Fatalf("emit blocked")
	}
}

type fakeFeed struct {
	mu           sync.Mutex
	subs         []*fakeSub
	subscribeErr error
}

func (f *fakeFeed) Subscribe(ctx context.Context, conversationID string) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	sub := &fakeSub{conversationID: conversationID, ch: make(chan Event, 16)}
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeFeed) lastSub(t *testing.T) *fakeSub {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subs) == 0 {
		t.Fatalf("no subscription opened")
	}
	return f.subs[len(f.subs)-1]
}

type fixture struct {
	dir     *fakeDirectory
	msgs    *fakeMessageStore
	atts    *fakeAttachmentStore
	objects *fakeObjectStore
	notes   *fakeNoteStore
	feed    *fakeFeed
	window  *Window
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		dir:     &fakeDirectory{users: map[string]*Author{"u-1": {ID: "u-1", Name: "Ayu"}}},
		msgs:    newFakeMessageStore(),
		atts:    &fakeAttachmentStore{},
		objects: &fakeObjectStore{},
		notes:   newFakeNoteStore(),
		feed:    &fakeFeed{},
	}
	session := NewSession(Author{ID: "u-1", Name: "Ayu"}, "token")
	window, err := NewWindow(Deps{
		Directory:   f.dir,
		Messages:    f.msgs,
		Attachments: f.atts,
		Objects:     f.objects,
		Notes:       f.notes,
		Feed:        f.feed,
		Log:         mustTestLogger(t),
	}, session)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	f.window = window
	return f
}

func (f *fixture) open(t *testing.T, conversationID string) *Conversation {
	t.Helper()
	conv, err := f.window.Select(context.Background(), conversationID)
	if err != nil {
		t.Fatalf("Select(%s): %v", conversationID, err)
	}
	return conv
}
