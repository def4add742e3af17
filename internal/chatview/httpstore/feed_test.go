package httpstore

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yungbote/groupchat-backend/internal/chatview"
)

// sseServer writes the given raw frames to any stream request, then
// holds the connection open until the client goes away.
func sseServer(t *testing.T, frames []string) *Client {
	t.Helper()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sse/stream" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("token"); got != "test-token" {
			t.Errorf("token = %q", got)
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatalf("response writer is not a flusher")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()
		for _, frame := range frames {
			fmt.Fprint(w, frame)
			flusher.Flush()
		}
		<-r.Context().Done()
	})
	return newTestClient(t, handler)
}

func collectEvents(t *testing.T, sub chatview.Subscription, n int) []chatview.Event {
	t.Helper()
	var out []chatview.Event
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				t.Fatalf("events channel closed after %d of %d events", len(out), n)
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("timed out after %d of %d events", len(out), n)
		}
	}
	return out
}

func TestFeedParsesTypedEvents(t *testing.T) {
	frames := []string{
		": ping\n\n",
		"event: message\ndata: {\"channel\":\"group:g-1\",\"event\":\"GroupMessageCreated\",\"data\":{\"message\":{\"id\":\"m-1\",\"group_id\":\"g-1\",\"user_id\":\"u-2\",\"content\":\"halo\",\"created_at\":\"2026-08-28T09:41:00Z\"}}}\n\n",
		"event: message\ndata: {\"channel\":\"group:g-1\",\"event\":\"GroupMessageDeleted\",\"data\":{\"message_id\":\"m-0\"}}\n\n",
		"event: message\ndata: {\"channel\":\"group:g-1\",\"event\":\"GroupNoteSaved\",\"data\":{\"note\":{\"id\":\"n-1\",\"group_id\":\"g-1\",\"content\":[{\"type\":\"text\",\"text\":\"catatan\"}],\"updated_at\":\"2026-08-28T09:42:00Z\"}}}\n\n",
		"event: message\ndata: {\"channel\":\"group:g-1\",\"event\":\"UserNameChanged\",\"data\":{\"user\":{\"id\":\"u-2\",\"name\":\"Ayu Baru\"}}}\n\n",
	}
	c := sseServer(t, frames)

	sub, err := c.Feed().Subscribe(context.Background(), "g-1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	events := collectEvents(t, sub, 4)

	created, ok := events[0].(chatview.MessageCreatedEvent)
	if !ok {
		t.Fatalf("events[0] = %T", events[0])
	}
	if created.Message.ID != "m-1" || created.Message.AuthorID != "u-2" || created.Message.Content != "halo" {
		t.Fatalf("unexpected message %+v", created.Message)
	}
	deleted, ok := events[1].(chatview.MessageDeletedEvent)
	if !ok || deleted.MessageID != "m-0" {
		t.Fatalf("events[1] = %#v", events[1])
	}
	note, ok := events[2].(chatview.NoteSavedEvent)
	if !ok || note.Note.ID != "n-1" || len(note.Note.Blocks) != 1 {
		t.Fatalf("events[2] = %#v", events[2])
	}
	author, ok := events[3].(chatview.AuthorChangedEvent)
	if !ok || author.Author.Name != "Ayu Baru" {
		t.Fatalf("events[3] = %#v", events[3])
	}
}

func TestFeedFiltersOtherChannelsAndUnknownEvents(t *testing.T) {
	frames := []string{
		"event: message\ndata: {\"channel\":\"group:g-9\",\"event\":\"GroupMessageDeleted\",\"data\":{\"message_id\":\"m-other\"}}\n\n",
		"event: message\ndata: {\"channel\":\"group:g-1\",\"event\":\"SomethingNew\",\"data\":{}}\n\n",
		"event: message\ndata: not json\n\n",
		"event: message\ndata: {\"channel\":\"group:g-1\",\"event\":\"GroupMessageDeleted\",\"data\":{\"message_id\":\"m-mine\"}}\n\n",
	}
	c := sseServer(t, frames)

	sub, err := c.Feed().Subscribe(context.Background(), "g-1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	events := collectEvents(t, sub, 1)
	deleted, ok := events[0].(chatview.MessageDeletedEvent)
	if !ok || deleted.MessageID != "m-mine" {
		t.Fatalf("events[0] = %#v", events[0])
	}
}

func TestFeedCloseEndsStream(t *testing.T) {
	c := sseServer(t, nil)

	sub, err := c.Feed().Subscribe(context.Background(), "g-1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Closing again must be safe.
	if err := sub.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("events channel not closed after Close")
		}
	}
}

func TestFeedSubscribeRejectsNon200(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusForbidden, map[string]any{
			"error": map[string]string{"message": "not a member", "code": "not_a_member"},
		})
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(srv.URL, "test-token", mustTestLogger(t))

	if _, err := c.Feed().Subscribe(context.Background(), "g-1"); err == nil {
		t.Fatalf("expected error for rejected stream")
	}
}
