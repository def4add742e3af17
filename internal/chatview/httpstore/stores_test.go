package httpstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/groupchat-backend/internal/chatview"
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

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-token", mustTestLogger(t))
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestMessageStoreInsertSendsMultipartAndParsesRecord(t *testing.T) {
	var gotAuth, gotContent, gotReplyTo string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/groups/g-1/messages" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		gotContent = r.FormValue("content")
		gotReplyTo = r.FormValue("reply_to")
		writeJSON(t, w, http.StatusOK, map[string]any{
			"message": map[string]any{
				"id":         "m-1",
				"group_id":   "g-1",
				"user_id":    "u-1",
				"content":    gotContent,
				"reply_to":   "m-0",
				"created_at": time.Now().UTC().Format(time.RFC3339Nano),
			},
		})
	})
	c := newTestClient(t, handler)

	msg, err := c.MessageStore().Insert(context.Background(), "g-1", "u-1", "halo", "m-0")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotContent != "halo" || gotReplyTo != "m-0" {
		t.Fatalf("form = (%q, %q)", gotContent, gotReplyTo)
	}
	if msg.ID != "m-1" || msg.ConversationID != "g-1" || msg.AuthorID != "u-1" || msg.ReplyTo != "m-0" {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestMessageStoreInsertRejectsRecordWithoutID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"message": map[string]any{"group_id": "g-1", "created_at": time.Now()},
		})
	})
	c := newTestClient(t, handler)

	if _, err := c.MessageStore().Insert(context.Background(), "g-1", "u-1", "halo", ""); !errors.Is(err, ErrBadRecord) {
		t.Fatalf("expected ErrBadRecord, got %v", err)
	}
}

func TestListByConversationDropsMalformedRecords(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"messages": []map[string]any{
				{"id": "m-1", "group_id": "g-1", "content": "ok", "created_at": time.Now().UTC()},
				{"id": "", "group_id": "g-1", "content": "no id", "created_at": time.Now().UTC()},
				{"id": "m-2", "group_id": "g-1", "content": "ok too", "created_at": time.Now().UTC()},
			},
		})
	})
	c := newTestClient(t, handler)

	msgs, err := c.MessageStore().ListByConversation(context.Background(), "g-1")
	if err != nil {
		t.Fatalf("ListByConversation: %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != "m-1" || msgs[1].ID != "m-2" {
		t.Fatalf("unexpected messages %+v", msgs)
	}
}

func TestAPIErrorDecodedFromEnvelope(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusForbidden, map[string]any{
			"error": map[string]string{"message": "user is not a group member", "code": "not_a_member"},
		})
	})
	c := newTestClient(t, handler)

	err := c.MessageStore().Delete(context.Background(), "m-1")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusForbidden || apiErr.Code != "not_a_member" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestObjectUploadCachesPublicURL(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/groups/g-1/objects" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		path := r.FormValue("path")
		writeJSON(t, w, http.StatusOK, map[string]string{
			"path": path,
			"url":  "https://cdn.test/" + path,
		})
	})
	c := newTestClient(t, handler)
	objects := c.ObjectStore()

	if err := objects.Upload(context.Background(), "g-1/123_foto.png", strings.NewReader("data")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if got := objects.PublicURL("g-1/123_foto.png"); got != "https://cdn.test/g-1/123_foto.png" {
		t.Fatalf("PublicURL = %q", got)
	}
	if objects.PublicURL("g-1/never_uploaded.png") != "" {
		t.Fatalf("expected empty URL for unknown path")
	}
}

func TestObjectUploadRequiresConversationPrefix(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("server should not be called")
	}))
	if err := c.ObjectStore().Upload(context.Background(), "no-prefix.png", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for path without conversation prefix")
	}
}

func TestAttachmentInsertKeepsLocalPath(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"attachment": map[string]string{
				"id":         "a-1",
				"message_id": "m-1",
				"file_url":   req["file_url"],
				"file_type":  req["file_type"],
			},
		})
	})
	c := newTestClient(t, handler)

	att, err := c.AttachmentStore().Insert(context.Background(), "m-1", "https://cdn.test/g-1/x.png", "g-1/x.png", chatview.AttachmentKindImage)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if att.Path != "g-1/x.png" || att.Kind != chatview.AttachmentKindImage {
		t.Fatalf("unexpected attachment %+v", att)
	}
	// The URL->path mapping should now resolve for later feed events.
	if got := c.pathForURL("https://cdn.test/g-1/x.png"); got != "g-1/x.png" {
		t.Fatalf("pathForURL = %q", got)
	}
}

func TestNoteRoundTripAndContentValidation(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/notes/n-1":
			var req struct {
				Blocks []map[string]string `json:"blocks"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			writeJSON(t, w, http.StatusOK, map[string]any{
				"note": map[string]any{
					"id":         "n-1",
					"group_id":   "g-1",
					"user_id":    "u-1",
					"content":    req.Blocks,
					"updated_at": time.Now().UTC(),
				},
			})
		case r.Method == http.MethodGet && r.URL.Path == "/groups/g-1/notes":
			writeJSON(t, w, http.StatusOK, map[string]any{
				"notes": []map[string]any{
					{"id": "n-1", "group_id": "g-1", "content": json.RawMessage(`"not an array"`), "updated_at": time.Now().UTC()},
					{"id": "n-2", "group_id": "g-1", "content": json.RawMessage(`[{"type":"text","text":"hai"}]`), "updated_at": time.Now().UTC()},
				},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})
	c := newTestClient(t, handler)
	notes := c.NoteStore()

	saved, err := notes.Update(context.Background(), "n-1", []chatview.NoteBlock{{Type: "text", Text: "halo"}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(saved.Blocks) != 1 || saved.Blocks[0].Text != "halo" {
		t.Fatalf("unexpected blocks %+v", saved.Blocks)
	}

	// Malformed content drops the note, the rest of the list survives.
	list, err := notes.ListByConversation(context.Background(), "g-1")
	if err != nil {
		t.Fatalf("ListByConversation: %v", err)
	}
	if len(list) != 1 || list[0].ID != "n-2" {
		t.Fatalf("unexpected notes %+v", list)
	}
}
