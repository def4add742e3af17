package chatview

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestSendTextOnly(t *testing.T) {
	f := newFixture(t)
	conv := f.open(t, "g-1")
	sub := f.feed.lastSub(t)

	conv.SetDraft("hello")
	msg, err := conv.Send(context.Background(), nil)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg == nil || msg.Content != "hello" {
		t.Fatalf("authoritative message: %+v", msg)
	}
	if conv.Draft() != "" {
		t.Fatalf("draft should be cleared after a successful send")
	}

	// the feed delivers its own notification for the same identifier
	sub.emit(t, MessageCreatedEvent{Message: &Message{
		ID:             msg.ID,
		ConversationID: "g-1",
		Content:        "hello",
		CreatedAt:      msg.CreatedAt,
	}})
	sub.emit(t, MessageCreatedEvent{Message: &Message{
		ID: "m-other", ConversationID: "g-1", Content: "ok", CreatedAt: msg.CreatedAt.Add(time.Second),
	}})

	waitFor(t, func() bool { return len(conv.Messages()) == 2 })
	msgs := conv.Messages()
	if msgs[0].ID != msg.ID {
		t.Fatalf("want exactly one entry for %s, order: %v", msg.ID, []string{msgs[0].ID, msgs[1].ID})
	}
	for _, m := range msgs {
		if IsProvisional(m.ID) {
			t.Fatalf("provisional entry %s survived reconciliation", m.ID)
		}
	}
}

func TestSendEmptyDraftIsNoOp(t *testing.T) {
	f := newFixture(t)
	conv := f.open(t, "g-1")

	conv.SetDraft("   \n\t ")
	msg, err := conv.Send(context.Background(), nil)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg != nil {
		t.Fatalf("blank send should be a no-op, got %+v", msg)
	}
	if got := len(conv.Messages()); got != 0 {
		t.Fatalf("no-op send mutated the cache: %d", got)
	}
}

func TestSendRemoteFailurePreservesDraft(t *testing.T) {
	f := newFixture(t)
	conv := f.open(t, "g-1")
	f.msgs.insertErr = fmt.Errorf("store unavailable")

	conv.SetDraft("jangan hilang")
	if err := conv.Reply("m-x"); err != ErrUnknownMessage {
		t.Fatalf("reply to unknown message: want=%v got=%v", ErrUnknownMessage, err)
	}

	_, err := conv.Send(context.Background(), nil)
	if err == nil {
		t.Fatalf("remote failure should surface")
	}
	if got := conv.Draft(); got != "jangan hilang" {
		t.Fatalf("failed send must preserve the draft, got %q", got)
	}
	if got := len(conv.Messages()); got != 0 {
		t.Fatalf("provisional entry survived rollback: %d", got)
	}
}

func TestSendPartialUploadFailure(t *testing.T) {
	f := newFixture(t)
	conv := f.open(t, "g-1")
	f.objects.failSubstr = "bad.png"

	conv.SetDraft("dua file")
	files := []Upload{
		{Name: "bad.png", ContentType: "image/png", Data: strings.NewReader("x")},
		{Name: "good.pdf", ContentType: "application/pdf", Data: strings.NewReader("y")},
	}
	msg, err := conv.Send(context.Background(), files)
	if err != nil {
		t.Fatalf("partial upload failure must not fail the send: %v", err)
	}
	if msg == nil {
		t.Fatalf("message record should exist")
	}

	if got := len(f.atts.inserted); got != 1 {
		t.Fatalf("attachment records: want=1 got=%d", got)
	}
	att := f.atts.inserted[0]
	if att.Kind != AttachmentKindFile {
		t.Fatalf("attachment kind: want=%s got=%s", AttachmentKindFile, att.Kind)
	}
	if !strings.HasPrefix(att.Path, "g-1/") {
		t.Fatalf("upload path must be namespaced by conversation: %s", att.Path)
	}

	cached := conv.Messages()
	if len(cached) != 1 || len(cached[0].Attachments) != 1 {
		t.Fatalf("cache should hold one message with one attachment")
	}
	if conv.Uploading() {
		t.Fatalf("uploading flag should settle after the pipeline finishes")
	}
}

func TestSendFilesOnly(t *testing.T) {
	f := newFixture(t)
	conv := f.open(t, "g-1")

	conv.SetDraft("")
	msg, err := conv.Send(context.Background(), []Upload{
		{Name: "foto liburan.jpg", ContentType: "image/jpeg", Data: strings.NewReader("img")},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg == nil {
		t.Fatalf("files without text should still send")
	}
	if got := f.atts.inserted[0].Kind; got != AttachmentKindImage {
		t.Fatalf("attachment kind: want=%s got=%s", AttachmentKindImage, got)
	}
	if strings.Contains(f.objects.uploaded[0], " ") {
		t.Fatalf("upload path should not contain spaces: %s", f.objects.uploaded[0])
	}
}

func TestSendReplyTargetClearedAfterSend(t *testing.T) {
	f := newFixture(t)
	f.msgs.backlog["g-1"] = []*Message{
		{ID: "m-parent", ConversationID: "g-1", Content: "asal", CreatedAt: time.Now()},
	}
	conv := f.open(t, "g-1")

	if err := conv.Reply("m-parent"); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	conv.SetDraft("balasan")
	msg, err := conv.Send(context.Background(), nil)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.ReplyTo != "m-parent" {
		t.Fatalf("reply target not forwarded: %q", msg.ReplyTo)
	}
	if got := conv.ReplyTarget(); got != "" {
		t.Fatalf("reply target should clear after send, got %q", got)
	}
}

func TestCancelReply(t *testing.T) {
	f := newFixture(t)
	f.msgs.backlog["g-1"] = []*Message{
		{ID: "m-parent", ConversationID: "g-1", CreatedAt: time.Now()},
	}
	conv := f.open(t, "g-1")

	if err := conv.Reply("m-parent"); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	conv.CancelReply()
	if got := conv.ReplyTarget(); got != "" {
		t.Fatalf("reply target should clear on cancel, got %q", got)
	}
}

func TestDeleteSurvivesCleanupFailure(t *testing.T) {
	f := newFixture(t)
	f.msgs.backlog["g-1"] = []*Message{
		{
			ID:             "m-1",
			ConversationID: "g-1",
			CreatedAt:      time.Now(),
			Attachments: []Attachment{
				{ID: "a-1", MessageID: "m-1", Path: "g-1/1_a.png"},
				{ID: "a-2", MessageID: "m-1", Path: "g-1/2_b.png"},
			},
		},
	}
	conv := f.open(t, "g-1")
	f.objects.removeErr = fmt.Errorf("bucket down")

	if err := conv.Delete(context.Background(), "m-1"); err != nil {
		t.Fatalf("cleanup failure must not block the record delete: %v", err)
	}
	if got := len(f.msgs.deleted); got != 1 || f.msgs.deleted[0] != "m-1" {
		t.Fatalf("record delete not issued: %v", f.msgs.deleted)
	}
	if got := len(conv.Messages()); got != 0 {
		t.Fatalf("message should leave the cache: %d entries", got)
	}
}

func TestDeleteRecordFailureKeepsCache(t *testing.T) {
	f := newFixture(t)
	f.msgs.backlog["g-1"] = []*Message{
		{ID: "m-1", ConversationID: "g-1", CreatedAt: time.Now()},
	}
	conv := f.open(t, "g-1")
	f.msgs.deleteErr = fmt.Errorf("store unavailable")

	if err := conv.Delete(context.Background(), "m-1"); err == nil {
		t.Fatalf("record delete failure should surface")
	}
	if got := len(conv.Messages()); got != 1 {
		t.Fatalf("failed delete must not drop the local entry: %d", got)
	}
}
