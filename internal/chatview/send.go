package chatview

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// Upload is one file the user attached to the message being composed.
type Upload struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// SetDraft stores the composed text. It survives a failed send so the
// user's input is never lost.
func (c *Conversation) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

func (c *Conversation) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Reply marks messageID as the reply target for the next send.
func (c *Conversation) Reply(messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache.Get(messageID) == nil {
		return ErrUnknownMessage
	}
	c.replyTo = messageID
	return nil
}

func (c *Conversation) CancelReply() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replyTo = ""
}

func (c *Conversation) ReplyTarget() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replyTo
}

// Send runs the optimistic pipeline for the current draft:
//
//  1. a provisional message appears in the cache immediately,
//  2. the store write replaces it in place with the authoritative
//     record (the feed's own later notification dedups against it),
//  3. files upload sequentially, each failure skipping that file only.
//
// On a failed store write the provisional entry is rolled back, the
// draft and reply target are preserved, and the error is returned.
// An empty draft with no files is a no-op.
func (c *Conversation) Send(ctx context.Context, files []Upload) (*Message, error) {
	c.mu.Lock()
	if !c.session.Valid() || c.state != Active {
		c.mu.Unlock()
		return nil, ErrConversationClosed
	}
	text := strings.TrimSpace(c.draft)
	if text == "" && len(files) == 0 {
		c.mu.Unlock()
		return nil, nil
	}
	gen := c.gen
	replyTo := c.replyTo
	author := c.session.User

	provisional := &Message{
		ID:             newProvisionalID(),
		ConversationID: c.id,
		AuthorID:       author.ID,
		Author:         &author,
		Content:        text,
		ReplyTo:        replyTo,
		CreatedAt:      time.Now(),
	}
	c.cache.InsertIfAbsent(provisional)
	c.uploading += len(files)
	c.mu.Unlock()

	settleUploads := func(n int) {
		c.mu.Lock()
		c.uploading -= n
		c.mu.Unlock()
	}

	msg, err := c.deps.Messages.Insert(ctx, c.id, author.ID, text, replyTo)
	if err != nil {
		settleUploads(len(files))
		c.mu.Lock()
		if c.live(gen) {
			c.cache.Remove(provisional.ID)
		}
		c.mu.Unlock()
		return nil, fmt.Errorf("send message: %w", err)
	}
	if msg.Author == nil {
		msg.Author = &author
	}

	c.mu.Lock()
	if c.live(gen) {
		c.cache.Reconcile(provisional.ID, msg)
		c.draft = ""
		c.replyTo = ""
	}
	c.mu.Unlock()

	for _, f := range files {
		c.uploadOne(ctx, gen, msg, f)
		settleUploads(1)
	}
	return msg, nil
}

// uploadOne pushes a single file to the object store and records the
// attachment. Any failure skips this file; siblings and the message
// itself are unaffected.
func (c *Conversation) uploadOne(ctx context.Context, gen uint64, msg *Message, f Upload) {
	objPath := objectPath(c.id, f.Name)
	if err := c.deps.Objects.Upload(ctx, objPath, f.Data); err != nil {
		c.log.Warn("Attachment upload failed, skipping file", "file", f.Name, "error", err)
		return
	}
	url := c.deps.Objects.PublicURL(objPath)
	att, err := c.deps.Attachments.Insert(ctx, msg.ID, url, objPath, attachmentKind(f.ContentType))
	if err != nil {
		c.log.Warn("Attachment record insert failed, skipping file", "file", f.Name, "error", err)
		return
	}

	c.mu.Lock()
	if c.live(gen) {
		c.cache.PatchAttachment(msg.ID, *att)
	}
	c.mu.Unlock()
}

// Delete removes a message: storage objects best-effort first, then the
// record, then the local entry. A cleanup failure never blocks the
// record delete.
func (c *Conversation) Delete(ctx context.Context, messageID string) error {
	c.mu.Lock()
	msg := c.cache.Get(messageID)
	gen := c.gen
	c.mu.Unlock()
	if msg == nil {
		return ErrUnknownMessage
	}

	var paths []string
	for _, att := range msg.Attachments {
		if att.Path != "" {
			paths = append(paths, att.Path)
		}
	}
	if len(paths) > 0 && c.deps.Objects != nil {
		if err := c.deps.Objects.Remove(ctx, paths); err != nil {
			c.log.Warn("Attachment object cleanup failed", "error", err)
		}
	}

	if err := c.deps.Messages.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}

	c.mu.Lock()
	if c.live(gen) {
		c.cache.Remove(messageID)
		if c.replyTo == messageID {
			c.replyTo = ""
		}
	}
	c.mu.Unlock()
	return nil
}

// objectPath namespaces uploads per conversation with a
// collision-resistant name.
func objectPath(conversationID, name string) string {
	base := path.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("%s/%d_%s", conversationID, time.Now().UnixNano(), base)
}

func attachmentKind(contentType string) string {
	if strings.HasPrefix(contentType, "image/") {
		return AttachmentKindImage
	}
	return AttachmentKindFile
}
