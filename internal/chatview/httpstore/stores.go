package httpstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/yungbote/groupchat-backend/internal/chatview"
)

// The chatview ports overlap in method names (MessageStore.Insert vs
// AttachmentStore.Insert, and so on), so the client exposes one small
// view per port instead of implementing them all on a single type.

type directory struct{ c *Client }
type messageStore struct{ c *Client }
type attachmentStore struct{ c *Client }
type objectStore struct{ c *Client }
type noteStore struct{ c *Client }
type feed struct{ c *Client }

var (
	_ chatview.Directory       = directory{}
	_ chatview.MessageStore    = messageStore{}
	_ chatview.AttachmentStore = attachmentStore{}
	_ chatview.ObjectStore     = objectStore{}
	_ chatview.NoteStore       = noteStore{}
	_ chatview.Feed            = feed{}
)

func (c *Client) Directory() chatview.Directory { return directory{c} }

func (c *Client) MessageStore() chatview.MessageStore { return messageStore{c} }

func (c *Client) AttachmentStore() chatview.AttachmentStore { return attachmentStore{c} }

func (c *Client) ObjectStore() chatview.ObjectStore { return objectStore{c} }

func (c *Client) NoteStore() chatview.NoteStore { return noteStore{c} }

func (c *Client) Feed() chatview.Feed { return feed{c} }

// Deps bundles every port view for chatview.NewWindow.
func (c *Client) Deps() chatview.Deps {
	return chatview.Deps{
		Directory:   c.Directory(),
		Messages:    c.MessageStore(),
		Attachments: c.AttachmentStore(),
		Objects:     c.ObjectStore(),
		Notes:       c.NoteStore(),
		Feed:        c.Feed(),
		Log:         c.log,
	}
}

func (d directory) GetUser(ctx context.Context, userID string) (*chatview.Author, error) {
	var resp struct {
		User *userRecord `json:"user"`
	}
	if err := d.c.doJSON(ctx, "GET", "/users/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, err
	}
	return d.c.toAuthor(resp.User)
}

func (m messageStore) Insert(ctx context.Context, conversationID, authorID, text, replyTo string) (*chatview.Message, error) {
	// authorID is implied by the bearer token; the server stamps it.
	_ = authorID
	fields := map[string]string{"content": text}
	if replyTo != "" {
		fields["reply_to"] = replyTo
	}
	var resp struct {
		Message *messageRecord `json:"message"`
	}
	path := "/groups/" + url.PathEscape(conversationID) + "/messages"
	if err := m.c.doMultipart(ctx, path, fields, "", "", nil, &resp); err != nil {
		return nil, err
	}
	return m.c.toMessage(resp.Message)
}

func (m messageStore) Delete(ctx context.Context, messageID string) error {
	return m.c.doJSON(ctx, "DELETE", "/messages/"+url.PathEscape(messageID), nil, nil)
}

func (m messageStore) ListByConversation(ctx context.Context, conversationID string) ([]*chatview.Message, error) {
	var resp struct {
		Messages []messageRecord `json:"messages"`
	}
	if err := m.c.doJSON(ctx, "GET", "/groups/"+url.PathEscape(conversationID)+"/messages", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]*chatview.Message, 0, len(resp.Messages))
	for i := range resp.Messages {
		msg, err := m.c.toMessage(&resp.Messages[i])
		if err != nil {
			m.c.log.Warn("Dropping malformed message from backlog", "error", err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (a attachmentStore) Insert(ctx context.Context, messageID, fileURL, path, kind string) (*chatview.Attachment, error) {
	body := map[string]string{"file_url": fileURL, "file_type": kind}
	var resp struct {
		Attachment *attachmentRecord `json:"attachment"`
	}
	if err := a.c.doJSON(ctx, "POST", "/messages/"+url.PathEscape(messageID)+"/attachments", body, &resp); err != nil {
		return nil, err
	}
	att, err := a.c.toAttachment(resp.Attachment)
	if err != nil {
		return nil, err
	}
	att.Path = path
	a.c.rememberObject(path, att.URL)
	return att, nil
}

func (o objectStore) Upload(ctx context.Context, path string, data io.Reader) error {
	conversationID, _, ok := strings.Cut(path, "/")
	if !ok || conversationID == "" {
		return fmt.Errorf("object path %q has no conversation prefix", path)
	}
	fields := map[string]string{"path": path}
	var resp struct {
		Path string `json:"path"`
		URL  string `json:"url"`
	}
	endpoint := "/groups/" + url.PathEscape(conversationID) + "/objects"
	if err := o.c.doMultipart(ctx, endpoint, fields, "file", fileBase(path), data, &resp); err != nil {
		return err
	}
	o.c.rememberObject(resp.Path, resp.URL)
	return nil
}

// PublicURL resolves a path uploaded through this client; the server
// reports the canonical URL in the upload response.
func (o objectStore) PublicURL(path string) string {
	return o.c.urlForPath(path)
}

func (o objectStore) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	return o.c.doJSON(ctx, "POST", "/objects/remove", map[string][]string{"paths": paths}, nil)
}

func (n noteStore) ListByConversation(ctx context.Context, conversationID string) ([]*chatview.Note, error) {
	var resp struct {
		Notes []noteRecord `json:"notes"`
	}
	if err := n.c.doJSON(ctx, "GET", "/groups/"+url.PathEscape(conversationID)+"/notes", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]*chatview.Note, 0, len(resp.Notes))
	for i := range resp.Notes {
		note, err := n.c.toNote(&resp.Notes[i])
		if err != nil {
			n.c.log.Warn("Dropping malformed note", "error", err)
			continue
		}
		out = append(out, note)
	}
	return out, nil
}

func (n noteStore) Insert(ctx context.Context, conversationID string, blocks []chatview.NoteBlock) (*chatview.Note, error) {
	body := map[string]any{"blocks": blockRecords(blocks)}
	var resp struct {
		Note *noteRecord `json:"note"`
	}
	if err := n.c.doJSON(ctx, "POST", "/groups/"+url.PathEscape(conversationID)+"/notes", body, &resp); err != nil {
		return nil, err
	}
	return n.c.toNote(resp.Note)
}

func (n noteStore) Update(ctx context.Context, noteID string, blocks []chatview.NoteBlock) (*chatview.Note, error) {
	body := map[string]any{"blocks": blockRecords(blocks)}
	var resp struct {
		Note *noteRecord `json:"note"`
	}
	if err := n.c.doJSON(ctx, "PUT", "/notes/"+url.PathEscape(noteID), body, &resp); err != nil {
		return nil, err
	}
	return n.c.toNote(resp.Note)
}

func (n noteStore) Delete(ctx context.Context, noteID string) error {
	return n.c.doJSON(ctx, "DELETE", "/notes/"+url.PathEscape(noteID), nil, nil)
}

func fileBase(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
