package httpstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yungbote/groupchat-backend/internal/chatview"
)

// Wire records mirror the server's JSON shapes. Every record passes
// through a to* conversion before it becomes a chatview entity, and the
// conversion rejects records missing the fields the view depends on.

type userRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type attachmentRecord struct {
	ID        string `json:"id"`
	MessageID string `json:"message_id"`
	FileURL   string `json:"file_url"`
	FileType  string `json:"file_type"`
}

type messageRecord struct {
	ID          string             `json:"id"`
	GroupID     string             `json:"group_id"`
	UserID      *string            `json:"user_id"`
	User        *userRecord        `json:"user"`
	Content     string             `json:"content"`
	ReplyTo     *string            `json:"reply_to"`
	Attachments []attachmentRecord `json:"message_attachments"`
	CreatedAt   time.Time          `json:"created_at"`
}

type noteRecord struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"group_id"`
	UserID    *string         `json:"user_id"`
	Content   json.RawMessage `json:"content"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type noteBlockRecord struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (c *Client) toAuthor(rec *userRecord) (*chatview.Author, error) {
	if rec == nil || rec.ID == "" {
		return nil, fmt.Errorf("%w: user record missing id", ErrBadRecord)
	}
	return &chatview.Author{
		ID:        rec.ID,
		Name:      rec.Name,
		Email:     rec.Email,
		AvatarURL: rec.AvatarURL,
	}, nil
}

func (c *Client) toAttachment(rec *attachmentRecord) (*chatview.Attachment, error) {
	if rec == nil || rec.ID == "" || rec.MessageID == "" {
		return nil, fmt.Errorf("%w: attachment record missing ids", ErrBadRecord)
	}
	kind := chatview.AttachmentKindFile
	if rec.FileType == chatview.AttachmentKindImage {
		kind = chatview.AttachmentKindImage
	}
	return &chatview.Attachment{
		ID:        rec.ID,
		MessageID: rec.MessageID,
		URL:       rec.FileURL,
		Path:      c.pathForURL(rec.FileURL),
		Kind:      kind,
	}, nil
}

func (c *Client) toMessage(rec *messageRecord) (*chatview.Message, error) {
	if rec == nil || rec.ID == "" || rec.GroupID == "" {
		return nil, fmt.Errorf("%w: message record missing ids", ErrBadRecord)
	}
	if rec.CreatedAt.IsZero() {
		return nil, fmt.Errorf("%w: message %s has no created_at", ErrBadRecord, rec.ID)
	}
	msg := &chatview.Message{
		ID:             rec.ID,
		ConversationID: rec.GroupID,
		Content:        rec.Content,
		CreatedAt:      rec.CreatedAt,
	}
	if rec.UserID != nil {
		msg.AuthorID = *rec.UserID
	}
	if rec.User != nil {
		if author, err := c.toAuthor(rec.User); err == nil {
			msg.Author = author
		}
	}
	if rec.ReplyTo != nil {
		msg.ReplyTo = *rec.ReplyTo
	}
	for i := range rec.Attachments {
		att, err := c.toAttachment(&rec.Attachments[i])
		if err != nil {
			c.log.Warn("Dropping malformed attachment on message", "message_id", rec.ID, "error", err)
			continue
		}
		msg.Attachments = append(msg.Attachments, *att)
	}
	return msg, nil
}

func (c *Client) toNote(rec *noteRecord) (*chatview.Note, error) {
	if rec == nil || rec.ID == "" || rec.GroupID == "" {
		return nil, fmt.Errorf("%w: note record missing ids", ErrBadRecord)
	}
	note := &chatview.Note{
		ID:             rec.ID,
		ConversationID: rec.GroupID,
		UpdatedAt:      rec.UpdatedAt,
	}
	if rec.UserID != nil {
		note.AuthorID = *rec.UserID
	}
	if len(rec.Content) > 0 {
		var blocks []noteBlockRecord
		if err := json.Unmarshal(rec.Content, &blocks); err != nil {
			return nil, fmt.Errorf("%w: note %s content: %v", ErrBadRecord, rec.ID, err)
		}
		for _, b := range blocks {
			note.Blocks = append(note.Blocks, chatview.NoteBlock{Type: b.Type, Text: b.Text})
		}
	}
	return note, nil
}

func blockRecords(blocks []chatview.NoteBlock) []noteBlockRecord {
	out := make([]noteBlockRecord, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, noteBlockRecord{Type: b.Type, Text: b.Text})
	}
	return out
}
