package httpstore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/yungbote/groupchat-backend/internal/chatview"
)

// Subscribe opens one SSE stream scoped to the conversation's channel.
// The stream request carries the token in the query string because
// EventSource-style clients cannot set headers; the server accepts both.
func (f feed) Subscribe(ctx context.Context, conversationID string) (chatview.Subscription, error) {
	streamCtx, cancel := context.WithCancel(context.Background())

	channel := "group:" + conversationID
	endpoint := fmt.Sprintf("%s/sse/stream?channels=%s&token=%s",
		f.c.baseURL, url.QueryEscape(channel), url.QueryEscape(f.c.token))

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := f.c.streamc.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, &APIError{Status: resp.StatusCode, Message: "stream rejected"}
	}

	sub := &subscription{
		events: make(chan chatview.Event, 16),
		done:   streamCtx.Done(),
		cancel: cancel,
	}
	go f.c.readStream(resp, channel, sub)
	return sub, nil
}

type subscription struct {
	events    chan chatview.Event
	done      <-chan struct{}
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func (s *subscription) Events() <-chan chatview.Event { return s.events }

// Close cancels the stream request. The events channel is closed by the
// reader goroutine once the response body drains, so events already in
// flight are still delivered.
func (s *subscription) Close() error {
	s.closeOnce.Do(s.cancel)
	return nil
}

// sseFrame is the hub's wire shape inside a "data:" line.
type sseFrame struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) readStream(resp *http.Response, channel string, sub *subscription) {
	defer resp.Body.Close()
	defer close(sub.events)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if data.Len() > 0 {
				c.dispatchFrame(data.String(), channel, sub)
				data.Reset()
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue // heartbeat
		}
		if payload, ok := strings.CutPrefix(line, "data:"); ok {
			data.WriteString(strings.TrimPrefix(payload, " "))
		}
	}
	if err := scanner.Err(); err != nil {
		c.log.Warn("SSE stream ended with error", "channel", channel, "error", err)
	}
}

func (c *Client) dispatchFrame(raw, channel string, sub *subscription) {
	var frame sseFrame
	if err := json.Unmarshal([]byte(raw), &frame); err != nil {
		c.log.Warn("Dropping undecodable SSE frame", "error", err)
		return
	}
	if frame.Channel != channel {
		return
	}
	event, err := c.toEvent(frame)
	if err != nil {
		c.log.Warn("Dropping malformed SSE event", "event", frame.Event, "error", err)
		return
	}
	if event == nil {
		return
	}
	select {
	case sub.events <- event:
	case <-sub.done:
	}
}

// toEvent maps a wire frame to a typed chatview event. Unknown event
// names return (nil, nil) so new server events do not break old clients.
func (c *Client) toEvent(frame sseFrame) (chatview.Event, error) {
	switch frame.Event {
	case "GroupMessageCreated":
		var data struct {
			Message *messageRecord `json:"message"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return nil, err
		}
		msg, err := c.toMessage(data.Message)
		if err != nil {
			return nil, err
		}
		return chatview.MessageCreatedEvent{Message: msg}, nil

	case "GroupMessageDeleted":
		var data struct {
			MessageID string `json:"message_id"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return nil, err
		}
		if data.MessageID == "" {
			return nil, fmt.Errorf("%w: delete event missing message_id", ErrBadRecord)
		}
		return chatview.MessageDeletedEvent{MessageID: data.MessageID}, nil

	case "GroupAttachmentCreated":
		var data struct {
			Attachment *attachmentRecord `json:"attachment"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return nil, err
		}
		att, err := c.toAttachment(data.Attachment)
		if err != nil {
			return nil, err
		}
		return chatview.AttachmentCreatedEvent{Attachment: att}, nil

	case "GroupNoteSaved":
		var data struct {
			Note *noteRecord `json:"note"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return nil, err
		}
		note, err := c.toNote(data.Note)
		if err != nil {
			return nil, err
		}
		return chatview.NoteSavedEvent{Note: note}, nil

	case "UserNameChanged", "UserAvatarChanged":
		var data struct {
			User *userRecord `json:"user"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return nil, err
		}
		author, err := c.toAuthor(data.User)
		if err != nil {
			return nil, err
		}
		return chatview.AuthorChangedEvent{Author: author}, nil
	}
	return nil, nil
}
