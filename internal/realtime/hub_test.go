package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

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

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubBroadcastOrdering(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := GroupChannel(uuid.New())

	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, channel)

	first := SSEMessage{Channel: channel, Event: SSEEventGroupMessageCreated, Data: map[string]any{"seq": 1}}
	second := SSEMessage{Channel: channel, Event: SSEEventGroupAttachmentCreated, Data: map[string]any{"seq": 2}}
	hub.Broadcast(first)
	hub.Broadcast(second)

	gotFirst := recvMessage(t, client.Outbound, time.Second)
	gotSecond := recvMessage(t, client.Outbound, time.Second)
	if gotFirst.Event != SSEEventGroupMessageCreated {
		t.Fatalf("first event: want=%s got=%s", SSEEventGroupMessageCreated, gotFirst.Event)
	}
	if gotSecond.Event != SSEEventGroupAttachmentCreated {
		t.Fatalf("second event: want=%s got=%s", SSEEventGroupAttachmentCreated, gotSecond.Event)
	}
}

func TestSSEHubChannelIsolationAfterSwitch(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	groupA := GroupChannel(uuid.New())
	groupB := GroupChannel(uuid.New())

	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, groupA)

	// switch conversations: release A before subscribing to B
	hub.RemoveChannel(client, groupA)
	hub.AddChannel(client, groupB)

	hub.Broadcast(SSEMessage{Channel: groupA, Event: SSEEventGroupMessageCreated, Data: map[string]any{"stale": true}})
	hub.Broadcast(SSEMessage{Channel: groupB, Event: SSEEventGroupMessageCreated, Data: map[string]any{"stale": false}})

	got := recvMessage(t, client.Outbound, time.Second)
	if got.Channel != groupB {
		t.Fatalf("expected only groupB events after switch, got channel %s", got.Channel)
	}
	select {
	case extra := <-client.Outbound:
		t.Fatalf("unexpected extra message on channel %s", extra.Channel)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSSEHubCloseClient(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := GroupChannel(uuid.New())
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, channel)

	hub.CloseClient(client)
	select {
	case _, ok := <-client.Outbound:
		if ok {
			t.Fatalf("outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for channel close")
	}

	// broadcast after close must not panic or deliver
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventGroupMessageCreated})
}
