package services

import (
	"context"

	"github.com/yungbote/groupchat-backend/internal/realtime"
	"github.com/yungbote/groupchat-backend/internal/realtime/bus"
)

// SSEEmitter abstracts where change events go: straight to the in-process
// hub on API nodes, or through Redis when another process must fan out.
type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct {
	Hub *realtime.SSEHub
}

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e == nil || e.Hub == nil {
		return
	}
	e.Hub.Broadcast(msg)
}

type RedisEmitter struct {
	Bus bus.Bus
}

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e == nil || e.Bus == nil {
		return
	}
	_ = e.Bus.Publish(ctx, msg)
}
