package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/groupchat-backend/internal/realtime"
	"github.com/yungbote/groupchat-backend/internal/services"
)

// SSEHandler exposes the change feed over SSE. A stream may open with
// initial channels (`?channels=group:<id>,...`); afterwards the client
// drives subscriptions with the subscribe/unsubscribe endpoints using
// the client id announced in the X-Client-ID response header.
type SSEHandler struct {
	hub          *realtime.SSEHub
	groupService services.GroupService

	mu      sync.Mutex
	clients map[uuid.UUID]*realtime.SSEClient
}

func NewSSEHandler(hub *realtime.SSEHub, groupService services.GroupService) *SSEHandler {
	return &SSEHandler{
		hub:          hub,
		groupService: groupService,
		clients:      make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// authorizeChannel restricts group channels to their members.
func (sh *SSEHandler) authorizeChannel(c *gin.Context, userID uuid.UUID, channel string) error {
	raw, ok := strings.CutPrefix(channel, "group:")
	if !ok {
		return fmt.Errorf("unknown channel %q", channel)
	}
	groupID, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid group channel %q", channel)
	}
	return sh.groupService.RequireMember(c.Request.Context(), userID, groupID)
}

func (sh *SSEHandler) Stream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	// cleanup is registered before any channel joins the hub, so a
	// rejected channel mid-loop still tears the client down
	client := sh.hub.NewSSEClient(userID)
	sh.mu.Lock()
	sh.clients[client.ID] = client
	sh.mu.Unlock()
	defer func() {
		sh.mu.Lock()
		delete(sh.clients, client.ID)
		sh.mu.Unlock()
		sh.hub.CloseClient(client)
	}()

	for _, channel := range strings.Split(c.Query("channels"), ",") {
		channel = strings.TrimSpace(channel)
		if channel == "" {
			continue
		}
		if err := sh.authorizeChannel(c, userID, channel); err != nil {
			RespondError(c, http.StatusForbidden, "channel_forbidden", err)
			return
		}
		sh.hub.AddChannel(client, channel)
	}

	c.Header("X-Client-ID", client.ID.String())
	c.Writer.WriteHeaderNow()
	sh.hub.ServeHTTP(c.Writer, c.Request, client)
}

func (sh *SSEHandler) lookupClient(c *gin.Context, userID uuid.UUID) (*realtime.SSEClient, string, bool) {
	var req struct {
		ClientID uuid.UUID `json:"client_id"`
		Channel  string    `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return nil, "", false
	}
	sh.mu.Lock()
	client := sh.clients[req.ClientID]
	sh.mu.Unlock()
	if client == nil || client.UserID != userID {
		RespondError(c, http.StatusNotFound, "unknown_client", fmt.Errorf("no open stream for client"))
		return nil, "", false
	}
	return client, req.Channel, true
}

func (sh *SSEHandler) Subscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	client, channel, ok := sh.lookupClient(c, userID)
	if !ok {
		return
	}
	if err := sh.authorizeChannel(c, userID, channel); err != nil {
		RespondError(c, http.StatusForbidden, "channel_forbidden", err)
		return
	}
	sh.hub.AddChannel(client, channel)
	RespondOK(c, gin.H{"subscribed": channel})
}

func (sh *SSEHandler) Unsubscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	client, channel, ok := sh.lookupClient(c, userID)
	if !ok {
		return
	}
	sh.hub.RemoveChannel(client, channel)
	RespondOK(c, gin.H{"unsubscribed": channel})
}
